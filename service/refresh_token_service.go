// file: service/refresh_token_service.go

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"bizpilot-api/common"
	"bizpilot-api/logger"
	"bizpilot-api/model"
	"bizpilot-api/repository"
)

// rawTokenBytes is the entropy width of a raw refresh secret.
const rawTokenBytes = 64

// IssuedRefreshToken is the one-time issuance result. RawToken is returned
// to the caller exactly once and cannot be recovered from storage.
type IssuedRefreshToken struct {
	RawToken  string
	TokenID   string
	ExpiresAt time.Time
}

// RotationResult carries the revoked record alongside its replacement.
type RotationResult struct {
	OldRecord    *model.RefreshToken
	NewRawToken  string
	NewTokenID   string
	NewExpiresAt time.Time
}

// RefreshTokenService owns the lifecycle of persistent refresh tokens:
// issuance, verification, single-use rotation and revocation.
type RefreshTokenService struct {
	repo repository.ITokenRepository
	ttl  time.Duration
}

func NewRefreshTokenService(repo repository.ITokenRepository, ttl time.Duration) *RefreshTokenService {
	return &RefreshTokenService{repo: repo, ttl: ttl}
}

// HashRefreshToken produces the SHA-256 hex digest under which a raw token
// is stored and looked up. Lookups are exact-match on this value.
func HashRefreshToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Issue generates a new raw refresh secret, persists its hash and returns
// the secret. The raw value never touches storage.
func (s *RefreshTokenService) Issue(ctx context.Context, userID string) (*IssuedRefreshToken, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		logger.Log.WithError(err).Error("Failed to generate refresh token entropy")
		return nil, err
	}
	rawToken := hex.EncodeToString(buf)

	record := &model.RefreshToken{
		UserID:    userID,
		TokenHash: HashRefreshToken(rawToken),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &IssuedRefreshToken{
		RawToken:  rawToken,
		TokenID:   record.ID,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Verify resolves a raw token to its stored record. Not-found, expired and
// revoked all collapse to common.ErrInvalidRefreshToken; store failures are
// passed through untouched so they surface as generic errors.
func (s *RefreshTokenService) Verify(ctx context.Context, rawToken string) (*model.RefreshToken, error) {
	record, err := s.repo.GetValidByTokenHash(ctx, HashRefreshToken(rawToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, err
	}
	return record, nil
}

// Rotate revokes the presented token and issues a replacement for the same
// user. The revocation is a conditional update keyed on the unrevoked row,
// so of two concurrent rotations of the same raw token exactly one wins;
// the loser observes the token as already revoked. A rotation attempt on an
// already-rotated token is the replay signal this guards against.
func (s *RefreshTokenService) Rotate(ctx context.Context, rawToken string) (*RotationResult, error) {
	record, err := s.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repo.Revoke(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if !revoked {
		// Lost the race: someone rotated this token between our read and
		// the conditional update.
		logger.Log.WithField("user_id", record.UserID).Warn("Refresh token rotation race detected; treating token as replayed")
		return nil, common.ErrInvalidRefreshToken
	}

	issued, err := s.Issue(ctx, record.UserID)
	if err != nil {
		return nil, err
	}

	return &RotationResult{
		OldRecord:    record,
		NewRawToken:  issued.RawToken,
		NewTokenID:   issued.TokenID,
		NewExpiresAt: issued.ExpiresAt,
	}, nil
}

// RevokeByRawToken revokes the token if it is currently valid. Revoking an
// already-revoked or unknown token is a no-op.
func (s *RefreshTokenService) RevokeByRawToken(ctx context.Context, rawToken string) error {
	return s.repo.RevokeByTokenHash(ctx, HashRefreshToken(rawToken))
}

// RevokeAllForUser revokes every outstanding token for the user. Idempotent;
// used for logout-everywhere and credential-compromise response.
func (s *RefreshTokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	return s.repo.RevokeAllByUserID(ctx, userID)
}
