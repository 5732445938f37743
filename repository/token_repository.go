// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"

	"bizpilot-api/logger"
	"bizpilot-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetValidByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string) (bool, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetValidByTokenHash retrieves a refresh token by its hashed value. Only
// rows that are unrevoked and unexpired match; everything else is
// sql.ErrNoRows to the caller.
func (r *TokenRepository) GetValidByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
	          FROM refresh_tokens
	          WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > now()`
	err := r.DB.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt, &token.RevokedAt,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token by hash query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return token, nil
}

// Revoke marks a single token row as revoked. The conditional update is the
// storage-level guard that makes rotation single-use: of two concurrent
// revocations of the same row, exactly one observes an affected row.
func (r *TokenRepository) Revoke(ctx context.Context, id string) (bool, error) {
	log := logger.Log.WithField("token_id", id)
	log.Info("Executing query to revoke refresh token")

	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh token query")
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// RevokeByTokenHash revokes whatever valid row matches the hash. Zero
// matching rows is not an error; revocation is idempotent.
func (r *TokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE token_hash = $1 AND revoked_at IS NULL`
	_, err := r.DB.ExecContext(ctx, query, tokenHash)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute revoke refresh token by hash query")
		return err
	}
	return nil
}

// RevokeAllByUserID revokes every currently-valid refresh token for a user.
// This is used for logging out from all sessions.
func (r *TokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to revoke all refresh tokens for a user")

	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke all refresh tokens query")
		return err
	}
	return nil
}
