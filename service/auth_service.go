package service

import (
	"context"
	"database/sql"

	"bizpilot-api/common"
	"bizpilot-api/logger"
	"bizpilot-api/model"
	"bizpilot-api/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService orchestrates the token codec, the refresh token store and the
// role context resolver into session issuance.
type AuthService struct {
	userRepo      repository.IUserRepository
	refreshTokens *RefreshTokenService
	codec         *TokenCodec
}

func NewAuthService(userRepo repository.IUserRepository, refreshTokens *RefreshTokenService, codec *TokenCodec) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		refreshTokens: refreshTokens,
		codec:         codec,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IssueTokenPair loads the user with live memberships and mints one access
// token plus one refresh token. If refresh persistence fails the whole
// issuance fails; no half-established session is returned.
func (s *AuthService) IssueTokenPair(ctx context.Context, userID string) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetAuthUserByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return s.IssueTokenPairForUser(ctx, user)
}

// IssueTokenPairForUser is IssueTokenPair for a caller that already holds
// the loaded user, e.g. right after registration or an OAuth upsert.
func (s *AuthService) IssueTokenPairForUser(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	roleCtx := ExtractRoleContext(user)

	accessToken, err := s.codec.Sign(user.ID, roleCtx.Roles, roleCtx.BusinessIDs)
	if err != nil {
		return nil, err
	}

	issued, err := s.refreshTokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		User:             user,
		AccessToken:      accessToken,
		RefreshToken:     issued.RawToken,
		RefreshExpiresAt: issued.ExpiresAt,
	}, nil
}

// Register creates an email-provider user and issues its first session.
// The duplicate check maps to common.ErrUserExists; handlers word that
// response without confirming anything further about the account.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	_, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, common.ErrUserExists
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		Password: hashedPassword,
		Provider: model.ProviderEmail,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return s.IssueTokenPairForUser(ctx, user)
}

// Login verifies email credentials and issues a session. Unknown email,
// passwordless (OAuth-only) account and wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password == "" || !s.CheckPasswordHash(req.Password, user.Password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.IssueTokenPair(ctx, user.ID)
}

// Refresh rotates the presented refresh token and reissues the session. The
// access token is signed from live membership state, not from the old
// token's snapshot.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*model.AuthResponse, error) {
	rotation, err := s.refreshTokens.Rotate(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetAuthUserByID(ctx, rotation.OldRecord.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	roleCtx := ExtractRoleContext(user)
	accessToken, err := s.codec.Sign(user.ID, roleCtx.Roles, roleCtx.BusinessIDs)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		User:             user,
		AccessToken:      accessToken,
		RefreshToken:     rotation.NewRawToken,
		RefreshExpiresAt: rotation.NewExpiresAt,
	}, nil
}

// RequestPasswordReset records a reset request. It never reports whether
// the email exists; delivery of the reset link is handled outside this
// service. OAuth-only accounts (no password) are skipped silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil || user.Password == "" {
		return
	}
	logger.Log.WithField("user_id", user.ID).Info("Password reset requested")
}

// Logout revokes the presented refresh token. Revoking an already revoked
// or unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	return s.refreshTokens.RevokeByRawToken(ctx, rawToken)
}

// LogoutAll revokes every refresh token the user holds.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.refreshTokens.RevokeAllForUser(ctx, userID)
}
