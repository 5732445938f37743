package repository

import (
	"context"
	"database/sql"

	"bizpilot-api/logger"
	"bizpilot-api/model"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetAuthUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByProvider(ctx context.Context, provider, providerID string) (*model.User, error)
	LinkProvider(ctx context.Context, userID, provider, providerID string, emailVerified bool) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (email, full_name, password, provider, provider_id, email_verified)
	          VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6)
	          RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.Password, user.Provider, user.ProviderID, user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	if user.BusinessUsers == nil {
		user.BusinessUsers = []model.BusinessUser{}
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	var password, providerID sql.NullString
	query := `SELECT id, email, full_name, password, provider, provider_id, email_verified, created_at
	          FROM users WHERE email = $1`
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &password, &user.Provider, &providerID, &user.EmailVerified, &user.CreatedAt,
	)
	if err != nil {
		return nil, err // Return sql.ErrNoRows if not found
	}
	user.Password = password.String
	user.ProviderID = providerID.String
	return user, nil
}

// GetAuthUserByID loads the user together with its active business
// memberships, in membership enumeration order. This is the read the
// middleware performs on every authenticated request.
func (r *UserRepository) GetAuthUserByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	var password, providerID sql.NullString
	query := `SELECT id, email, full_name, password, provider, provider_id, email_verified, created_at
	          FROM users WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &password, &user.Provider, &providerID, &user.EmailVerified, &user.CreatedAt,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get user by id query")
		}
		return nil, err
	}
	user.Password = password.String
	user.ProviderID = providerID.String

	memberships, err := r.getActiveMemberships(ctx, id)
	if err != nil {
		return nil, err
	}
	user.BusinessUsers = memberships
	return user, nil
}

func (r *UserRepository) getActiveMemberships(ctx context.Context, userID string) ([]model.BusinessUser, error) {
	query := `SELECT bu.id, bu.user_id, bu.business_id, b.name, bu.role, bu.is_active
	          FROM business_users bu
	          JOIN businesses b ON b.id = bu.business_id
	          WHERE bu.user_id = $1 AND bu.is_active = TRUE
	          ORDER BY bu.created_at`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute get memberships query")
		return nil, err
	}
	defer rows.Close()

	memberships := []model.BusinessUser{}
	for rows.Next() {
		var bu model.BusinessUser
		if err := rows.Scan(&bu.ID, &bu.UserID, &bu.BusinessID, &bu.BusinessName, &bu.Role, &bu.IsActive); err != nil {
			logger.Log.WithError(err).Error("Failed to scan membership row")
			return nil, err
		}
		memberships = append(memberships, bu)
	}
	return memberships, rows.Err()
}

func (r *UserRepository) GetUserByProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	user := &model.User{}
	var password, provID sql.NullString
	query := `SELECT id, email, full_name, password, provider, provider_id, email_verified, created_at
	          FROM users WHERE provider = $1 AND provider_id = $2`
	err := r.DB.QueryRowContext(ctx, query, provider, providerID).Scan(
		&user.ID, &user.Email, &user.FullName, &password, &user.Provider, &provID, &user.EmailVerified, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Password = password.String
	user.ProviderID = provID.String
	return user, nil
}

// LinkProvider attaches an OAuth identity to an existing user record.
func (r *UserRepository) LinkProvider(ctx context.Context, userID, provider, providerID string, emailVerified bool) error {
	query := `UPDATE users SET provider = $2, provider_id = $3, email_verified = $4 WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, userID, provider, providerID, emailVerified)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute link provider query")
	}
	return err
}
