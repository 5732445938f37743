package model

import "time"

// User is the identity record. Users are created on registration or first
// OAuth login and are never hard-deleted by this service.
type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	FullName      string         `json:"fullName"`
	Password      string         `json:"-"` // bcrypt hash, empty for OAuth-only users
	Provider      string         `json:"provider"`
	ProviderID    string         `json:"-"`
	EmailVerified bool           `json:"emailVerified"`
	CreatedAt     time.Time      `json:"createdAt"`
	BusinessUsers []BusinessUser `json:"businesses"`
}

// BusinessUser links a user to a business with a role. A user may hold
// memberships in any number of businesses.
type BusinessUser struct {
	ID           string `json:"-"`
	UserID       string `json:"-"`
	BusinessID   string `json:"id"`
	BusinessName string `json:"name"`
	Role         string `json:"role"`
	IsActive     bool   `json:"isActive"`
}

// Supported identity providers.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)
