// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required,min=2"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the raw refresh token for non-browser clients.
// Browser clients send it via the refresh cookie instead.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// GoogleTokenRequest defines the payload for the Google ID token exchange.
type GoogleTokenRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// ForgotPasswordRequest defines the payload for a password reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}
