// file: model/token.go

package model

import "time"

// RefreshToken holds the data for a refresh token in the database. Only the
// SHA-256 hash of the raw secret is ever persisted; the raw token exists
// solely in the issuance response.
type RefreshToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"` // The hash is not exposed in JSON responses.
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Valid reports whether the token is still usable at the given instant.
// Revocation is monotonic: once RevokedAt is set it is never cleared.
func (t *RefreshToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}
