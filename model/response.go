// file: model/response.go

package model

import "time"

// AuthResponse is the successful issuance payload. RefreshToken is omitted
// for browser clients, which receive the secret via an http-only cookie
// instead; it must never appear in a script-accessible response body.
type AuthResponse struct {
	Message          string    `json:"message,omitempty"`
	User             *User     `json:"user"`
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken,omitempty"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
