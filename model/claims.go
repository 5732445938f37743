package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the access token claim set. Roles and BusinessIDs are
// parallel slices snapshotted from the user's active memberships at
// issuance time; they are never deduplicated or sorted.
type AppClaims struct {
	Roles       []string `json:"roles"`
	BusinessIDs []string `json:"businessIds"`
	jwt.RegisteredClaims
}
