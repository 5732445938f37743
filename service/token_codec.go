// file: service/token_codec.go

package service

import (
	"time"

	"bizpilot-api/common"
	"bizpilot-api/logger"
	"bizpilot-api/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and verifies short-lived access tokens. It is pure: both
// operations are functions of the input plus the configured secret and TTL,
// with no storage involved.
type TokenCodec struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
}

func NewTokenCodec(secret string, ttl time.Duration, issuer, audience string) *TokenCodec {
	return &TokenCodec{
		secret:   []byte(secret),
		ttl:      ttl,
		issuer:   issuer,
		audience: audience,
	}
}

// Sign produces an access token carrying a point-in-time snapshot of the
// user's role context. The snapshot is not re-derived from the token after
// issuance; staleness is bounded by the token TTL.
func (c *TokenCodec) Sign(userID string, roles, businessIDs []string) (string, error) {
	if roles == nil {
		roles = []string{}
	}
	if businessIDs == nil {
		businessIDs = []string{}
	}

	now := time.Now()
	claims := &model.AppClaims{
		Roles:       roles,
		BusinessIDs: businessIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to sign access token")
		return "", err
	}
	return tokenString, nil
}

// Decode verifies signature and expiry and returns the claims. Every failure
// collapses to common.ErrInvalidToken; callers must not be able to tell a
// bad signature from an expired or malformed token.
func (c *TokenCodec) Decode(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithAudience(c.audience))

	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
