// file: service/token_codec_test.go

package service

import (
	"testing"
	"time"

	"bizpilot-api/common"

	"github.com/stretchr/testify/assert"
)

func newTestCodec() *TokenCodec {
	return NewTokenCodec("test-secret", 15*time.Minute, "bizpilot-api", "bizpilot-app")
}

func TestTokenCodec_SignDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec()

	roles := []string{"owner", "member", "owner"}
	businessIDs := []string{"biz-1", "biz-2", "biz-3"}

	tokenString, err := codec.Sign("user-1", roles, businessIDs)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := codec.Decode(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "bizpilot-api", claims.Issuer)
	assert.Contains(t, claims.Audience, "bizpilot-app")
	// Duplicates and ordering survive the round trip untouched.
	assert.Equal(t, roles, claims.Roles)
	assert.Equal(t, businessIDs, claims.BusinessIDs)
}

func TestTokenCodec_EmptyRoleContext(t *testing.T) {
	codec := newTestCodec()

	tokenString, err := codec.Sign("user-2", nil, nil)
	assert.NoError(t, err)

	claims, err := codec.Decode(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims.Roles)
	assert.NotNil(t, claims.BusinessIDs)
	assert.Empty(t, claims.Roles)
	assert.Empty(t, claims.BusinessIDs)
}

func TestTokenCodec_DecodeFailuresAreIndistinguishable(t *testing.T) {
	codec := newTestCodec()

	validToken, err := codec.Sign("user-3", []string{"owner"}, []string{"biz-1"})
	assert.NoError(t, err)

	t.Run("malformed token", func(t *testing.T) {
		_, err := codec.Decode("not-a-jwt")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := codec.Decode(validToken + "x")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenCodec("different-secret", 15*time.Minute, "bizpilot-api", "bizpilot-app")
		_, err := other.Decode(validToken)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenCodec("test-secret", -1*time.Minute, "bizpilot-api", "bizpilot-app")
		tokenString, err := expired.Sign("user-3", nil, nil)
		assert.NoError(t, err)

		_, err = codec.Decode(tokenString)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewTokenCodec("test-secret", 15*time.Minute, "bizpilot-api", "other-app")
		tokenString, err := other.Sign("user-3", nil, nil)
		assert.NoError(t, err)

		_, err = codec.Decode(tokenString)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})
}
