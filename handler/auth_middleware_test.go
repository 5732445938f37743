// file: handler/auth_middleware_test.go

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizpilot-api/model"
	"bizpilot-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetAuthUserByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) LinkProvider(ctx context.Context, userID, provider, providerID string, emailVerified bool) error {
	args := m.Called(ctx, userID, provider, providerID, emailVerified)
	return args.Error(0)
}

func testCodec() *service.TokenCodec {
	return service.NewTokenCodec("test-secret", 15*time.Minute, "bizpilot-api", "bizpilot-app")
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	assert.NoError(t, json.Unmarshal(body, &payload))
	return payload.Code
}

func TestVerifyAccessToken(t *testing.T) {
	okHandler := func(authCtx **AuthContext) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*authCtx = AuthFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("missing authorization header", func(t *testing.T) {
		m := NewAuthMiddleware(testCodec(), new(mockUserRepo))
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		rr := httptest.NewRecorder()

		var got *AuthContext
		m.VerifyAccessToken(okHandler(&got)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "AUTH_HEADER_MISSING", decodeErrorCode(t, rr.Body.Bytes()))
		assert.Nil(t, got)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		m := NewAuthMiddleware(testCodec(), new(mockUserRepo))
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()

		var got *AuthContext
		m.VerifyAccessToken(okHandler(&got)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "AUTH_HEADER_MISSING", decodeErrorCode(t, rr.Body.Bytes()))
	})

	t.Run("invalid token", func(t *testing.T) {
		m := NewAuthMiddleware(testCodec(), new(mockUserRepo))
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()

		var got *AuthContext
		m.VerifyAccessToken(okHandler(&got)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeErrorCode(t, rr.Body.Bytes()))
	})

	t.Run("user deleted after issuance", func(t *testing.T) {
		codec := testCodec()
		repo := new(mockUserRepo)
		repo.On("GetAuthUserByID", mock.Anything, "ghost").Return(nil, sql.ErrNoRows).Once()
		m := NewAuthMiddleware(codec, repo)

		token, err := codec.Sign("ghost", []string{"owner"}, []string{"biz-1"})
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		var got *AuthContext
		m.VerifyAccessToken(okHandler(&got)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "USER_NOT_FOUND", decodeErrorCode(t, rr.Body.Bytes()))
		repo.AssertExpectations(t)
	})

	t.Run("role context comes from live memberships, not the token", func(t *testing.T) {
		codec := testCodec()
		repo := new(mockUserRepo)
		// Token snapshot says owner of biz-1; membership has since changed.
		liveUser := &model.User{
			ID:    "user-1",
			Email: "a@x.com",
			BusinessUsers: []model.BusinessUser{
				{BusinessID: "biz-2", Role: "member", IsActive: true},
			},
		}
		repo.On("GetAuthUserByID", mock.Anything, "user-1").Return(liveUser, nil).Once()
		m := NewAuthMiddleware(codec, repo)

		token, err := codec.Sign("user-1", []string{"owner"}, []string{"biz-1"})
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		var got *AuthContext
		m.VerifyAccessToken(okHandler(&got)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotNil(t, got)
		assert.Equal(t, "user-1", got.User.ID)
		assert.Equal(t, []string{"member"}, got.Roles)
		assert.Equal(t, []string{"biz-2"}, got.BusinessIDs)
	})
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(testCodec(), new(mockUserRepo))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serveWithAuthCtx := func(authCtx *AuthContext, requiredRoles ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/protected", nil)
		if authCtx != nil {
			req = req.WithContext(context.WithValue(req.Context(), authContextKey, authCtx))
		}
		rr := httptest.NewRecorder()
		m.RequireRole(requiredRoles...)(next).ServeHTTP(rr, req)
		return rr
	}

	t.Run("no auth context", func(t *testing.T) {
		rr := serveWithAuthCtx(nil, "owner")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rr.Body.Bytes()))
	})

	t.Run("empty role set", func(t *testing.T) {
		rr := serveWithAuthCtx(&AuthContext{User: &model.User{ID: "u"}, Roles: []string{}}, "owner")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rr.Body.Bytes()))
	})

	t.Run("role mismatch", func(t *testing.T) {
		rr := serveWithAuthCtx(&AuthContext{User: &model.User{ID: "u"}, Roles: []string{"member"}}, "owner", "admin")
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "FORBIDDEN", decodeErrorCode(t, rr.Body.Bytes()))
	})

	t.Run("role match in any business", func(t *testing.T) {
		rr := serveWithAuthCtx(&AuthContext{User: &model.User{ID: "u"}, Roles: []string{"member", "owner"}}, "owner")
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
