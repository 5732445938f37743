// file: service/google_test.go

package service

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizpilot-api/common"
	"bizpilot-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTokenInfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleAuthService_VerifyIDToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		srv := newTokenInfoServer(t, http.StatusOK,
			`{"sub":"g-123","aud":"client-1","email":"g@x.com","email_verified":"true","name":"G User","picture":"p"}`)
		svc := NewGoogleAuthService("client-1", "secret")
		svc.tokenInfoURL = srv.URL

		profile, err := svc.VerifyIDToken(context.Background(), "id-token")
		assert.NoError(t, err)
		assert.Equal(t, "g-123", profile.ID)
		assert.Equal(t, "g@x.com", profile.Email)
		assert.True(t, profile.EmailVerified)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		srv := newTokenInfoServer(t, http.StatusOK,
			`{"sub":"g-123","aud":"someone-else","email":"g@x.com","email_verified":"true"}`)
		svc := NewGoogleAuthService("client-1", "secret")
		svc.tokenInfoURL = srv.URL

		_, err := svc.VerifyIDToken(context.Background(), "id-token")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("provider rejects token", func(t *testing.T) {
		srv := newTokenInfoServer(t, http.StatusBadRequest, `{"error":"invalid_token"}`)
		svc := NewGoogleAuthService("client-1", "secret")
		svc.tokenInfoURL = srv.URL

		_, err := svc.VerifyIDToken(context.Background(), "bad")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewGoogleAuthService("", "")
		_, err := svc.VerifyIDToken(context.Background(), "anything")
		assert.ErrorIs(t, err, ErrGoogleNotConfigured)
	})
}

func TestAuthService_GoogleLogin(t *testing.T) {
	profile := &GoogleProfile{ID: "g-123", Email: "g@x.com", Name: "G User", EmailVerified: true}

	t.Run("existing provider user", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, _, codec := newTestAuthService(mockRepo, newFakeTokenRepo())

		user := &model.User{ID: "user-1", Email: "g@x.com", Provider: model.ProviderGoogle, BusinessUsers: []model.BusinessUser{}}
		mockRepo.On("GetUserByProvider", mock.Anything, model.ProviderGoogle, "g-123").Return(user, nil).Once()
		mockRepo.On("GetAuthUserByID", mock.Anything, "user-1").Return(user, nil).Once()

		resp, err := authService.GoogleLogin(context.Background(), profile)
		assert.NoError(t, err)

		claims, err := codec.Decode(resp.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		mockRepo.AssertExpectations(t)
	})

	t.Run("links provider to existing email account", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, _, _ := newTestAuthService(mockRepo, newFakeTokenRepo())

		existing := &model.User{ID: "user-2", Email: "g@x.com", Provider: model.ProviderEmail, BusinessUsers: []model.BusinessUser{}}
		mockRepo.On("GetUserByProvider", mock.Anything, model.ProviderGoogle, "g-123").Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("GetUserByEmail", mock.Anything, "g@x.com").Return(existing, nil).Once()
		mockRepo.On("LinkProvider", mock.Anything, "user-2", model.ProviderGoogle, "g-123", true).Return(nil).Once()
		mockRepo.On("GetAuthUserByID", mock.Anything, "user-2").Return(existing, nil).Once()

		_, err := authService.GoogleLogin(context.Background(), profile)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("creates user on first login", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService, _, _ := newTestAuthService(mockRepo, newFakeTokenRepo())

		mockRepo.On("GetUserByProvider", mock.Anything, model.ProviderGoogle, "g-123").Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("GetUserByEmail", mock.Anything, "g@x.com").Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "g@x.com" && u.Provider == model.ProviderGoogle && u.ProviderID == "g-123" && u.Password == ""
		})).Run(func(args mock.Arguments) {
			u := args.Get(1).(*model.User)
			u.ID = "user-3"
			u.BusinessUsers = []model.BusinessUser{}
		}).Return(nil).Once()
		created := &model.User{ID: "user-3", Email: "g@x.com", Provider: model.ProviderGoogle, BusinessUsers: []model.BusinessUser{}}
		mockRepo.On("GetAuthUserByID", mock.Anything, "user-3").Return(created, nil).Once()

		_, err := authService.GoogleLogin(context.Background(), profile)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
