// file: service/google.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"bizpilot-api/common"
	"bizpilot-api/logger"
	"bizpilot-api/model"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrGoogleNotConfigured = errors.New("google oauth is not configured")

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleProfile is the provider-verified identity used to find or create
// the local user.
type GoogleProfile struct {
	ID            string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// IGoogleVerifier abstracts the provider round-trip so the login flow can
// be tested without Google.
type IGoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// GoogleAuthService verifies Google credentials. The OAuth UI flow itself
// lives with the client; this service only handles the post-verification
// step of turning a provider credential into a profile.
type GoogleAuthService struct {
	conf         *oauth2.Config
	httpClient   *http.Client
	tokenInfoURL string
}

func NewGoogleAuthService(clientID, clientSecret string) *GoogleAuthService {
	return &GoogleAuthService{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		httpClient:   http.DefaultClient,
		tokenInfoURL: googleTokenInfoURL,
	}
}

// VerifyIDToken validates a Google ID token against the tokeninfo endpoint
// and checks the audience matches our client id.
func (s *GoogleAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	if s.conf.ClientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	reqURL := s.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to reach Google tokeninfo endpoint")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, common.ErrInvalidToken
	}

	var payload struct {
		Sub           string `json:"sub"`
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, common.ErrInvalidToken
	}
	if payload.Sub == "" || payload.Aud != s.conf.ClientID {
		return nil, common.ErrInvalidToken
	}
	if payload.Email == "" {
		return nil, fmt.Errorf("google account email is required")
	}

	return &GoogleProfile{
		ID:            payload.Sub,
		Email:         payload.Email,
		Name:          payload.Name,
		Picture:       payload.Picture,
		EmailVerified: payload.EmailVerified == "true",
	}, nil
}

// GoogleLogin finds or creates the user matching a verified Google profile,
// linking the provider identity to an existing email account when needed,
// and issues a session for it.
func (s *AuthService) GoogleLogin(ctx context.Context, profile *GoogleProfile) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetUserByProvider(ctx, model.ProviderGoogle, profile.ID)
	switch {
	case err == nil:
	case err == sql.ErrNoRows:
		user, err = s.userRepo.GetUserByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			// Existing email account: attach the Google identity to it.
			if err := s.userRepo.LinkProvider(ctx, user.ID, model.ProviderGoogle, profile.ID, profile.EmailVerified); err != nil {
				return nil, err
			}
		case err == sql.ErrNoRows:
			user = &model.User{
				Email:         profile.Email,
				FullName:      profile.Name,
				Provider:      model.ProviderGoogle,
				ProviderID:    profile.ID,
				EmailVerified: profile.EmailVerified,
			}
			if err := s.userRepo.CreateUser(ctx, user); err != nil {
				return nil, err
			}
			logger.Log.WithField("user_id", user.ID).Info("User created from Google login")
		default:
			return nil, err
		}
	default:
		return nil, err
	}

	return s.IssueTokenPair(ctx, user.ID)
}
