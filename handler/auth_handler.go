package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bizpilot-api/common"
	"bizpilot-api/model"
	"bizpilot-api/service"
)

// AuthHandler exposes the session endpoints. Transport of the refresh
// secret is decided per request: browsers get an http-only cookie and no
// refreshToken field, everything else gets the JSON field and no cookie.
type AuthHandler struct {
	authService    *service.AuthService
	googleVerifier service.IGoogleVerifier
	cookies        *service.CookieBuilder
}

func NewAuthHandler(authService *service.AuthService, googleVerifier service.IGoogleVerifier, cookies *service.CookieBuilder) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		googleVerifier: googleVerifier,
		cookies:        cookies,
	}
}

// mapAuthError translates service errors to wire errors without leaking why
// a credential failed. Anything unrecognized is a generic 500 so store
// outages never masquerade as invalid credentials.
func mapAuthError(err error) *common.AppError {
	switch {
	case errors.Is(err, common.ErrUserExists):
		return common.NewAppError(http.StatusConflict, common.CodeUserExists, "User with this email already exists", nil)
	case errors.Is(err, common.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, common.CodeInvalidCredentials, "Invalid email or password", nil)
	case errors.Is(err, common.ErrInvalidRefreshToken):
		return common.NewAppError(http.StatusUnauthorized, common.CodeInvalidRefreshToken, "Invalid refresh token", nil)
	case errors.Is(err, common.ErrInvalidToken):
		return common.NewAppError(http.StatusUnauthorized, common.CodeInvalidToken, "Invalid or expired token", nil)
	case errors.Is(err, common.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, common.CodeUserNotFound, "User not found", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, common.CodeInternalError, "Something went wrong", err)
	}
}

// sendAuthResponse writes the issuance payload, moving the refresh secret
// into the cookie for browser clients so it never reaches a
// script-accessible body.
func (h *AuthHandler) sendAuthResponse(w http.ResponseWriter, r *http.Request, status int, resp *model.AuthResponse) {
	if service.IsBrowserClient(r.UserAgent()) {
		http.SetCookie(w, h.cookies.BuildRefreshCookie(resp.RefreshToken, resp.RefreshExpiresAt))
		resp.RefreshToken = ""
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// extractRefreshToken pulls the raw refresh token from the cookie (browser
// clients) or the JSON body (everything else).
func (h *AuthHandler) extractRefreshToken(r *http.Request) string {
	if cookie, err := r.Cookie(h.cookies.Name); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201  {object}  model.AuthResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		return mapAuthError(err)
	}

	resp.Message = "User registered successfully"
	h.sendAuthResponse(w, r, http.StatusCreated, resp)
	return nil
}

// Login godoc
// @Summary      Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login payload"
// @Success      200  {object}  model.AuthResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		return mapAuthError(err)
	}

	resp.Message = "Login successful"
	h.sendAuthResponse(w, r, http.StatusOK, resp)
	return nil
}

// Refresh godoc
// @Summary      Rotate the refresh token and reissue the session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  model.AuthResponse
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	rawToken := h.extractRefreshToken(r)
	if rawToken == "" {
		return common.NewAppError(http.StatusBadRequest, common.CodeMissingRefreshToken, "Refresh token is required", nil)
	}

	resp, err := h.authService.Refresh(r.Context(), rawToken)
	if err != nil {
		return mapAuthError(err)
	}

	resp.Message = "Tokens refreshed successfully"
	h.sendAuthResponse(w, r, http.StatusOK, resp)
	return nil
}

// GoogleToken godoc
// @Summary      Exchange a verified Google ID token for a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.GoogleTokenRequest true "Google ID token"
// @Success      200  {object}  model.AuthResponse
// @Router       /api/auth/google/token [post]
func (h *AuthHandler) GoogleToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.GoogleTokenRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	profile, err := h.googleVerifier.VerifyIDToken(r.Context(), req.IDToken)
	if err != nil {
		return mapAuthError(err)
	}

	resp, err := h.authService.GoogleLogin(r.Context(), profile)
	if err != nil {
		return mapAuthError(err)
	}

	resp.Message = "Google login successful"
	h.sendAuthResponse(w, r, http.StatusOK, resp)
	return nil
}

// Logout godoc
// @Summary      Revoke the presented refresh token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	rawToken := h.extractRefreshToken(r)
	if rawToken == "" {
		return common.NewAppError(http.StatusBadRequest, common.CodeMissingRefreshToken, "Refresh token is required", nil)
	}

	if err := h.authService.Logout(r.Context(), rawToken); err != nil {
		return mapAuthError(err)
	}

	http.SetCookie(w, h.cookies.BuildClearCookie())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logout successful"})
	return nil
}

// LogoutAll godoc
// @Summary      Revoke every refresh token for the current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /api/auth/logout-all [post]
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) *common.AppError {
	authCtx := AuthFromContext(r.Context())
	if authCtx == nil {
		return common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Unauthorized", nil)
	}

	if err := h.authService.LogoutAll(r.Context(), authCtx.User.ID); err != nil {
		return mapAuthError(err)
	}

	http.SetCookie(w, h.cookies.BuildClearCookie())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out everywhere"})
	return nil
}

// Me godoc
// @Summary      Return the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	authCtx := AuthFromContext(r.Context())
	if authCtx == nil {
		return common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Unauthorized", nil)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]*model.User{"user": authCtx.User})
	return nil
}

// ForgotPassword godoc
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.ForgotPasswordRequest true "Email"
// @Success      200  {object}  map[string]string
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ForgotPasswordRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	h.authService.RequestPasswordReset(r.Context(), req.Email)

	// Identical response whether or not the account exists.
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "If an account with that email exists, a password reset link has been sent.",
	})
	return nil
}
