package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"bizpilot-api/common"
	"bizpilot-api/model"
	"bizpilot-api/repository"
	"bizpilot-api/service"
)

type contextKey string

const authContextKey contextKey = "authContext"

// AuthContext is what the middleware attaches to the request scope: the
// live user plus its recomputed role context. Roles[i] pairs with
// BusinessIDs[i].
type AuthContext struct {
	User        *model.User
	Roles       []string
	BusinessIDs []string
}

// AuthFromContext returns the auth context attached by VerifyAccessToken,
// or nil when the request never passed it.
func AuthFromContext(ctx context.Context) *AuthContext {
	authCtx, _ := ctx.Value(authContextKey).(*AuthContext)
	return authCtx
}

// AuthMiddleware gates requests on a valid access token. Identity is
// trusted from the signed token, but the role context is re-read from
// current memberships on every request, so a membership change takes effect
// on the next request rather than at token expiry.
type AuthMiddleware struct {
	codec    *service.TokenCodec
	userRepo repository.IUserRepository
}

func NewAuthMiddleware(codec *service.TokenCodec, userRepo repository.IUserRepository) *AuthMiddleware {
	return &AuthMiddleware{codec: codec, userRepo: userRepo}
}

func (m *AuthMiddleware) VerifyAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		headerParts := strings.SplitN(authHeader, " ", 2)
		if authHeader == "" || len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
			common.NewAppError(http.StatusUnauthorized, common.CodeAuthHeaderMissing, "Authorization header missing", nil).Send(w)
			return
		}

		claims, err := m.codec.Decode(strings.TrimSpace(headerParts[1]))
		if err != nil {
			common.NewAppError(http.StatusUnauthorized, common.CodeInvalidToken, "Invalid or expired token", nil).Send(w)
			return
		}

		user, err := m.userRepo.GetAuthUserByID(r.Context(), claims.Subject)
		if err != nil {
			if err == sql.ErrNoRows {
				common.NewAppError(http.StatusNotFound, common.CodeUserNotFound, "User not found", nil).Send(w)
				return
			}
			common.NewAppError(http.StatusInternalServerError, common.CodeInternalError, "Something went wrong", err).Send(w)
			return
		}

		roleCtx := service.ExtractRoleContext(user)
		authCtx := &AuthContext{
			User:        user,
			Roles:       roleCtx.Roles,
			BusinessIDs: roleCtx.BusinessIDs,
		}

		ctx := context.WithValue(r.Context(), authContextKey, authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request through when the caller holds at least one
// of the required roles in any of its businesses.
func (m *AuthMiddleware) RequireRole(requiredRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := AuthFromContext(r.Context())
			if authCtx == nil || len(authCtx.Roles) == 0 {
				common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Unauthorized", nil).Send(w)
				return
			}

			hasRole := false
			for _, role := range authCtx.Roles {
				for _, required := range requiredRoles {
					if role == required {
						hasRole = true
					}
				}
			}
			if !hasRole {
				common.NewAppError(http.StatusForbidden, common.CodeForbidden, "Forbidden", nil).Send(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
