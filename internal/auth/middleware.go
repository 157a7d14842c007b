package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/agrosig/agrosig-api/internal/respond"
	roleentity "github.com/agrosig/agrosig-api/internal/role/entity"
)

// Identity is the authenticated principal attached to the request context.
type Identity struct {
	UserID int64
	RoleID int64
}

type ctxKey int

const identityKey ctxKey = iota

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the identity attached by the gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

const (
	// HeaderRefreshToken carries the client's refresh token on requests.
	HeaderRefreshToken = "X-Refresh-Token"
	// HeaderNewAccessToken exposes a silently renewed access token to the
	// client on responses.
	HeaderNewAccessToken = "X-New-Access-Token"
)

// Authenticate is the per-request authorization gate. It verifies the access
// token from the Authorization header; when the access token is expired and
// a refresh token is present (or only a refresh token was sent), it verifies
// the refresh token, issues a fresh access token, and surfaces it through
// the X-New-Access-Token response header.
func Authenticate(tokens *TokenService, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			refreshToken := r.Header.Get(HeaderRefreshToken)
			if authHeader == "" && refreshToken == "" {
				respond.FailCode(w, http.StatusUnauthorized, "TOKEN_MISSING", "Unauthorized access, the token is missing")
				return
			}

			var accessToken string
			if authHeader != "" {
				if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 {
					accessToken = strings.TrimSpace(parts[1])
				}
			}

			if accessToken != "" {
				claims, err := tokens.VerifyAccessToken(accessToken)
				switch {
				case err == nil:
					next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Identity{UserID: claims.UserID, RoleID: claims.RoleID})))
					return
				case errors.Is(err, ErrTokenExpired) && refreshToken != "":
					// fall through to the refresh path
				case errors.Is(err, ErrTokenExpired):
					respond.FailCode(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token expired but no refresh token provided")
					return
				default:
					logger.Debugw("access token rejected", "err", err)
					respond.FailCode(w, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid authentication token")
					return
				}
			}

			if refreshToken != "" {
				claims, err := tokens.VerifyRefreshToken(refreshToken)
				if err != nil {
					logger.Debugw("refresh token rejected", "err", err)
					respond.FailCode(w, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "Invalid refresh token")
					return
				}
				identity := Identity{UserID: claims.UserID, RoleID: claims.RoleID}
				newAccess, err := tokens.IssueAccessToken(identity.UserID, identity.RoleID)
				if err != nil {
					logger.Errorw("issue renewed access token", "err", err)
					respond.Fail(w, http.StatusInternalServerError, "authentication failed")
					return
				}
				w.Header().Set(HeaderNewAccessToken, newAccess)
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
				return
			}

			respond.FailCode(w, http.StatusUnauthorized, "TOKEN_MISSING", "No valid authentication tokens provided")
		})
	}
}

// RoleDirectory resolves role assignments for the role gate.
type RoleDirectory interface {
	GetUserRoleID(ctx context.Context, userID int64) (int64, error)
	GetByID(ctx context.Context, roleID int64) (*roleentity.Role, error)
}

// Authorize gates a route on role membership. It requires a prior identity
// from Authenticate, resolves the user's role assignment and the role row,
// and rejects when the role is not in the allowed set.
func Authorize(roles RoleDirectory, logger *zap.SugaredLogger, allowed ...int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				respond.Fail(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			roleID, err := roles.GetUserRoleID(r.Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					respond.Fail(w, http.StatusForbidden, "Access denied, user not found")
					return
				}
				logger.Errorw("resolve user role", "user_id", identity.UserID, "err", err)
				respond.Fail(w, http.StatusInternalServerError, "authorization failed")
				return
			}

			role, err := roles.GetByID(r.Context(), roleID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					respond.Fail(w, http.StatusForbidden, "Access denied, insufficient permissions")
					return
				}
				logger.Errorw("resolve role", "role_id", roleID, "err", err)
				respond.Fail(w, http.StatusInternalServerError, "authorization failed")
				return
			}

			if len(allowed) > 0 && !containsRole(allowed, role.ID) {
				respond.Fail(w, http.StatusForbidden, "Access denied, insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func containsRole(allowed []int64, roleID int64) bool {
	for _, id := range allowed {
		if id == roleID {
			return true
		}
	}
	return false
}
