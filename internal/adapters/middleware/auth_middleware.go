package middleware

import (
	"context"
	"crypto/rsa"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
)

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	sessions  ports.SessionStore
}

// NewAuthMiddleware verifies RS256 access tokens. When sessions is non-nil
// the token's jti must still be registered, so logged out tokens stop
// working before they expire.
func NewAuthMiddleware(publicKey *rsa.PublicKey, sessions ports.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		publicKey: publicKey,
		sessions:  sessions,
	}
}

type contextKey string

const (
	UserIDKey  contextKey = "userID"
	RoleKey    contextKey = "role"
	SessionKey contextKey = "sessionID"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Role      domain.Role
	SessionID string
}

// PrincipalFrom returns the caller stored by RequireRole.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return Principal{}, false
	}
	role, _ := ctx.Value(RoleKey).(domain.Role)
	sessionID, _ := ctx.Value(SessionKey).(string)
	return Principal{UserID: userID, Role: role, SessionID: sessionID}, true
}

// WithPrincipal stores p the way RequireRole does.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, p.UserID)
	ctx = context.WithValue(ctx, RoleKey, p.Role)
	return context.WithValue(ctx, SessionKey, p.SessionID)
}

// Authenticate admits any caller holding a valid token.
func (m *AuthMiddleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(nil, next)
}

// RequireRole admits callers whose role is in roles. An empty roles list
// admits every authenticated caller.
func (m *AuthMiddleware) RequireRole(roles []domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeAuthError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			log.Printf("auth middleware: token rejected: %v", err)
			writeAuthError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}

		userID, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		sessionID, _ := claims["jti"].(string)
		if userID == "" || role == "" {
			writeAuthError(w, http.StatusUnauthorized, "invalid token: missing subject or role")
			return
		}

		if m.sessions != nil {
			if sessionID == "" {
				writeAuthError(w, http.StatusUnauthorized, "invalid token: missing session")
				return
			}
			active, err := m.sessions.Exists(r.Context(), sessionID)
			if err != nil {
				log.Printf("auth middleware: session lookup failed: %v", err)
				writeAuthError(w, http.StatusServiceUnavailable, "session store unavailable")
				return
			}
			if !active {
				writeAuthError(w, http.StatusUnauthorized, "session expired or revoked")
				return
			}
		}

		if len(roles) > 0 && !slices.Contains(roles, domain.Role(role)) {
			log.Printf("auth middleware: role %s not in %v for %s %s", role, roles, r.Method, r.URL.Path)
			writeAuthError(w, http.StatusForbidden, "forbidden")
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{
			UserID:    userID,
			Role:      domain.Role(role),
			SessionID: sessionID,
		})
		next(w, r.WithContext(ctx))
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	kind := "Unauthorized"
	switch status {
	case http.StatusForbidden:
		kind = "Forbidden"
	case http.StatusServiceUnavailable:
		kind = "Unavailable"
	}
	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(map[string]string{
		"kind":    kind,
		"message": message,
	})
}
