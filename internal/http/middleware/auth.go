package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
)

// AuthMiddleware verifies the identity provider's bearer tokens. The
// token's sub claim carries the provider user id that the rest of the
// system keys on.
type AuthMiddleware struct {
	secret []byte
	logger logger.Logger
}

// NewAuthMiddleware creates a new auth middleware with the shared
// signing secret
func NewAuthMiddleware(secret string, logger logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// RequireAuth wraps a handler, rejecting requests without a valid
// bearer token and injecting the caller's user id into the context
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeAuthError(w, "invalid authorization header format")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			m.logger.Debug("Rejected bearer token: " + errString(err))
			writeAuthError(w, "invalid or expired token")
			return
		}

		if claims.Subject == "" {
			writeAuthError(w, "token has no subject")
			return
		}

		ctx := context.WithValue(r.Context(), domain.UserIDKey, claims.Subject)
		next(w, r.WithContext(ctx))
	}
}

// GetUserID extracts the authenticated user id set by RequireAuth
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(domain.UserIDKey).(string)
	return userID, ok && userID != ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}

func errString(err error) string {
	if err == nil {
		return "token invalid"
	}
	return err.Error()
}
