package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doorman-ac/doorman/internal/api/presenter"
)

const adminRole = "admin"

// AdminAuth gates the admin surface (explain, control listing, audit queries,
// task administration) behind an HMAC session token carrying the admin role.
// TODO(future): replace the single-role check with proper RBAC once there is
// more than one privileged surface.
func AdminAuth(signingKey []byte) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if tokenStr == "" {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims,
				func(t *jwt.Token) (any, error) { return signingKey, nil },
				jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			)
			if err != nil || !token.Valid {
				presenter.Error(w, r, "invalid session token", http.StatusUnauthorized)
				return
			}

			if !hasRole(claims, adminRole) {
				presenter.Error(w, r, "insufficient privileges", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(claims jwt.MapClaims, role string) bool {
	roles, ok := claims["roles"].([]any)
	if !ok {
		return false
	}
	for _, candidate := range roles {
		if s, ok := candidate.(string); ok && s == role {
			return true
		}
	}
	return false
}
