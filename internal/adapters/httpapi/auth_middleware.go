package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/newmeca/membership-api/internal/domain"
)

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/metrics"
}

// NewAuthMiddleware enforces Authorization: Bearer <JWT> on every endpoint
// except the infra ones. Tokens are HS256-signed; the `sub` claim carries the
// authenticated profile id and is stored in request context on success.
func NewAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			var claims jwt.RegisteredClaims
			_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
				}
				return secret, nil
			})
			if err != nil || claims.Subject == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), domain.ProfileID(claims.Subject))))
		})
	}
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit profile id via X-Debug-Profile and stores it in
// request context. If the header is absent, it falls back to defaultProfile
// (if provided).
//
// This is intended for local Docker workflows where a real token issuer is
// overkill. Do NOT use this in production deployments.
func NewDevAuthMiddleware(defaultProfile string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			pid := strings.TrimSpace(r.Header.Get("X-Debug-Profile"))
			if pid == "" {
				pid = strings.TrimSpace(defaultProfile)
			}
			if pid == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing profile (set X-Debug-Profile)", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), domain.ProfileID(pid))))
		})
	}
}
