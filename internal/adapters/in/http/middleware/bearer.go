// internal/adapters/in/http/middleware/bearer.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
)

// TokenValidator reports whether a bearer token was issued by this server.
type TokenValidator interface {
	ValidToken(token string) bool
}

// BearerToken returns the token accepted by BearerAuth.
func BearerToken(ctx context.Context) string {
	v, _ := ctx.Value(bearerKey).(string)
	return v
}

// BearerAuth rejects requests without a known "Authorization: Bearer" token.
func BearerAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				WriteError(w, r, http.StatusServiceUnavailable, "auth middleware not initialized")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, r, http.StatusUnauthorized, "unauthorized: missing bearer token")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token == "" {
				WriteError(w, r, http.StatusUnauthorized, "unauthorized: empty bearer token")
				return
			}
			if !v.ValidToken(token) {
				log.Printf("[bearer] rejected token (len=%d)", len(token))
				WriteError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bearerKey, token)))
		})
	}
}
