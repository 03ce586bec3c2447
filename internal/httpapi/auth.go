package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireToken rejects requests whose Authorization header is not
// "Bearer <token>". An empty token disables the check.
func requireToken(token string) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	if t, ok := bearerToken(token); ok {
		token = t
	}
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(strings.TrimSpace(r.Header.Get("Authorization")))
			if !ok || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="shop"`)
				writeError(w, http.StatusUnauthorized, "missing or invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credentials of a Bearer authorization value. The
// scheme is matched case-insensitively.
func bearerToken(s string) (string, bool) {
	if len(s) < 7 || !strings.EqualFold(s[:7], "bearer ") {
		return "", false
	}
	return strings.TrimSpace(s[7:]), true
}
