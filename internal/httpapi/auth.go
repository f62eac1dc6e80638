package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authorize checks the Authorization header against the configured API
// key. Always true when auth is not required.
func authorize(r *http.Request) bool {
	if !requireAuth {
		return true
	}
	h := r.Header.Get("Authorization")
	if h == "" {
		return false
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) == 1
}
