package jwt

import (
	"net/http"
	"strings"
)

// TokenQueryKey is the query parameter carrying the session token on websocket upgrades,
// where browsers cannot set an Authorization header.
const TokenQueryKey = "token"

// TokenFromRequest returns the bearer token of r, looking at the Authorization header
// first and the token query parameter second. It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	return r.URL.Query().Get(TokenQueryKey)
}
