package middleware

import (
	"context"
	"net/http"
	"strings"
)

// SessionIDHeader identifies the client session for the location cache
const SessionIDHeader = "X-Session-ID"

type sessionKey struct{}

// Session copies the client's session id header onto the request context
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(SessionIDHeader)); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, id))
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFrom returns the session id of the request, or ""
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
