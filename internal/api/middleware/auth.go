package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

type principalKey struct{}

// TokenParser turns a bearer token into the caller's principal
type TokenParser interface {
	Parse(token string) (*entities.Principal, error)
}

// Authenticate resolves the bearer token, if any, into a principal on the
// request context. Requests without a token continue anonymously; an invalid
// token is rejected.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "malformed authorization header")
				return
			}

			principal, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				log.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			logger := log.Ctx(ctx).With().Str("principal_id", principal.ID).Str("role", string(principal.Role)).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
		})
	}
}

// WithPrincipal attaches the caller to ctx
func WithPrincipal(ctx context.Context, p *entities.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller, or nil for anonymous
// requests
func PrincipalFrom(ctx context.Context) *entities.Principal {
	p, _ := ctx.Value(principalKey{}).(*entities.Principal)
	return p
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
