package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/destinyy00/skillswap/errors"
)

type contextKey string

const identityKey contextKey = "identity"

// Middleware returns a chi-compatible handler wrapper that rejects requests
// without a valid bearer token and injects the verified identity into the
// request context for downstream handlers.
func Middleware(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, errors.ErrMissingToken)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				unauthorized(w, errors.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// BearerToken extracts the token from the standard "Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// WithIdentity stores the verified identity on the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom retrieves the verified identity injected by Middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
