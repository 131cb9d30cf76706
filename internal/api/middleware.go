// Package api implements the TurboNote REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/eralp/turbonote/internal/apperr"
)

type ctxKey int

const userIDKey ctxKey = iota

// UserID returns the authenticated caller's user id from the request
// context, or an empty string when absent.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// Identity resolves an opaque bearer token to a user id. Token
// verification is fully delegated here; handlers only ever see the
// resulting owner id.
type Identity interface {
	Verify(ctx context.Context, token string) (string, error)
}

// StaticTokens is an Identity backed by a fixed token-to-user map,
// configured from the auth section of the config file.
type StaticTokens map[string]string

// Verify looks the token up in the map.
func (s StaticTokens) Verify(_ context.Context, token string) (string, error) {
	uid, ok := s[token]
	if !ok {
		return "", apperr.Unauthorized("invalid token")
	}
	return uid, nil
}

// AuthMiddleware returns middleware that resolves the caller identity.
// With a nil identity (auth disabled) every request is attributed to
// devUser. Otherwise requests must carry "Authorization: Bearer
// <token>" and the token must verify.
func AuthMiddleware(identity Identity, devUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, devUser)))
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, apperr.Unauthorized("missing or invalid Authorization header"))
				return
			}
			uid, err := identity.Verify(r.Context(), strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
		})
	}
}
