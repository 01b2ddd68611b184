package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// errNoToken means the request carried no bearer credential at all. Callers
// treat it exactly like a validation failure.
var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue takes any value as a key. With a plain string key, any
// package that knows the string could read or shadow the claims. A
// package-private key type makes that impossible: only this package can
// construct the key, so only these helpers can touch the value, and the
// compiler enforces that handlers go through ClaimsFromContext.
type contextKey struct{}

var claimsKey contextKey

// RequireAuth is a middleware that gates owner-scoped routes.
//
// It reads the `Authorization: Bearer <token>` header, validates the token,
// and stores the claims in the request context. A missing or invalid token
// stops the chain with 401 before the wrapped handler runs — this is a
// synchronous gate, never a best-effort annotation.
//
// The 401 body is identical for "no header", "malformed token", "bad
// signature", and "expired": the response must not reveal which check
// failed.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"Invalid credentials"}`))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated caller's claims.
//
// Returns (nil, false) when the request never passed RequireAuth. On a
// protected route the second return is always true; handlers still check it
// rather than assume.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// extractClaims pulls the bearer credential out of the request and validates
// it. Shared helper for RequireAuth (and any future optional-auth variant).
func extractClaims(r *http.Request, tokens *TokenService) (*Claims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, errNoToken
	}

	return tokens.Validate(token)
}
