// Package auth provides JWT issuance and validation for the linklair API.
//
// AUTHENTICATION FLOW:
//  1. POST /api/auth/register — account is created with a hashed password
//  2. POST /api/auth/login    — password is verified, server issues a JWT
//  3. The client sends `Authorization: Bearer <token>` on protected routes
//  4. Middleware validates the token and puts the claims in the request context
//
// WHY JWT?
// The token is stateless — everything the server needs (user ID, username,
// expiry) travels inside the signed token, so validating a request costs no
// database lookup. The HMAC signature ensures nobody can alter the payload
// without the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer pins tokens to this application — a token minted by some other
// service that happens to share the secret is still rejected.
const issuer = "linklair"

// Claims is the signed payload identifying a caller.
//
// UserID rides in the registered "sub" claim; Username is a private claim.
// Expiry is absolute — it is fixed at issuance and does not move with any
// later account change.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the subject the token was issued for.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenService signs and verifies JWTs with a single shared HMAC secret.
//
// The secret is injected at construction — the service never reads ambient
// process state, so tests can run it with fixture secrets. In production it
// comes from required configuration and the process refuses to start without
// it.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production; anything under 16 is rejected outright.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates and signs a token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, one key signs and
// verifies. Expiry is now + the configured TTL (24h by default).
func (s *TokenService) Issue(userID, username string) (string, error) {
	now := time.Now()

	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// issueWithExpiry mints a token with an explicit expiry. Unexported helper
// used by the tests in this package to build already-expired tokens.
func (s *TokenService) issueWithExpiry(userID, username string, expiresAt time.Time) (string, error) {
	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token string, returning its claims.
//
// Checks performed: signature, expiry (exp must be in the future), issuer,
// and the signing algorithm pinned to HS256 — without the pin an attacker
// could attempt an algorithm-confusion attack.
//
// DELIBERATELY ONE ERROR:
// Bad signature, malformed structure, and expired claims are all collapsed
// into the same failure. Distinguishing them would hand an attacker an
// oracle for "almost valid" tokens; the caller only needs to know the
// request is unauthorized.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}

	return c, nil
}
