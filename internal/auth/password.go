// Package auth — password hashing utilities.
//
// WHY ARGON2ID?
// argon2id is a memory-hard password hashing function: cracking it needs not
// just CPU time but a large amount of RAM per guess, which is exactly what
// GPUs and ASICs are bad at providing. It won the Password Hashing
// Competition and is the current OWASP first choice for new applications.
//
// The output is a self-describing PHC string:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<base64 salt>$<base64 key>
//
// Everything needed to verify a password later — algorithm, version, memory
// cost, iterations, parallelism, and the random salt — is embedded in the
// digest itself, so the parameters can be raised in the future without
// breaking existing rows.
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256).
// A deliberate cost of hundreds of milliseconds is negligible for one login
// and brutal for an attacker making billions of guesses.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidDigest is returned by Verify when the stored digest cannot be
// parsed. This is NOT a wrong-password result — a digest we wrote ourselves
// should always parse, so a failure here means corrupted storage and callers
// must surface it as an internal error, not a 401.
var ErrInvalidDigest = errors.New("auth: invalid password digest")

// Params are the argon2id cost parameters encoded into every digest.
//
// The defaults match the argon2 reference recommendation for interactive
// logins: 19 MiB of memory, 2 passes, 1 lane. Tune Memory/Time so a hash
// takes roughly 100-300ms on production hardware.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32 // passes over memory
	Parallelism uint8  // lanes
	SaltLength  uint32 // bytes of random salt
	KeyLength   uint32 // bytes of derived key
}

// DefaultParams returns the production cost parameters.
func DefaultParams() Params {
	return Params{
		Memory:      19 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordService hashes and verifies passwords.
//
// Hashing is intentionally CPU- and memory-expensive, so the service runs
// every derivation through a bounded worker pool (a semaphore channel sized
// `workers`). Request goroutines queue for a slot instead of all burning CPU
// at once — a burst of logins degrades into a short queue rather than
// starving every other request in the process.
//
// It's a struct (not free functions) so the cost parameters can be injected:
// tests use much cheaper parameters to avoid paying ~200ms per hash.
type PasswordService struct {
	params Params
	sem    chan struct{}
}

// NewPasswordService creates a PasswordService with the given parameters and
// worker bound. workers must be at least 1.
func NewPasswordService(params Params, workers int) *PasswordService {
	if workers < 1 {
		workers = 1
	}
	return &PasswordService{
		params: params,
		sem:    make(chan struct{}, workers),
	}
}

// Hash derives a digest for the given plaintext with a fresh random salt.
//
// The call blocks until a pool slot is free or ctx is canceled. An abandoned
// request therefore never leaks a running derivation slot: either we return
// ctx.Err() before starting, or the derivation runs to completion and the
// slot is released.
func (p *PasswordService) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := p.acquire(ctx); err != nil {
		return "", err
	}
	defer p.release()

	salt := make([]byte, p.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt,
		p.params.Time, p.params.Memory, p.params.Parallelism, p.params.KeyLength)

	return encodeDigest(p.params, salt, key), nil
}

// Verify reports whether plaintext matches the stored digest.
//
// Returns (false, nil) for a well-formed digest that simply doesn't match —
// a wrong password is an expected outcome, not an error. Returns
// ErrInvalidDigest if the digest cannot be decoded.
//
// Verification recomputes the full derivation with the parameters embedded
// in the digest, so it is exactly as expensive as Hash and goes through the
// same worker pool. The final comparison is constant-time.
func (p *PasswordService) Verify(ctx context.Context, digest, plaintext string) (bool, error) {
	params, salt, key, err := decodeDigest(digest)
	if err != nil {
		return false, err
	}

	if err := p.acquire(ctx); err != nil {
		return false, err
	}
	defer p.release()

	computed := argon2.IDKey([]byte(plaintext), salt,
		params.Time, params.Memory, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// acquire takes a worker slot, or fails if the context is canceled first.
func (p *PasswordService) acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PasswordService) release() {
	<-p.sem
}

// encodeDigest renders the standard PHC representation of an argon2id hash.
func encodeDigest(params Params, salt, key []byte) string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Time, params.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key))
}

// decodeDigest parses a PHC argon2id string back into its components.
// Any structural problem maps to ErrInvalidDigest; the underlying cause is
// wrapped for server-side logs.
func decodeDigest(digest string) (Params, []byte, []byte, error) {
	var params Params

	// Expected: "" / "argon2id" / "v=19" / "m=...,t=...,p=..." / salt / key
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return params, nil, nil, ErrInvalidDigest
	}
	if parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidDigest, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidDigest, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Time, &params.Parallelism); err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, nil
}
