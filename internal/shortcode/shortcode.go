// Package shortcode generates the compact codes that identify links.
//
// Codes come from nanoid: a cryptographically-strong random source over a
// URL-safe alphabet (A-Za-z0-9_-). At the default length of 8 the space is
// 64^8 ≈ 2.8e14 codes, so collisions are rare but NOT impossible — the
// birthday bound guarantees a non-zero probability. Generation is therefore
// never "generate once and trust": the caller inserts the code under a
// UNIQUE constraint and regenerates on a constraint violation (see
// service.LinkService.Shorten).
package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLength is the fixed code length used by the API.
const DefaultLength = 8

// Generator produces fixed-length short codes.
type Generator struct {
	length int
}

// NewGenerator creates a Generator. Lengths below 1 fall back to
// DefaultLength.
func NewGenerator(length int) *Generator {
	if length < 1 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate returns a fresh random code. It only errors when the system's
// entropy source fails.
func (g *Generator) Generate() (string, error) {
	code, err := gonanoid.New(g.length)
	if err != nil {
		return "", fmt.Errorf("shortcode: generating code: %w", err)
	}
	return code, nil
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}
