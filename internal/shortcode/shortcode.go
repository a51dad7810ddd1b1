// Package shortcode generates the random codes that identify short URLs.
//
// Codes are drawn from a mixed-case alphanumeric alphabet with
// crypto/rand, so they are unguessable and the code space (62^8 for the
// default length) dwarfs any realistic table size. Collisions are
// therefore astronomically unlikely — but not impossible, which is why the
// URL repository still retries allocation against the UNIQUE index rather
// than trusting a single draw.
package shortcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// ErrCodeSpaceExhausted is returned when repeated draws keep colliding with
// existing codes. With a sane length this only happens when the alphabet or
// length has been misconfigured so small that the table fills the space.
var ErrCodeSpaceExhausted = errors.New("shortcode: code space exhausted")

// Alphabet is the default code alphabet: letters (both cases) + digits.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength matches the authoritative route variant (8 characters).
const DefaultLength = 8

// codePattern accepts the characters a code may contain when arriving from
// the outside world, up to 20 chars. Deliberately wider than Alphabet
// ('_' and '-') so codes minted by earlier deployments keep resolving.
var codePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,20}$`)

// ValidCode reports whether s is acceptable as a short code for lookup
// purposes. Used by the redirect handler to 404 garbage paths before
// touching the database.
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// Generator produces random short codes of a fixed length.
type Generator struct {
	alphabet string
	length   int
}

// New creates a Generator with the default alphabet. Non-positive lengths
// fall back to DefaultLength.
func New(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{alphabet: Alphabet, length: length}
}

// NewWithAlphabet creates a Generator over a custom alphabet.
// Used by tests to shrink the code space and force collisions.
func NewWithAlphabet(alphabet string, length int) *Generator {
	if alphabet == "" {
		alphabet = Alphabet
	}
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{alphabet: alphabet, length: length}
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}

// Code draws one random code.
//
// crypto/rand (not math/rand) — short codes are public identifiers and a
// predictable sequence would let anyone enumerate other people's URLs.
// rand.Int performs rejection sampling internally, so every alphabet
// character is equally likely (no modulo bias).
func (g *Generator) Code() (string, error) {
	max := big.NewInt(int64(len(g.alphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("shortcode: reading random source: %w", err)
		}
		buf[i] = g.alphabet[n.Int64()]
	}
	return string(buf), nil
}
