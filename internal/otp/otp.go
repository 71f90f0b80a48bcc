// Package otp issues and checks the numeric handoff codes.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
)

// DefaultLength is the code length used when none is configured.
const DefaultLength = 6

// Generator draws codes uniformly from [0, 10^length).
type Generator struct {
	length int
	max    *big.Int
	reader io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator(length int) *Generator {
	return newGenerator(length, rand.Reader)
}

func newGenerator(length int, r io.Reader) *Generator {
	if length <= 0 || length > 18 {
		length = DefaultLength
	}
	return &Generator{
		length: length,
		max:    new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil),
		reader: r,
	}
}

// Length returns the number of digits per code.
func (g *Generator) Length() int { return g.length }

// Generate returns a zero-padded code of exactly Length digits.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.reader, g.max)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return fmt.Sprintf("%0*d", g.length, n.Int64()), nil
}

// Verify compares the full supplied code against stored in constant time.
// An empty stored code never verifies.
func Verify(supplied, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) == 1
}
