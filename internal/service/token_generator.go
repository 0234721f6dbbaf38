package service

import (
	"fmt"
	"math/rand/v2"
)

const (
	tokenMin = 100
	tokenMax = 999
)

// TokenGenerator issues the short display tokens handed to patients at
// registration, e.g. "A417". Tokens are not guaranteed to be unique.
type TokenGenerator struct {
	prefix string
	intN   func(n int) int
}

func NewTokenGenerator(prefix string) *TokenGenerator {
	return &TokenGenerator{
		prefix: prefix,
		intN:   rand.IntN,
	}
}

// NewTokenGeneratorWithSource makes the random source deterministic for tests.
func NewTokenGeneratorWithSource(prefix string, src rand.Source) *TokenGenerator {
	r := rand.New(src)
	return &TokenGenerator{
		prefix: prefix,
		intN:   r.IntN,
	}
}

// Generate returns prefix followed by a number in [100, 999].
func (g *TokenGenerator) Generate() string {
	return fmt.Sprintf("%s%d", g.prefix, tokenMin+g.intN(tokenMax-tokenMin+1))
}
