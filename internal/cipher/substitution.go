// SPDX-License-Identifier: MIT

package cipher

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// Substitution replaces each letter via an arbitrary permutation of the
// alphabet. Every monoalphabetic cipher in this package is a special case.
type Substitution struct {
	key     alphabet.Alphabet
	plain   alphabet.Alphabet
	inverse map[int]int // key position -> plain position
}

// NewSubstitution builds a substitution cipher from key, which must be a
// permutation of the standard alphabet.
func NewSubstitution(key string) (*Substitution, error) {
	plain := alphabet.Standard()
	keyed, err := alphabet.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if !keyed.IsPermutationOf(plain) {
		return nil, fmt.Errorf("%w: key must be a permutation of the alphabet", ErrInvalidKey)
	}
	inverse := make(map[int]int, plain.Len())
	for i := 0; i < plain.Len(); i++ {
		pos, _ := plain.Index(keyed.Rune(i))
		inverse[pos] = i
	}
	return &Substitution{key: keyed, plain: plain, inverse: inverse}, nil
}

// NewRandomSubstitution draws a uniformly random permutation key using
// crypto/rand (Fisher-Yates).
func NewRandomSubstitution() (*Substitution, error) {
	letters := []byte(alphabet.Latin)
	for i := len(letters) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("cipher: draw random key: %w", err)
		}
		letters[i], letters[j.Int64()] = letters[j.Int64()], letters[i]
	}
	return NewSubstitution(string(letters))
}

// Name implements Named.
func (c *Substitution) Name() string { return "substitution" }

// Key returns the permutation key as a 26-letter string.
func (c *Substitution) Key() string { return c.key.String() }

// Encrypt maps each plaintext letter to the key letter at the same position.
func (c *Substitution) Encrypt(plaintext string) (string, error) {
	return substitute(plaintext, c.plain, func(idx int) rune {
		return c.key.Rune(idx)
	})
}

// Decrypt maps each ciphertext letter back through the inverse permutation.
func (c *Substitution) Decrypt(ciphertext string) (string, error) {
	return substitute(ciphertext, c.plain, func(idx int) rune {
		return c.plain.Rune(c.inverse[idx])
	})
}
