// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// DefaultCaesarShift is the classic shift attributed to Julius Caesar.
const DefaultCaesarShift = 3

// Caesar shifts each letter a fixed number of positions down the alphabet.
type Caesar struct {
	shift int
	alpha alphabet.Alphabet
}

// NewCaesar returns a Caesar cipher with the given shift. Any integer is
// accepted; the shift is reduced modulo the alphabet length.
func NewCaesar(shift int) *Caesar {
	a := alphabet.Standard()
	return &Caesar{shift: ((shift % a.Len()) + a.Len()) % a.Len(), alpha: a}
}

// Name implements Named.
func (c *Caesar) Name() string { return "caesar" }

// Shift returns the effective shift.
func (c *Caesar) Shift() int { return c.shift }

// Encrypt shifts every alphabet letter forward; other characters pass through.
func (c *Caesar) Encrypt(plaintext string) (string, error) {
	return substitute(plaintext, c.alpha, func(idx int) rune {
		return c.alpha.Rune(idx + c.shift)
	})
}

// Decrypt shifts every alphabet letter back.
func (c *Caesar) Decrypt(ciphertext string) (string, error) {
	return substitute(ciphertext, c.alpha, func(idx int) rune {
		return c.alpha.Rune(idx - c.shift)
	})
}

// KeyedCaesar is a Caesar cipher over a keyword-derived alphabet: the shift
// applies to positions in the keyed alphabet rather than A-Z.
type KeyedCaesar struct {
	keyword string
	shift   int
	alpha   alphabet.Alphabet
}

// NewKeyedCaesar derives the working alphabet from keyword and shifts within
// it. The keyword must be non-empty letters.
func NewKeyedCaesar(keyword string, shift int) (*KeyedCaesar, error) {
	a, err := alphabet.Keyed(keyword, alphabet.Standard())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &KeyedCaesar{
		keyword: keyword,
		shift:   ((shift % a.Len()) + a.Len()) % a.Len(),
		alpha:   a,
	}, nil
}

// Name implements Named.
func (c *KeyedCaesar) Name() string { return "keyed-caesar" }

// Keyword returns the keyword the alphabet was derived from.
func (c *KeyedCaesar) Keyword() string { return c.keyword }

// Encrypt shifts letters within the keyed alphabet.
func (c *KeyedCaesar) Encrypt(plaintext string) (string, error) {
	return substitute(plaintext, c.alpha, func(idx int) rune {
		return c.alpha.Rune(idx + c.shift)
	})
}

// Decrypt reverses the keyed shift.
func (c *KeyedCaesar) Decrypt(ciphertext string) (string, error) {
	return substitute(ciphertext, c.alpha, func(idx int) rune {
		return c.alpha.Rune(idx - c.shift)
	})
}
