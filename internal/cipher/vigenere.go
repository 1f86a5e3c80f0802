// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// Vigenere applies a repeating keyword of Caesar shifts. The key position
// advances only on alphabet letters, so punctuation does not desynchronize
// encryption and decryption.
type Vigenere struct {
	key   string
	alpha alphabet.Alphabet
}

// NewVigenere returns a Vigenère cipher for the given keyword, which must be
// one or more letters.
func NewVigenere(key string) (*Vigenere, error) {
	a := alphabet.Standard()
	key = strings.ToUpper(key)
	if key == "" {
		return nil, fmt.Errorf("%w: keyword must be non-empty", ErrInvalidKey)
	}
	for _, r := range key {
		if !a.Contains(r) {
			return nil, fmt.Errorf("%w: keyword letter %q not in alphabet", ErrInvalidKey, r)
		}
	}
	return &Vigenere{key: key, alpha: a}, nil
}

// Name implements Named.
func (c *Vigenere) Name() string { return "vigenere" }

// Key returns the keyword.
func (c *Vigenere) Key() string { return c.key }

func (c *Vigenere) crypt(text string, decrypt bool) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, r := range text {
		idx, ok := c.alpha.Index(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		shift, _ := c.alpha.Index(rune(c.key[pos%len(c.key)]))
		if decrypt {
			shift = -shift
		}
		b.WriteRune(c.alpha.Rune(idx + shift))
		pos++
	}
	return b.String(), nil
}

// Encrypt shifts each letter by the next keyword letter.
func (c *Vigenere) Encrypt(plaintext string) (string, error) {
	return c.crypt(plaintext, false)
}

// Decrypt reverses the keyword shifts.
func (c *Vigenere) Decrypt(ciphertext string) (string, error) {
	return c.crypt(ciphertext, true)
}
