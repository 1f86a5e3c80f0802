// SPDX-License-Identifier: MIT

package cipher

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// OneTimePad is a Vigenère with a non-repeating key: each message letter is
// shifted by one key letter, and the key must cover the whole message.
type OneTimePad struct {
	key   string
	alpha alphabet.Alphabet
}

// NewOneTimePad returns a pad using the given key letters.
func NewOneTimePad(key string) (*OneTimePad, error) {
	a := alphabet.Standard()
	key = strings.ToUpper(key)
	if key == "" {
		return nil, fmt.Errorf("%w: pad must be non-empty", ErrInvalidKey)
	}
	for _, r := range key {
		if !a.Contains(r) {
			return nil, fmt.Errorf("%w: pad letter %q not in alphabet", ErrInvalidKey, r)
		}
	}
	return &OneTimePad{key: key, alpha: a}, nil
}

// GeneratePad draws n uniformly random key letters from crypto/rand.
func GeneratePad(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("%w: pad length %d", ErrInvalidKey, n)
	}
	a := alphabet.Standard()
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(a.Len())))
		if err != nil {
			return "", fmt.Errorf("cipher: draw pad letter: %w", err)
		}
		b.WriteRune(a.Rune(int(j.Int64())))
	}
	return b.String(), nil
}

// Name implements Named.
func (c *OneTimePad) Name() string { return "otp" }

// Key returns the pad.
func (c *OneTimePad) Key() string { return c.key }

func (c *OneTimePad) crypt(text string, decrypt bool) (string, error) {
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
		if pos >= len(c.key) {
			return "", fmt.Errorf("%w: message needs %d or more letters of pad, have %d",
				ErrKeyTooShort, pos+1, len(c.key))
		}
		shift, _ := c.alpha.Index(rune(c.key[pos]))
		if decrypt {
			shift = -shift
		}
		b.WriteRune(c.alpha.Rune(idx + shift))
		pos++
	}
	return b.String(), nil
}

// Encrypt shifts each letter by the next pad letter.
func (c *OneTimePad) Encrypt(plaintext string) (string, error) {
	return c.crypt(plaintext, false)
}

// Decrypt reverses the pad shifts.
func (c *OneTimePad) Decrypt(ciphertext string) (string, error) {
	return c.crypt(ciphertext, true)
}
