// SPDX-License-Identifier: MIT

// Package cipher implements classical (historical, non-secure) ciphers.
//
// Substitution-family ciphers preserve characters outside the alphabet and
// emit uppercase letters. Transposition and digraph ciphers (Playfair, Hill,
// ADFGX) operate on the normalized letters-only form of their input.
package cipher

import (
	"errors"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// Cipher encrypts and decrypts messages. Implementations validate their key
// at construction time, so Encrypt/Decrypt only fail on bad input text.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Named is implemented by ciphers that report their canonical name, used for
// registry lookups and API dispatch.
type Named interface {
	Name() string
}

var (
	// ErrEmptyText is returned when the input text is empty.
	ErrEmptyText = errors.New("cipher: text must be a non-empty string")

	// ErrInvalidKey is returned (wrapped) when a key fails validation.
	ErrInvalidKey = errors.New("cipher: invalid key")

	// ErrKeyTooShort is returned by the one-time pad when the key cannot
	// cover every letter of the message.
	ErrKeyTooShort = errors.New("cipher: key shorter than message")

	// ErrUnknownCipher is returned by New for an unrecognized cipher name.
	ErrUnknownCipher = errors.New("cipher: unknown cipher")
)

// substitute maps every alphabet letter of text through f (receiving the
// letter's index) and leaves other characters untouched. Output letters are
// uppercase.
func substitute(text string, a alphabet.Alphabet, f func(idx int) rune) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if idx, ok := a.Index(r); ok {
			b.WriteRune(f(idx))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
