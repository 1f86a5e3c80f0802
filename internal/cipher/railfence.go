// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"
	"strings"
)

// RailFence writes the message in a zigzag across a number of rails and reads
// it off row by row. The key is the rail count.
type RailFence struct {
	rails int
}

// NewRailFence returns a rail fence cipher with the given rail count (>= 2).
func NewRailFence(rails int) (*RailFence, error) {
	if rails < 2 {
		return nil, fmt.Errorf("%w: rail count must be at least 2, got %d", ErrInvalidKey, rails)
	}
	return &RailFence{rails: rails}, nil
}

// Name implements Named.
func (c *RailFence) Name() string { return "railfence" }

// Rails returns the rail count.
func (c *RailFence) Rails() int { return c.rails }

// railPattern returns the rail index visited at each position of a message of
// length n.
func (c *RailFence) railPattern(n int) []int {
	pattern := make([]int, n)
	row, dir := 0, 1
	for i := 0; i < n; i++ {
		pattern[i] = row
		if row == 0 {
			dir = 1
		} else if row == c.rails-1 {
			dir = -1
		}
		row += dir
	}
	return pattern
}

// Encrypt writes the zigzag and concatenates the rails. All characters
// participate in the transposition.
func (c *RailFence) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyText
	}
	runes := []rune(plaintext)
	rows := make([][]rune, c.rails)
	for i, rail := range c.railPattern(len(runes)) {
		rows[rail] = append(rows[rail], runes[i])
	}
	var b strings.Builder
	b.Grow(len(runes))
	for _, row := range rows {
		b.WriteString(string(row))
	}
	return b.String(), nil
}

// Decrypt rebuilds the zigzag: the pattern tells how many characters each
// rail holds, so the ciphertext can be cut into rails and replayed.
func (c *RailFence) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", ErrEmptyText
	}
	runes := []rune(ciphertext)
	pattern := c.railPattern(len(runes))

	counts := make([]int, c.rails)
	for _, rail := range pattern {
		counts[rail]++
	}
	rows := make([][]rune, c.rails)
	off := 0
	for r := 0; r < c.rails; r++ {
		rows[r] = runes[off : off+counts[r]]
		off += counts[r]
	}

	var b strings.Builder
	b.Grow(len(runes))
	cursor := make([]int, c.rails)
	for _, rail := range pattern {
		b.WriteRune(rows[rail][cursor[rail]])
		cursor[rail]++
	}
	return b.String(), nil
}

// compile-time interface checks for the transposition family
var (
	_ Cipher = (*RailFence)(nil)
	_ Cipher = (*Columnar)(nil)
	_ Cipher = (*DoubleColumnar)(nil)
	_ Cipher = (*ADFGX)(nil)
	_ Cipher = (*Playfair)(nil)
	_ Cipher = (*Hill)(nil)
	_ Cipher = (*Caesar)(nil)
	_ Cipher = (*KeyedCaesar)(nil)
	_ Cipher = (*Affine)(nil)
	_ Cipher = (*Atbash)(nil)
	_ Cipher = (*Substitution)(nil)
	_ Cipher = (*Vigenere)(nil)
	_ Cipher = (*OneTimePad)(nil)
)
