// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// playfairAlphabet is the 25-letter alphabet of the 5x5 square; J folds to I.
const playfairAlphabet = "ABCDEFGHIKLMNOPQRSTUVWXYZ"

// Playfair encrypts digraphs on a 5x5 keyed square. J is merged into I,
// double letters are split with X, and an odd-length message is padded with X.
type Playfair struct {
	keyword string
	square  [25]rune
	row     map[rune]int
	col     map[rune]int
}

// NewPlayfair builds the 5x5 square from keyword.
func NewPlayfair(keyword string) (*Playfair, error) {
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword must be non-empty", ErrInvalidKey)
	}
	base, _ := alphabet.New(playfairAlphabet)
	folded := strings.ReplaceAll(strings.ToUpper(keyword), "J", "I")
	keyed, err := alphabet.Keyed(folded, base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	p := &Playfair{
		keyword: keyword,
		row:     make(map[rune]int, 25),
		col:     make(map[rune]int, 25),
	}
	for i := 0; i < 25; i++ {
		r := keyed.Rune(i)
		p.square[i] = r
		p.row[r] = i / 5
		p.col[r] = i % 5
	}
	return p, nil
}

// Name implements Named.
func (c *Playfair) Name() string { return "playfair" }

// Keyword returns the keyword the square was built from.
func (c *Playfair) Keyword() string { return c.keyword }

// prepare folds text to the 25-letter alphabet and splits it into digraphs,
// inserting X between doubled letters and padding the tail.
func (c *Playfair) prepare(text string) ([][2]rune, error) {
	base, _ := alphabet.New(playfairAlphabet)
	letters := alphabet.Normalize(strings.ReplaceAll(strings.ToUpper(text), "J", "I"), base)
	if letters == "" {
		return nil, ErrEmptyText
	}
	var pairs [][2]rune
	runes := []rune(letters)
	for i := 0; i < len(runes); {
		a := runes[i]
		var b rune
		switch {
		case i+1 >= len(runes):
			b = 'X'
			i++
		case runes[i+1] == a:
			b = 'X'
			i++
		default:
			b = runes[i+1]
			i += 2
		}
		if a == 'X' && b == 'X' {
			// XX cannot be split with the padding letter itself; use Q.
			b = 'Q'
		}
		pairs = append(pairs, [2]rune{a, b})
	}
	return pairs, nil
}

func (c *Playfair) at(row, col int) rune {
	return c.square[((row%5)+5)%5*5+((col%5)+5)%5]
}

func (c *Playfair) cryptPair(a, b rune, dir int) (rune, rune) {
	ar, ac := c.row[a], c.col[a]
	br, bc := c.row[b], c.col[b]
	switch {
	case ar == br: // same row: slide horizontally
		return c.at(ar, ac+dir), c.at(br, bc+dir)
	case ac == bc: // same column: slide vertically
		return c.at(ar+dir, ac), c.at(br+dir, bc)
	default: // rectangle: swap columns
		return c.at(ar, bc), c.at(br, ac)
	}
}

// Encrypt encrypts the digraphs of plaintext. Output is letters only.
func (c *Playfair) Encrypt(plaintext string) (string, error) {
	pairs, err := c.prepare(plaintext)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(pairs) * 2)
	for _, p := range pairs {
		x, y := c.cryptPair(p[0], p[1], 1)
		b.WriteRune(x)
		b.WriteRune(y)
	}
	return b.String(), nil
}

// Decrypt reverses the digraph substitution. Padding letters inserted during
// encryption remain in the output.
func (c *Playfair) Decrypt(ciphertext string) (string, error) {
	base, _ := alphabet.New(playfairAlphabet)
	letters := alphabet.Normalize(strings.ReplaceAll(strings.ToUpper(ciphertext), "J", "I"), base)
	if letters == "" {
		return "", ErrEmptyText
	}
	runes := []rune(letters)
	if len(runes)%2 != 0 {
		return "", fmt.Errorf("cipher: playfair ciphertext must have even length, got %d letters", len(runes))
	}
	var b strings.Builder
	b.Grow(len(runes))
	for i := 0; i < len(runes); i += 2 {
		x, y := c.cryptPair(runes[i], runes[i+1], -1)
		b.WriteRune(x)
		b.WriteRune(y)
	}
	return b.String(), nil
}
