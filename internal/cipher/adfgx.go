// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// adfgxCoords are the row/column labels of the 5x5 square, chosen in 1918 for
// their distinct Morse patterns.
var adfgxCoords = []rune{'A', 'D', 'F', 'G', 'X'}

// ADFGX combines a keyed 5x5 Polybius square (fractionation into the letters
// A, D, F, G, X) with a keyword columnar transposition.
type ADFGX struct {
	square    *Playfair // reuse the keyed 5x5 square construction
	position  map[rune]int
	letterAt  [25]rune
	transpose *Columnar
}

// NewADFGX builds the square from squareKeyword and the transposition stage
// from transposeKeyword.
func NewADFGX(squareKeyword, transposeKeyword string) (*ADFGX, error) {
	sq, err := NewPlayfair(squareKeyword)
	if err != nil {
		return nil, fmt.Errorf("square keyword: %w", err)
	}
	tr, err := NewColumnarKeyword(transposeKeyword)
	if err != nil {
		return nil, fmt.Errorf("transposition keyword: %w", err)
	}
	c := &ADFGX{square: sq, position: make(map[rune]int, 25), transpose: tr}
	for i, r := range sq.square {
		c.position[r] = i
		c.letterAt[i] = r
	}
	return c, nil
}

// Name implements Named.
func (c *ADFGX) Name() string { return "adfgx" }

// Encrypt fractionates each letter into its ADFGX row/column pair, then
// transposes the pair stream.
func (c *ADFGX) Encrypt(plaintext string) (string, error) {
	base, _ := alphabet.New(playfairAlphabet)
	letters := alphabet.Normalize(strings.ReplaceAll(strings.ToUpper(plaintext), "J", "I"), base)
	if letters == "" {
		return "", ErrEmptyText
	}
	var fractionated strings.Builder
	fractionated.Grow(len(letters) * 2)
	for _, r := range letters {
		pos := c.position[r]
		fractionated.WriteRune(adfgxCoords[pos/5])
		fractionated.WriteRune(adfgxCoords[pos%5])
	}
	return c.transpose.Encrypt(fractionated.String())
}

// Decrypt undoes the transposition and reassembles letters from coordinate
// pairs.
func (c *ADFGX) Decrypt(ciphertext string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case 'A', 'D', 'F', 'G', 'X', 'a', 'd', 'f', 'g', 'x':
			return r
		}
		return -1
	}, strings.ToUpper(ciphertext))
	if cleaned == "" {
		return "", ErrEmptyText
	}
	if len(cleaned)%2 != 0 {
		return "", fmt.Errorf("cipher: adfgx ciphertext must have an even number of symbols, got %d", len(cleaned))
	}
	fractionated, err := c.transpose.Decrypt(cleaned)
	if err != nil {
		return "", err
	}
	coordIndex := func(r rune) (int, error) {
		for i, c := range adfgxCoords {
			if c == r {
				return i, nil
			}
		}
		return 0, fmt.Errorf("cipher: invalid adfgx symbol %q", r)
	}
	runes := []rune(fractionated)
	var b strings.Builder
	b.Grow(len(runes) / 2)
	for i := 0; i < len(runes); i += 2 {
		row, err := coordIndex(runes[i])
		if err != nil {
			return "", err
		}
		col, err := coordIndex(runes[i+1])
		if err != nil {
			return "", err
		}
		b.WriteRune(c.letterAt[row*5+col])
	}
	return b.String(), nil
}
