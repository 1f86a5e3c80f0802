// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/numtheory"
)

// Hill encrypts blocks of n letters as vectors multiplied by an n x n key
// matrix over Z26. The key is valid only when its determinant is coprime to
// 26, which guarantees an exact modular inverse for decryption.
type Hill struct {
	key     [][]int
	inverse [][]int
	n       int
	alpha   alphabet.Alphabet
}

// NewHill validates the key matrix and precomputes its modular inverse.
func NewHill(key [][]int) (*Hill, error) {
	n := len(key)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty key matrix", ErrInvalidKey)
	}
	a := alphabet.Standard()
	m := a.Len()
	normalized := make([][]int, n)
	for i, row := range key {
		if len(row) != n {
			return nil, fmt.Errorf("%w: key matrix must be square, row %d has %d entries", ErrInvalidKey, i, len(row))
		}
		normalized[i] = make([]int, n)
		for j, v := range row {
			normalized[i][j] = ((v % m) + m) % m
		}
	}
	det := determinantMod(normalized, m)
	detInv, err := numtheory.ModInverse(det, m)
	if err != nil {
		return nil, fmt.Errorf("%w: determinant %d is not invertible mod %d", ErrInvalidKey, det, m)
	}
	inverse := adjugateMod(normalized, m)
	for i := range inverse {
		for j := range inverse[i] {
			inverse[i][j] = inverse[i][j] * detInv % m
		}
	}
	return &Hill{key: normalized, inverse: inverse, n: n, alpha: a}, nil
}

// NewHillFromKeyword builds an n x n key from the first n*n letters of a
// keyword, row-major, mirroring the pencil-and-paper convention.
func NewHillFromKeyword(keyword string, n int) (*Hill, error) {
	a := alphabet.Standard()
	letters := alphabet.Normalize(keyword, a)
	if len(letters) < n*n {
		return nil, fmt.Errorf("%w: keyword needs %d letters for a %dx%d key, have %d",
			ErrInvalidKey, n*n, n, n, len(letters))
	}
	key := make([][]int, n)
	for i := 0; i < n; i++ {
		key[i] = make([]int, n)
		for j := 0; j < n; j++ {
			idx, _ := a.Index(rune(letters[i*n+j]))
			key[i][j] = idx
		}
	}
	return NewHill(key)
}

// Name implements Named.
func (c *Hill) Name() string { return "hill" }

// BlockSize returns the key matrix dimension.
func (c *Hill) BlockSize() int { return c.n }

// Key returns a copy of the key matrix.
func (c *Hill) Key() [][]int {
	out := make([][]int, c.n)
	for i := range c.key {
		out[i] = append([]int(nil), c.key[i]...)
	}
	return out
}

func (c *Hill) apply(matrix [][]int, text string) (string, error) {
	letters := alphabet.Normalize(text, c.alpha)
	if letters == "" {
		return "", ErrEmptyText
	}
	runes := []rune(letters)
	for len(runes)%c.n != 0 {
		runes = append(runes, 'X')
	}
	m := c.alpha.Len()
	var b strings.Builder
	b.Grow(len(runes))
	vec := make([]int, c.n)
	for off := 0; off < len(runes); off += c.n {
		for i := 0; i < c.n; i++ {
			vec[i], _ = c.alpha.Index(runes[off+i])
		}
		for i := 0; i < c.n; i++ {
			sum := 0
			for j := 0; j < c.n; j++ {
				sum += matrix[i][j] * vec[j]
			}
			b.WriteRune(c.alpha.Rune(sum % m))
		}
	}
	return b.String(), nil
}

// Encrypt multiplies each letter block by the key matrix. Input is normalized
// to letters and padded with X to a whole number of blocks.
func (c *Hill) Encrypt(plaintext string) (string, error) {
	return c.apply(c.key, plaintext)
}

// Decrypt multiplies each block by the inverse key matrix.
func (c *Hill) Decrypt(ciphertext string) (string, error) {
	return c.apply(c.inverse, ciphertext)
}

// determinantMod computes det(m) mod mod by cofactor expansion. Key matrices
// are small (2x2 or 3x3 in practice), so the factorial cost is irrelevant.
func determinantMod(m [][]int, mod int) int {
	n := len(m)
	if n == 1 {
		return ((m[0][0] % mod) + mod) % mod
	}
	det := 0
	sign := 1
	for j := 0; j < n; j++ {
		det += sign * m[0][j] * determinantMod(minorMatrix(m, 0, j), mod)
		det %= mod
		sign = -sign
	}
	return ((det % mod) + mod) % mod
}

// adjugateMod returns the transpose of the cofactor matrix mod mod.
func adjugateMod(m [][]int, mod int) [][]int {
	n := len(m)
	adj := make([][]int, n)
	for i := range adj {
		adj[i] = make([]int, n)
	}
	if n == 1 {
		adj[0][0] = 1
		return adj
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cofactor := determinantMod(minorMatrix(m, i, j), mod)
			if (i+j)%2 == 1 {
				cofactor = mod - cofactor
			}
			adj[j][i] = cofactor % mod
		}
	}
	return adj
}

func minorMatrix(m [][]int, row, col int) [][]int {
	n := len(m)
	minor := make([][]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i == row {
			continue
		}
		r := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j == col {
				continue
			}
			r = append(r, m[i][j])
		}
		minor = append(minor, r)
	}
	return minor
}
