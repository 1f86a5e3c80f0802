// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/numtheory"
)

// Affine maps each letter index x to (a*x + b) mod 26. It generalizes the
// Caesar cipher (a=1) and Atbash (a=b=25).
type Affine struct {
	factor  int
	addend  int
	inverse int // modular inverse of factor
	alpha   alphabet.Alphabet
}

// NewAffine returns an affine cipher with key (factor, addend). The factor
// must be coprime to the alphabet length or decryption is ambiguous.
func NewAffine(factor, addend int) (*Affine, error) {
	a := alphabet.Standard()
	n := a.Len()
	factor = ((factor % n) + n) % n
	addend = ((addend % n) + n) % n
	inv, err := numtheory.ModInverse(factor, n)
	if err != nil {
		return nil, fmt.Errorf("%w: factor %d is not coprime to %d", ErrInvalidKey, factor, n)
	}
	return &Affine{factor: factor, addend: addend, inverse: inv, alpha: a}, nil
}

// Name implements Named.
func (c *Affine) Name() string { return "affine" }

// Key returns the (factor, addend) pair.
func (c *Affine) Key() (factor, addend int) { return c.factor, c.addend }

// Encrypt applies x -> a*x + b to each letter index.
func (c *Affine) Encrypt(plaintext string) (string, error) {
	return substitute(plaintext, c.alpha, func(idx int) rune {
		return c.alpha.Rune(idx*c.factor + c.addend)
	})
}

// Decrypt applies the inverse map x -> a^-1 * (x - b).
func (c *Affine) Decrypt(ciphertext string) (string, error) {
	return substitute(ciphertext, c.alpha, func(idx int) rune {
		return c.alpha.Rune((idx - c.addend) * c.inverse)
	})
}

// NewAtbash returns the Atbash cipher, the affine special case a=b=25 that is
// its own inverse.
func NewAtbash() *Atbash {
	inner, _ := NewAffine(25, 25)
	return &Atbash{inner}
}

// Atbash mirrors the alphabet: A<->Z, B<->Y, and so on.
type Atbash struct {
	*Affine
}

// Name implements Named.
func (c *Atbash) Name() string { return "atbash" }
