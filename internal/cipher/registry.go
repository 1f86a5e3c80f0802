// SPDX-License-Identifier: MIT

package cipher

import (
	"fmt"
)

// Spec is the wire-level description of a cipher and its key, as accepted by
// the API and the CLI. Exactly the fields relevant to Name are read.
type Spec struct {
	Name string `json:"name" yaml:"name"`

	// Caesar / KeyedCaesar
	Shift int `json:"shift,omitempty" yaml:"shift,omitempty"`

	// Affine
	Factor int `json:"factor,omitempty" yaml:"factor,omitempty"`
	Addend int `json:"addend,omitempty" yaml:"addend,omitempty"`

	// Keyword-style keys: substitution permutation, Vigenère keyword,
	// one-time pad, Playfair/ADFGX square keyword, columnar keyword.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// Second keyword: double columnar second stage, ADFGX transposition.
	SecondKey string `json:"second_key,omitempty" yaml:"second_key,omitempty"`

	// Columnar numeric key (overrides Key when set)
	Columns []int `json:"columns,omitempty" yaml:"columns,omitempty"`

	// Hill key matrix, or keyword plus block size
	Matrix    [][]int `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	BlockSize int     `json:"block_size,omitempty" yaml:"block_size,omitempty"`

	// RailFence
	Rails int `json:"rails,omitempty" yaml:"rails,omitempty"`
}

// Names lists the cipher identifiers New accepts.
func Names() []string {
	return []string{
		"caesar", "keyed-caesar", "affine", "atbash", "substitution",
		"vigenere", "otp", "playfair", "hill", "railfence", "columnar",
		"double-columnar", "adfgx",
	}
}

// New constructs the cipher described by spec.
func New(spec Spec) (Cipher, error) {
	switch spec.Name {
	case "caesar":
		shift := spec.Shift
		if shift == 0 {
			shift = DefaultCaesarShift
		}
		return NewCaesar(shift), nil
	case "keyed-caesar":
		return NewKeyedCaesar(spec.Key, spec.Shift)
	case "affine":
		factor, addend := spec.Factor, spec.Addend
		if factor == 0 && addend == 0 {
			factor, addend = 1, DefaultCaesarShift
		}
		return NewAffine(factor, addend)
	case "atbash":
		return NewAtbash(), nil
	case "substitution":
		if spec.Key == "" {
			return NewRandomSubstitution()
		}
		return NewSubstitution(spec.Key)
	case "vigenere":
		return NewVigenere(spec.Key)
	case "otp":
		return NewOneTimePad(spec.Key)
	case "playfair":
		return NewPlayfair(spec.Key)
	case "hill":
		if len(spec.Matrix) > 0 {
			return NewHill(spec.Matrix)
		}
		n := spec.BlockSize
		if n == 0 {
			n = 2
		}
		return NewHillFromKeyword(spec.Key, n)
	case "railfence":
		rails := spec.Rails
		if rails == 0 {
			rails = 3
		}
		return NewRailFence(rails)
	case "columnar":
		if len(spec.Columns) > 0 {
			return NewColumnar(spec.Columns)
		}
		return NewColumnarKeyword(spec.Key)
	case "double-columnar":
		return NewDoubleColumnar(spec.Key, spec.SecondKey)
	case "adfgx":
		return NewADFGX(spec.Key, spec.SecondKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, spec.Name)
	}
}
