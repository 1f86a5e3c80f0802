// SPDX-License-Identifier: MIT

package crack

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/analysis"
	"github.com/kryptoslab/kryptos/internal/cipher"
)

// affineFactors are the multipliers coprime with 26, the only valid affine
// slopes over the standard alphabet.
var affineFactors = []int{1, 3, 5, 7, 9, 11, 15, 17, 19, 21, 23, 25}

// Caesar tries all 26 shifts and ranks them by chi-squared fit to English.
// The reported Score is the negated chi-squared statistic.
func Caesar(ctx context.Context, ciphertext string) ([]Candidate, error) {
	if alphabet.Normalize(ciphertext, alphabet.Standard()) == "" {
		return nil, ErrTextTooShort
	}
	candidates := make([]Candidate, 0, 26)
	for shift := 0; shift < 26; shift++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plaintext, err := cipher.NewCaesar(shift).Decrypt(ciphertext)
		if err != nil {
			return nil, fmt.Errorf("crack: caesar shift %d: %w", shift, err)
		}
		candidates = append(candidates, Candidate{
			Cipher:    "caesar",
			Key:       strconv.Itoa(shift),
			Plaintext: plaintext,
			Score:     -analysis.ChiSquared(plaintext),
		})
	}
	sortByScore(candidates)
	return candidates, nil
}

// Affine tries all 312 valid (factor, addend) keys and ranks them by
// chi-squared fit to English. The reported Score is the negated chi-squared
// statistic.
func Affine(ctx context.Context, ciphertext string) ([]Candidate, error) {
	if alphabet.Normalize(ciphertext, alphabet.Standard()) == "" {
		return nil, ErrTextTooShort
	}
	candidates := make([]Candidate, 0, len(affineFactors)*26)
	for _, factor := range affineFactors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for addend := 0; addend < 26; addend++ {
			c, err := cipher.NewAffine(factor, addend)
			if err != nil {
				return nil, fmt.Errorf("crack: affine key (%d,%d): %w", factor, addend, err)
			}
			plaintext, err := c.Decrypt(ciphertext)
			if err != nil {
				return nil, fmt.Errorf("crack: affine key (%d,%d): %w", factor, addend, err)
			}
			candidates = append(candidates, Candidate{
				Cipher:    "affine",
				Key:       fmt.Sprintf("%d,%d", factor, addend),
				Plaintext: plaintext,
				Score:     -analysis.ChiSquared(plaintext),
			})
		}
	}
	sortByScore(candidates)
	return candidates, nil
}
