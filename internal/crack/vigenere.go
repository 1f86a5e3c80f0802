// SPDX-License-Identifier: MIT

package crack

import (
	"context"
	"fmt"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/analysis"
	"github.com/kryptoslab/kryptos/internal/cipher"
	"github.com/kryptoslab/kryptos/internal/ngram"
)

// DefaultMaxKeyLength bounds the Vigenère key-length search when the caller
// does not say otherwise.
const DefaultMaxKeyLength = 16

// keyLengthTrials is how many ranked key lengths are worth a full key
// recovery attempt.
const keyLengthTrials = 5

// Vigenere estimates likely key lengths from periodic IC, corroborated by
// Kasiski examination, recovers each trial key column by column via
// chi-squared, and ranks the resulting decryptions by quadgram score.
func Vigenere(ctx context.Context, ciphertext string, maxKeyLength int) ([]Candidate, error) {
	if maxKeyLength < 1 {
		maxKeyLength = DefaultMaxKeyLength
	}
	letters := alphabet.Normalize(ciphertext, alphabet.Standard())
	if len(letters) < 2 {
		return nil, ErrTextTooShort
	}

	lengths := trialKeyLengths(letters, maxKeyLength)
	model := ngram.Quadgrams()
	candidates := make([]Candidate, 0, len(lengths))
	for _, length := range lengths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := recoverVigenereKey(letters, length)
		c, err := cipher.NewVigenere(key)
		if err != nil {
			return nil, fmt.Errorf("crack: vigenere key %q: %w", key, err)
		}
		plaintext, err := c.Decrypt(ciphertext)
		if err != nil {
			return nil, fmt.Errorf("crack: vigenere key %q: %w", key, err)
		}
		candidates = append(candidates, Candidate{
			Cipher:    "vigenere",
			Key:       key,
			Plaintext: plaintext,
			Score:     model.Score(plaintext),
		})
	}
	sortByScore(candidates)
	return candidates, nil
}

// trialKeyLengths merges the periodic-IC ranking with the strongest Kasiski
// votes, IC ranking first, deduplicated.
func trialKeyLengths(letters string, max int) []int {
	seen := make(map[int]bool)
	var lengths []int
	appendLength := func(l int) {
		if l < 1 || l > max || seen[l] {
			return
		}
		seen[l] = true
		lengths = append(lengths, l)
	}
	for i, cand := range analysis.EstimateKeyLengths(letters, max) {
		if i >= keyLengthTrials {
			break
		}
		appendLength(cand.Length)
	}
	for i, l := range analysis.KasiskiCandidates(letters, max) {
		if i >= keyLengthTrials {
			break
		}
		appendLength(l)
	}
	if len(lengths) == 0 {
		appendLength(1)
	}
	return lengths
}

// recoverVigenereKey finds, for each of the length columns, the Caesar shift
// whose decryption best matches English letter frequencies.
func recoverVigenereKey(letters string, length int) string {
	var key strings.Builder
	key.Grow(length)
	for col := 0; col < length; col++ {
		var column strings.Builder
		for i := col; i < len(letters); i += length {
			column.WriteByte(letters[i])
		}
		key.WriteByte(byte('A' + bestCaesarShift(column.String())))
	}
	return key.String()
}

// bestCaesarShift returns the shift whose removal leaves the most
// English-like letter distribution.
func bestCaesarShift(column string) int {
	best := 0
	bestChi := 0.0
	for shift := 0; shift < 26; shift++ {
		shifted := make([]byte, len(column))
		for i := 0; i < len(column); i++ {
			shifted[i] = byte('A' + ((int(column[i]-'A') - shift + 26) % 26))
		}
		chi := analysis.ChiSquared(string(shifted))
		if shift == 0 || chi < bestChi {
			best, bestChi = shift, chi
		}
	}
	return best
}
