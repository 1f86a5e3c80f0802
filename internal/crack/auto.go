// SPDX-License-Identifier: MIT

package crack

import (
	"context"
	"fmt"

	"github.com/kryptoslab/kryptos/internal/analysis"
	"github.com/kryptoslab/kryptos/internal/ngram"
)

// autoKeep bounds the merged candidate list Auto returns.
const autoKeep = 10

// Auto classifies the ciphertext by its statistical shape and runs every
// breaker that matches the identified class. Merged candidates are re-scored
// with the shared quadgram model so the ranking is consistent across
// breakers.
func Auto(ctx context.Context, ciphertext string) ([]Candidate, error) {
	id := analysis.Identify(ciphertext)
	var (
		merged []Candidate
		runs   [][]Candidate
	)
	switch id.Class {
	case analysis.ClassPlaintext:
		return []Candidate{{
			Cipher:    "none",
			Plaintext: ciphertext,
			Score:     ngram.Quadgrams().Score(ciphertext),
		}}, nil
	case analysis.ClassMonoalphabetic:
		for _, attack := range []func(context.Context, string) ([]Candidate, error){
			Caesar,
			Affine,
			func(ctx context.Context, text string) ([]Candidate, error) {
				return Substitution(ctx, text, DefaultRestarts)
			},
		} {
			out, err := attack(ctx, ciphertext)
			if err != nil {
				return nil, err
			}
			runs = append(runs, out)
		}
	case analysis.ClassPolyalphabetic:
		out, err := Vigenere(ctx, ciphertext, DefaultMaxKeyLength)
		if err != nil {
			return nil, err
		}
		runs = append(runs, out)
	case analysis.ClassTransposition:
		rails, err := RailFence(ctx, ciphertext, DefaultMaxRails)
		if err != nil {
			return nil, err
		}
		cols, err := Columnar(ctx, ciphertext, DefaultMaxColumns)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rails, cols)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedClass, id.Class)
	}

	model := ngram.Quadgrams()
	for _, out := range runs {
		for _, c := range out {
			c.Score = model.Score(c.Plaintext)
			merged = append(merged, c)
		}
	}
	sortByScore(merged)
	merged = dedupeByPlaintext(merged)
	if len(merged) > autoKeep {
		merged = merged[:autoKeep]
	}
	return merged, nil
}
