// SPDX-License-Identifier: MIT

package crack

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/cipher"
	"github.com/kryptoslab/kryptos/internal/ngram"
)

const (
	// DefaultMaxRails bounds the rail fence search.
	DefaultMaxRails = 10

	// DefaultMaxColumns bounds the columnar search. Widths are searched
	// exhaustively, so the hard cap below keeps the permutation count at
	// 8! per width.
	DefaultMaxColumns = 7
	maxColumnsLimit   = 8

	// transpositionKeep is how many ranked candidates the exhaustive
	// transposition searches retain.
	transpositionKeep = 10
)

// RailFence decrypts with every rail count from 2 to maxRails and ranks the
// results by quadgram score.
func RailFence(ctx context.Context, ciphertext string, maxRails int) ([]Candidate, error) {
	if maxRails < 2 {
		maxRails = DefaultMaxRails
	}
	letters := alphabet.Normalize(ciphertext, alphabet.Standard())
	if len(letters) < 3 {
		return nil, ErrTextTooShort
	}
	model := ngram.Quadgrams()
	var candidates []Candidate
	for rails := 2; rails <= maxRails && rails <= len(letters); rails++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := cipher.NewRailFence(rails)
		if err != nil {
			return nil, fmt.Errorf("crack: rail fence %d rails: %w", rails, err)
		}
		plaintext, err := c.Decrypt(ciphertext)
		if err != nil {
			return nil, fmt.Errorf("crack: rail fence %d rails: %w", rails, err)
		}
		candidates = append(candidates, Candidate{
			Cipher:    "railfence",
			Key:       strconv.Itoa(rails),
			Plaintext: plaintext,
			Score:     model.Score(plaintext),
		})
	}
	sortByScore(candidates)
	return candidates, nil
}

// Columnar brute-forces every column permutation for widths 2 to maxColumns
// and ranks the decryptions by quadgram score. Keys are reported as the
// read-order permutation, columns separated by dashes.
func Columnar(ctx context.Context, ciphertext string, maxColumns int) ([]Candidate, error) {
	if maxColumns < 2 {
		maxColumns = DefaultMaxColumns
	}
	if maxColumns > maxColumnsLimit {
		maxColumns = maxColumnsLimit
	}
	letters := alphabet.Normalize(ciphertext, alphabet.Standard())
	if len(letters) < 4 {
		return nil, ErrTextTooShort
	}
	model := ngram.Quadgrams()
	board := leaderboard{limit: transpositionKeep}

	for width := 2; width <= maxColumns && width < len(letters); width++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		order := make([]int, width)
		for i := range order {
			order[i] = i
		}
		tried := 0
		err := permute(order, func(perm []int) error {
			tried++
			if tried%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			c, err := cipher.NewColumnar(perm)
			if err != nil {
				return fmt.Errorf("crack: columnar key %v: %w", perm, err)
			}
			plaintext, err := c.Decrypt(ciphertext)
			if err != nil {
				return fmt.Errorf("crack: columnar key %v: %w", perm, err)
			}
			board.add(Candidate{
				Cipher:    "columnar",
				Key:       permKey(perm),
				Plaintext: plaintext,
				Score:     model.Score(plaintext),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return board.items, nil
}

// permute calls visit with every permutation of order (Heap's algorithm).
// The slice passed to visit is reused between calls.
func permute(order []int, visit func([]int) error) error {
	n := len(order)
	counters := make([]int, n)
	if err := visit(order); err != nil {
		return err
	}
	for i := 0; i < n; {
		if counters[i] < i {
			if i%2 == 0 {
				order[0], order[i] = order[i], order[0]
			} else {
				order[counters[i]], order[i] = order[i], order[counters[i]]
			}
			if err := visit(order); err != nil {
				return err
			}
			counters[i]++
			i = 0
		} else {
			counters[i] = 0
			i++
		}
	}
	return nil
}

func permKey(perm []int) string {
	parts := make([]string, len(perm))
	for i, p := range perm {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "-")
}
