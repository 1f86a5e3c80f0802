// SPDX-License-Identifier: MIT

// Package ngram provides an English n-gram language model used to score
// candidate plaintexts during cryptanalysis. The model is built once from an
// embedded public-domain corpus and is safe for concurrent use.
package ngram

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

//go:embed corpus.txt
var corpus string

// Model holds log10 probabilities for fixed-length letter grams. Scores are
// comparable only between texts of the same length under the same model.
type Model struct {
	n     int
	logp  map[string]float64
	floor float64
}

// NewModel builds an n-gram model from the given training text.
func NewModel(text string, n int) (*Model, error) {
	if n < 1 {
		return nil, fmt.Errorf("ngram: gram length %d out of range", n)
	}
	letters := alphabet.Normalize(text, alphabet.Standard())
	if len(letters) < n {
		return nil, fmt.Errorf("ngram: training text shorter than gram length %d", n)
	}
	counts := make(map[string]int)
	total := 0
	for i := 0; i+n <= len(letters); i++ {
		counts[letters[i:i+n]]++
		total++
	}
	logp := make(map[string]float64, len(counts))
	for gram, c := range counts {
		logp[gram] = math.Log10(float64(c) / float64(total))
	}
	return &Model{
		n:    n,
		logp: logp,
		// Unseen grams get a penalty one order of magnitude below any
		// singleton occurrence.
		floor: math.Log10(0.1 / float64(total)),
	}, nil
}

// N returns the gram length.
func (m *Model) N() int { return m.n }

// Score sums the log probabilities of every gram of the normalized text.
// Higher is more English-like. Texts shorter than the gram length score as a
// single floor penalty.
func (m *Model) Score(text string) float64 {
	letters := alphabet.Normalize(text, alphabet.Standard())
	if len(letters) < m.n {
		return m.floor
	}
	score := 0.0
	for i := 0; i+m.n <= len(letters); i++ {
		if lp, ok := m.logp[letters[i:i+m.n]]; ok {
			score += lp
		} else {
			score += m.floor
		}
	}
	return score
}

var (
	quadOnce sync.Once
	quad     *Model
	biOnce   sync.Once
	bi       *Model
)

// Quadgrams returns the shared quadgram model built from the embedded corpus.
func Quadgrams() *Model {
	quadOnce.Do(func() {
		m, err := NewModel(corpus, 4)
		if err != nil {
			panic(fmt.Sprintf("ngram: build embedded quadgram model: %v", err))
		}
		quad = m
	})
	return quad
}

// Bigrams returns the shared bigram model, used for very short texts where
// quadgram statistics are too sparse.
func Bigrams() *Model {
	biOnce.Do(func() {
		m, err := NewModel(corpus, 2)
		if err != nil {
			panic(fmt.Sprintf("ngram: build embedded bigram model: %v", err))
		}
		bi = m
	})
	return bi
}
