// SPDX-License-Identifier: MIT

// Package crack implements ciphertext-only attacks against the classical
// ciphers of this repository. Every breaker returns candidates ranked best
// first; scores are comparable within a single breaker's result but not
// across breakers. All breakers honour context cancellation.
package crack

import (
	"errors"
	"sort"
)

// Candidate is one decryption hypothesis. Higher Score is always better.
type Candidate struct {
	Cipher    string  `json:"cipher"`
	Key       string  `json:"key"`
	Plaintext string  `json:"plaintext"`
	Score     float64 `json:"score"`
}

var (
	// ErrTextTooShort is returned when the ciphertext carries too few
	// letters for the attack's statistics to mean anything.
	ErrTextTooShort = errors.New("crack: ciphertext too short")

	// ErrUnsupportedClass is returned by Auto when no breaker exists for
	// the identified cipher class.
	ErrUnsupportedClass = errors.New("crack: no breaker for identified cipher class")
)

func sortByScore(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

// leaderboard keeps the best-scoring candidates seen so far, bounded so
// exhaustive searches do not retain every tried key.
type leaderboard struct {
	limit int
	items []Candidate
}

func (l *leaderboard) add(c Candidate) {
	pos := sort.Search(len(l.items), func(i int) bool {
		return l.items[i].Score < c.Score
	})
	if pos >= l.limit {
		return
	}
	l.items = append(l.items, Candidate{})
	copy(l.items[pos+1:], l.items[pos:])
	l.items[pos] = c
	if len(l.items) > l.limit {
		l.items = l.items[:l.limit]
	}
}
