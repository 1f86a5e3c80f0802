// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/numtheory"
)

// PeriodIC returns the average index of coincidence over the period columns
// of text. For polyalphabetic ciphertext the value approaches English IC at
// the true key length.
func PeriodIC(text string, period int) float64 {
	letters := alphabet.Normalize(text, alphabet.Standard())
	if period < 1 || len(letters) < 2*period {
		return 0
	}
	columns := make([]strings.Builder, period)
	for i, r := range letters {
		columns[i%period].WriteRune(r)
	}
	sum := 0.0
	for i := range columns {
		sum += IndexOfCoincidence(columns[i].String())
	}
	return sum / float64(period)
}

// KeyLengthCandidate pairs a period with its average column IC.
type KeyLengthCandidate struct {
	Length int
	IC     float64
}

// EstimateKeyLengths ranks candidate key lengths from 1 to max by how close
// their column IC comes to English prose.
func EstimateKeyLengths(text string, max int) []KeyLengthCandidate {
	letters := alphabet.Normalize(text, alphabet.Standard())
	var candidates []KeyLengthCandidate
	for period := 1; period <= max; period++ {
		if len(letters) < 2*period {
			break
		}
		candidates = append(candidates, KeyLengthCandidate{
			Length: period,
			IC:     PeriodIC(letters, period),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di := candidates[i].IC - EnglishIC
		dj := candidates[j].IC - EnglishIC
		if di < 0 {
			di = -di
		}
		if dj < 0 {
			dj = -dj
		}
		return di < dj
	})
	return candidates
}

// KasiskiCandidates collects distances between repeated trigrams and tallies
// their divisors as likely key lengths, strongest first. The method is
// corroborative: combine it with EstimateKeyLengths rather than trusting it
// alone on short texts.
func KasiskiCandidates(text string, max int) []int {
	letters := alphabet.Normalize(text, alphabet.Standard())
	const gramLen = 3
	lastSeen := make(map[string]int)
	votes := make(map[int]int)
	for i := 0; i+gramLen <= len(letters); i++ {
		gram := letters[i : i+gramLen]
		if prev, ok := lastSeen[gram]; ok {
			distance := i - prev
			for d := 2; d <= max; d++ {
				if distance%d == 0 {
					votes[d]++
				}
			}
		}
		lastSeen[gram] = i
	}
	lengths := make([]int, 0, len(votes))
	for d := range votes {
		lengths = append(lengths, d)
	}
	sort.SliceStable(lengths, func(i, j int) bool {
		if votes[lengths[i]] != votes[lengths[j]] {
			return votes[lengths[i]] > votes[lengths[j]]
		}
		return lengths[i] < lengths[j]
	})
	return lengths
}

// GCDOfDistances folds a set of Kasiski distances into their gcd, the
// classical shortcut when repeats are clean.
func GCDOfDistances(distances []int) int {
	g := 0
	for _, d := range distances {
		g = numtheory.GCD(g, d)
	}
	return g
}
