// SPDX-License-Identifier: MIT

// Package analysis implements the statistical measures classical
// cryptanalysis is built on: letter frequencies, chi-squared goodness of fit
// against English, index of coincidence and Kasiski examination.
package analysis

import (
	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// englishFrequencies are expected relative letter frequencies for English
// text, A through Z.
var englishFrequencies = [26]float64{
	0.08167, 0.01492, 0.02782, 0.04253, 0.12702, 0.02228, 0.02015,
	0.06094, 0.06966, 0.00153, 0.00772, 0.04025, 0.02406, 0.06749,
	0.07507, 0.01929, 0.00095, 0.05987, 0.06327, 0.09056, 0.02758,
	0.00978, 0.02360, 0.00150, 0.01974, 0.00074,
}

// Counts tallies alphabet letters in text after normalization.
func Counts(text string) [26]int {
	a := alphabet.Standard()
	var counts [26]int
	for _, r := range alphabet.Normalize(text, a) {
		idx, _ := a.Index(r)
		counts[idx]++
	}
	return counts
}

// Frequencies returns relative letter frequencies keyed by letter. Letters
// absent from the text map to zero. The sum over all letters is 1 for
// non-empty input.
func Frequencies(text string) map[rune]float64 {
	counts := Counts(text)
	total := 0
	for _, c := range counts {
		total += c
	}
	a := alphabet.Standard()
	freqs := make(map[rune]float64, 26)
	for i, c := range counts {
		if total > 0 {
			freqs[a.Rune(i)] = float64(c) / float64(total)
		} else {
			freqs[a.Rune(i)] = 0
		}
	}
	return freqs
}

// ChiSquared measures how far the letter distribution of text deviates from
// English. Lower values mean more English-like; a uniform or shifted
// distribution scores high.
func ChiSquared(text string) float64 {
	counts := Counts(text)
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	chi := 0.0
	for i, observed := range counts {
		expected := englishFrequencies[i] * float64(total)
		diff := float64(observed) - expected
		chi += diff * diff / expected
	}
	return chi
}

// IndexOfCoincidence is the probability that two randomly chosen letters of
// the text are equal. English prose sits near 0.066, uniformly random letters
// near 0.0385.
func IndexOfCoincidence(text string) float64 {
	counts := Counts(text)
	total := 0
	sum := 0
	for _, c := range counts {
		total += c
		sum += c * (c - 1)
	}
	if total < 2 {
		return 0
	}
	return float64(sum) / float64(total*(total-1))
}

// EnglishIC is the index of coincidence of English prose.
const EnglishIC = 0.0667

// RandomIC is the index of coincidence of uniformly random letters.
const RandomIC = 1.0 / 26.0
