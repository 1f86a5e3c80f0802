// SPDX-License-Identifier: MIT

package analysis

import (
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// CipherClass is a coarse structural classification of a ciphertext.
type CipherClass string

const (
	// ClassPlaintext looks like unencrypted English.
	ClassPlaintext CipherClass = "plaintext"
	// ClassMonoalphabetic has English-like letter clustering under an
	// unknown fixed substitution (Caesar, affine, keyword, ...).
	ClassMonoalphabetic CipherClass = "monoalphabetic"
	// ClassPolyalphabetic has flattened frequencies with a periodic
	// structure (Vigenère family).
	ClassPolyalphabetic CipherClass = "polyalphabetic"
	// ClassTransposition has English letter frequencies in scrambled order.
	ClassTransposition CipherClass = "transposition"
	// ClassFractionated is built from a coordinate alphabet such as ADFGX.
	ClassFractionated CipherClass = "fractionated"
	// ClassUnknown is reported when the text is too short to classify.
	ClassUnknown CipherClass = "unknown"
)

// Identification is the result of classifying a ciphertext.
type Identification struct {
	Class     CipherClass `json:"class"`
	IC        float64     `json:"index_of_coincidence"`
	ChiSq     float64     `json:"chi_squared"`
	WordScore float64     `json:"word_score"`
	Letters   int         `json:"letters"`
}

// minClassifyLetters is the shortest text the heuristics are meaningful for.
const minClassifyLetters = 20

// Identify classifies ciphertext by its statistical shape. The heuristic
// follows the classical decision path: ADFGX symbol set first, then IC for
// mono vs poly, then chi-squared for substitution vs transposition.
func Identify(text string) Identification {
	letters := alphabet.Normalize(text, alphabet.Standard())
	id := Identification{
		IC:        IndexOfCoincidence(letters),
		ChiSq:     ChiSquared(letters),
		WordScore: WordScore(letters),
		Letters:   len(letters),
	}
	if len(letters) < minClassifyLetters {
		id.Class = ClassUnknown
		return id
	}

	if isADFGXAlphabet(letters) {
		id.Class = ClassFractionated
		return id
	}

	// normalized chi-squared per letter: English prose sits low, any
	// monoalphabetic disguise sits high, transposition keeps it low.
	chiPerLetter := id.ChiSq / float64(id.Letters)

	switch {
	case id.IC >= 0.055 && chiPerLetter < 1.0 && id.WordScore >= 0.35:
		id.Class = ClassPlaintext
	case id.IC >= 0.055 && chiPerLetter < 1.0:
		id.Class = ClassTransposition
	case id.IC >= 0.055:
		id.Class = ClassMonoalphabetic
	default:
		id.Class = ClassPolyalphabetic
	}
	return id
}

// isADFGXAlphabet reports whether the text uses only the five ADFGX symbols.
func isADFGXAlphabet(letters string) bool {
	if letters == "" {
		return false
	}
	return strings.IndexFunc(letters, func(r rune) bool {
		switch r {
		case 'A', 'D', 'F', 'G', 'X':
			return false
		}
		return true
	}) < 0
}
