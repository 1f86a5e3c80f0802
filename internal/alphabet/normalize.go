// SPDX-License-Identifier: MIT

package alphabet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	unorm "golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes characters and strips combining marks, so that
// "Télévision" folds to "Television" before letter filtering. A chained
// transformer carries internal buffer state, so each call needs its own:
// sharing one across goroutines corrupts it.
func foldTransformer() transform.Transformer {
	return transform.Chain(unorm.NFD, runes.Remove(runes.In(unicode.Mn)), unorm.NFC)
}

// Fold maps accented characters to their ASCII base form and uppercases the
// result. Characters without a base-letter mapping pass through unchanged.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer(), s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}

// Normalize folds s and drops every rune outside the alphabet. This is the
// canonical form cryptanalysis operates on.
func Normalize(s string, a Alphabet) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range Fold(s) {
		if a.Contains(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
