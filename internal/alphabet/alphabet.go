// SPDX-License-Identifier: MIT

// Package alphabet defines the letter alphabets classical ciphers operate on
// and the text normalization applied before analysis.
package alphabet

import (
	"errors"
	"fmt"
	"strings"
)

// Latin is the standard 26-letter uppercase alphabet.
const Latin = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrEmptyKeyword is returned when a keyed alphabet is requested with an empty keyword.
var ErrEmptyKeyword = errors.New("alphabet: keyword must be a non-empty string")

// Alphabet is an ordered set of distinct uppercase letters. The zero value is
// not usable; construct with New, Keyed or Standard.
type Alphabet struct {
	letters string
	index   map[rune]int
}

// Standard returns the Latin A-Z alphabet.
func Standard() Alphabet {
	a, _ := New(Latin)
	return a
}

// New builds an alphabet from the given letters. Letters are uppercased and
// must be distinct.
func New(letters string) (Alphabet, error) {
	letters = strings.ToUpper(letters)
	index := make(map[rune]int, len(letters))
	for i, r := range letters {
		if _, dup := index[r]; dup {
			return Alphabet{}, fmt.Errorf("alphabet: duplicate letter %q", r)
		}
		index[r] = i
	}
	if len(index) == 0 {
		return Alphabet{}, errors.New("alphabet: no letters")
	}
	return Alphabet{letters: letters, index: index}, nil
}

// Keyed derives an alphabet from a keyword: the keyword's letters in
// first-seen order, followed by the remaining letters of the base alphabet.
// "ZEBRAS" over Latin yields "ZEBRASCDFGHIJKLMNOPQTUVWXY".
func Keyed(keyword string, base Alphabet) (Alphabet, error) {
	if keyword == "" {
		return Alphabet{}, ErrEmptyKeyword
	}
	keyword = strings.ToUpper(keyword)
	var b strings.Builder
	seen := make(map[rune]bool, base.Len())
	for _, r := range keyword {
		if _, ok := base.index[r]; !ok {
			return Alphabet{}, fmt.Errorf("alphabet: keyword letter %q not in base alphabet", r)
		}
		if !seen[r] {
			seen[r] = true
			b.WriteRune(r)
		}
	}
	for _, r := range base.letters {
		if !seen[r] {
			seen[r] = true
			b.WriteRune(r)
		}
	}
	return New(b.String())
}

// Len returns the number of letters.
func (a Alphabet) Len() int { return len(a.index) }

// Index returns the position of r (case-insensitive) and whether r is a member.
func (a Alphabet) Index(r rune) (int, bool) {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	i, ok := a.index[r]
	return i, ok
}

// Rune returns the letter at position i mod Len.
func (a Alphabet) Rune(i int) rune {
	n := a.Len()
	i = ((i % n) + n) % n
	return rune(a.letters[i])
}

// Contains reports whether r (case-insensitive) is a member.
func (a Alphabet) Contains(r rune) bool {
	_, ok := a.Index(r)
	return ok
}

// String returns the letters in order.
func (a Alphabet) String() string { return a.letters }

// IsPermutationOf reports whether other holds exactly the same letters.
func (a Alphabet) IsPermutationOf(other Alphabet) bool {
	if a.Len() != other.Len() {
		return false
	}
	for r := range a.index {
		if _, ok := other.index[r]; !ok {
			return false
		}
	}
	return true
}
