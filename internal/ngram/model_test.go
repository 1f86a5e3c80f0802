// SPDX-License-Identifier: MIT

package ngram

import (
	"testing"
)

func TestNewModelValidation(t *testing.T) {
	if _, err := NewModel("ABCD", 0); err == nil {
		t.Error("NewModel with n=0 should fail")
	}
	if _, err := NewModel("AB", 4); err == nil {
		t.Error("NewModel with text shorter than n should fail")
	}
}

func TestScorePrefersEnglish(t *testing.T) {
	m := Quadgrams()

	english := "THE WORLD WILL LITTLE NOTE NOR LONG REMEMBER WHAT WE SAY HERE"
	gibberish := "QXZKJ QVWPF ZZTXQ JKWWV PQZXJ KQVWZ TXQJK WQZXV PJQKW XZTQJ K"

	if m.Score(english) <= m.Score(gibberish) {
		t.Errorf("english score %f should exceed gibberish score %f",
			m.Score(english), m.Score(gibberish))
	}
}

func TestScoreIsLengthSensitive(t *testing.T) {
	m := Quadgrams()
	short := m.Score("THE")
	if short != m.floor {
		t.Errorf("text shorter than gram length scores the floor, got %f want %f", short, m.floor)
	}
}

func TestScoreDeterministic(t *testing.T) {
	m := Quadgrams()
	a := m.Score("ATTACK AT DAWN")
	b := m.Score("ATTACK AT DAWN")
	if a != b {
		t.Errorf("scores differ between calls: %f vs %f", a, b)
	}
}

func TestBigrams(t *testing.T) {
	m := Bigrams()
	if m.N() != 2 {
		t.Fatalf("Bigrams().N() = %d, want 2", m.N())
	}
	if m.Score("TH") <= m.Score("QZ") {
		t.Error("TH should outscore QZ under a bigram model")
	}
}

func BenchmarkQuadgramScore(b *testing.B) {
	m := Quadgrams()
	text := "FOUR SCORE AND SEVEN YEARS AGO OUR FATHERS BROUGHT FORTH ON THIS CONTINENT A NEW NATION"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Score(text)
	}
}
