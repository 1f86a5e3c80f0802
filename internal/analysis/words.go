// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"
	"strings"

	"github.com/kryptoslab/kryptos/internal/alphabet"
)

// commonWords are frequent English words used for dictionary scoring of
// candidate plaintexts that carry no word boundaries.
var commonWords = []string{
	"THE", "AND", "THAT", "HAVE", "FOR", "NOT", "WITH", "YOU", "THIS",
	"BUT", "HIS", "FROM", "THEY", "SAY", "HER", "SHE", "WILL", "ONE",
	"ALL", "WOULD", "THERE", "THEIR", "WHAT", "OUT", "ABOUT", "WHO",
	"GET", "WHICH", "WHEN", "MAKE", "CAN", "LIKE", "TIME", "JUST",
	"HIM", "KNOW", "TAKE", "PEOPLE", "INTO", "YEAR", "YOUR", "GOOD",
	"SOME", "COULD", "THEM", "SEE", "OTHER", "THAN", "THEN", "NOW",
	"LOOK", "ONLY", "COME", "ITS", "OVER", "THINK", "ALSO", "BACK",
	"AFTER", "USE", "TWO", "HOW", "OUR", "WORK", "FIRST", "WELL",
	"WAY", "EVEN", "NEW", "WANT", "BECAUSE", "ANY", "THESE", "GIVE",
	"DAY", "MOST", "ATTACK", "DAWN", "ENEMY", "GENERAL", "NORTH",
	"SOUTH", "EAST", "WEST", "ARMY", "RIVER", "HILL", "NIGHT",
	"ARE", "WAS", "WERE", "BEEN", "MEN", "WAR", "NATION", "SCORE",
	"YEARS", "GREAT", "SHALL", "UPON", "EVERY", "WHERE", "HERE",
	"DEAD", "LIVE", "WORLD", "POWER", "PLACE", "LONG", "UNDER",
	"THOSE", "SUCH", "MUST", "MORE", "BEFORE", "AGAINST", "BETWEEN",
}

var wordsByLength []string

func init() {
	wordsByLength = append(wordsByLength, commonWords...)
	sort.SliceStable(wordsByLength, func(i, j int) bool {
		return len(wordsByLength[i]) > len(wordsByLength[j])
	})
}

// WordScore returns the fraction of text letters covered by common English
// words, matched greedily longest-first. Plain English typically scores above
// 0.5; shuffled letters score near zero.
func WordScore(text string) float64 {
	letters := alphabet.Normalize(text, alphabet.Standard())
	if letters == "" {
		return 0
	}
	covered := make([]bool, len(letters))
	for _, w := range wordsByLength {
		for off := 0; ; {
			i := strings.Index(letters[off:], w)
			if i < 0 {
				break
			}
			for j := off + i; j < off+i+len(w); j++ {
				covered[j] = true
			}
			off += i + 1
			if off >= len(letters) {
				break
			}
		}
	}
	n := 0
	for _, c := range covered {
		if c {
			n++
		}
	}
	return float64(n) / float64(len(letters))
}
