// SPDX-License-Identifier: MIT

package crack

import (
	"context"
	"errors"
	"testing"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/cipher"
)

// crackPlaintext is long enough for every statistical attack in this
// package to converge.
const crackPlaintext = "FOUR SCORE AND SEVEN YEARS AGO OUR FATHERS BROUGHT FORTH ON THIS " +
	"CONTINENT A NEW NATION CONCEIVED IN LIBERTY AND DEDICATED TO THE PROPOSITION THAT ALL " +
	"MEN ARE CREATED EQUAL NOW WE ARE ENGAGED IN A GREAT CIVIL WAR TESTING WHETHER THAT " +
	"NATION OR ANY NATION SO CONCEIVED AND SO DEDICATED CAN LONG ENDURE WE ARE MET ON A " +
	"GREAT BATTLEFIELD OF THAT WAR WE HAVE COME TO DEDICATE A PORTION OF THAT FIELD AS A " +
	"FINAL RESTING PLACE FOR THOSE WHO HERE GAVE THEIR LIVES THAT THAT NATION MIGHT LIVE " +
	"IT IS ALTOGETHER FITTING AND PROPER THAT WE SHOULD DO THIS"

func lettersOf(t *testing.T, s string) string {
	t.Helper()
	return alphabet.Normalize(s, alphabet.Standard())
}

func mustEncrypt(t *testing.T, c cipher.Cipher, plaintext string) string {
	t.Helper()
	out, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return out
}

func TestCaesarRecovery(t *testing.T) {
	ciphertext := mustEncrypt(t, cipher.NewCaesar(7), crackPlaintext)

	candidates, err := Caesar(context.Background(), ciphertext)
	if err != nil {
		t.Fatalf("Caesar: %v", err)
	}
	if len(candidates) != 26 {
		t.Fatalf("got %d candidates, want 26", len(candidates))
	}
	best := candidates[0]
	if best.Key != "7" {
		t.Errorf("best key = %q, want %q", best.Key, "7")
	}
	if best.Plaintext != crackPlaintext {
		t.Errorf("best plaintext = %q, want %q", best.Plaintext, crackPlaintext)
	}
	if best.Score <= candidates[1].Score {
		t.Errorf("best score %f not above runner-up %f", best.Score, candidates[1].Score)
	}
}

func TestCaesarNoLetters(t *testing.T) {
	if _, err := Caesar(context.Background(), "123 456!"); !errors.Is(err, ErrTextTooShort) {
		t.Errorf("err = %v, want ErrTextTooShort", err)
	}
}

func TestCaesarCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Caesar(ctx, crackPlaintext); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAffineRecovery(t *testing.T) {
	c, err := cipher.NewAffine(5, 8)
	if err != nil {
		t.Fatalf("NewAffine: %v", err)
	}
	ciphertext := mustEncrypt(t, c, crackPlaintext)

	candidates, err := Affine(context.Background(), ciphertext)
	if err != nil {
		t.Fatalf("Affine: %v", err)
	}
	if len(candidates) != 312 {
		t.Fatalf("got %d candidates, want 312", len(candidates))
	}
	best := candidates[0]
	if best.Key != "5,8" {
		t.Errorf("best key = %q, want %q", best.Key, "5,8")
	}
	if best.Plaintext != crackPlaintext {
		t.Errorf("best plaintext = %q, want %q", best.Plaintext, crackPlaintext)
	}
}

func TestLeaderboardKeepsBest(t *testing.T) {
	board := leaderboard{limit: 3}
	for _, score := range []float64{1, 5, 3, 4, 2} {
		board.add(Candidate{Score: score})
	}
	if len(board.items) != 3 {
		t.Fatalf("got %d items, want 3", len(board.items))
	}
	for i, want := range []float64{5, 4, 3} {
		if board.items[i].Score != want {
			t.Errorf("items[%d].Score = %f, want %f", i, board.items[i].Score, want)
		}
	}
}
