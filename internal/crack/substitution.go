// SPDX-License-Identifier: MIT

package crack

import (
	"context"
	mrand "math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kryptoslab/kryptos/internal/alphabet"
	"github.com/kryptoslab/kryptos/internal/ngram"
)

const (
	// DefaultRestarts is how many independent hill climbs Substitution
	// runs when the caller does not say otherwise.
	DefaultRestarts = 12

	// minSubstitutionLetters is the shortest ciphertext the quadgram
	// statistics can steer a climb on.
	minSubstitutionLetters = 40

	// staleSwapLimit ends a climb after this many consecutive swaps
	// without improvement.
	staleSwapLimit = 1500

	cancelCheckInterval = 128
)

// englishByFrequency lists the alphabet from most to least frequent in
// English prose, used to seed the first climb.
const englishByFrequency = "ETAOINSHRDLCUMWFGYPBVKJXQZ"

// Substitution attacks a monoalphabetic substitution by hill climbing:
// random two-letter key swaps are kept when they raise the quadgram score of
// the decryption. Restarts run in parallel and each starts from a fresh key,
// the first seeded by frequency matching. The returned Key is the encryption
// alphabet, directly usable with the substitution cipher.
func Substitution(ctx context.Context, ciphertext string, restarts int) ([]Candidate, error) {
	if restarts < 1 {
		restarts = DefaultRestarts
	}
	letters := alphabet.Normalize(ciphertext, alphabet.Standard())
	if len(letters) < minSubstitutionLetters {
		return nil, ErrTextTooShort
	}
	src := []byte(letters)
	model := ngram.Quadgrams()

	var (
		mu      sync.Mutex
		results []Candidate
	)
	g, ctx := errgroup.WithContext(ctx)
	for restart := 0; restart < restarts; restart++ {
		g.Go(func() error {
			rng := mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64()))
			key := randomDecryptKey(rng)
			if restart == 0 {
				key = frequencyDecryptKey(src)
			}
			key, score, err := climb(ctx, src, model, key, rng)
			if err != nil {
				return err
			}
			plaintext := make([]byte, len(src))
			decryptInto(plaintext, src, &key)
			mu.Lock()
			results = append(results, Candidate{
				Cipher:    "substitution",
				Key:       encryptionKeyString(&key),
				Plaintext: string(plaintext),
				Score:     score,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortByScore(results)
	return dedupeByPlaintext(results), nil
}

// climb hill-climbs one decryption key until staleSwapLimit swaps in a row
// fail to improve the quadgram score.
func climb(ctx context.Context, src []byte, model *ngram.Model, key [26]byte, rng *mrand.Rand) ([26]byte, float64, error) {
	buf := make([]byte, len(src))
	decryptInto(buf, src, &key)
	score := model.Score(string(buf))

	stale := 0
	for swaps := 0; stale < staleSwapLimit; swaps++ {
		if swaps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return key, score, err
			}
		}
		i, j := rng.IntN(26), rng.IntN(26)
		if i == j {
			continue
		}
		key[i], key[j] = key[j], key[i]
		decryptInto(buf, src, &key)
		if s := model.Score(string(buf)); s > score {
			score = s
			stale = 0
		} else {
			key[i], key[j] = key[j], key[i]
			stale++
		}
	}
	return key, score, nil
}

// decryptInto maps each ciphertext letter of src through the decryption key
// (ciphertext index to plaintext letter).
func decryptInto(dst, src []byte, key *[26]byte) {
	for i, b := range src {
		dst[i] = key[b-'A']
	}
}

// frequencyDecryptKey aligns the ciphertext's letter ranking with English
// letter frequencies.
func frequencyDecryptKey(src []byte) [26]byte {
	var counts [26]int
	for _, b := range src {
		counts[b-'A']++
	}
	order := make([]int, 26)
	for i := range order {
		order[i] = i
	}
	// stable selection sort keeps alphabetical order on count ties
	for i := 0; i < 26; i++ {
		best := i
		for j := i + 1; j < 26; j++ {
			if counts[order[j]] > counts[order[best]] {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}
	var key [26]byte
	for rank, cipherIdx := range order {
		key[cipherIdx] = englishByFrequency[rank]
	}
	return key
}

func randomDecryptKey(rng *mrand.Rand) [26]byte {
	var key [26]byte
	copy(key[:], alphabet.Latin)
	rng.Shuffle(26, func(i, j int) {
		key[i], key[j] = key[j], key[i]
	})
	return key
}

// encryptionKeyString inverts a decryption key into the encryption alphabet
// accepted by the cipher package.
func encryptionKeyString(key *[26]byte) string {
	var enc [26]byte
	for cipherIdx, plainLetter := range key {
		enc[plainLetter-'A'] = byte('A' + cipherIdx)
	}
	return string(enc[:])
}

func dedupeByPlaintext(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if seen[c.Plaintext] {
			continue
		}
		seen[c.Plaintext] = true
		out = append(out, c)
	}
	return out
}
