// SPDX-License-Identifier: MIT

package numtheory

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// millerRabinRounds is enough for a negligible error probability at the toy
// key sizes this project generates.
const millerRabinRounds = 40

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// IsProbablePrime runs a Miller-Rabin probable-prime test on n.
func IsProbablePrime(n *big.Int) bool {
	if n.Cmp(two) < 0 {
		return false
	}
	return n.ProbablyPrime(millerRabinRounds)
}

// RandomPrime returns a uniformly chosen probable prime in [min, max).
// It fails when the interval is empty or contains no prime within a bounded
// number of draws.
func RandomPrime(min, max *big.Int) (*big.Int, error) {
	if min.Cmp(max) >= 0 {
		return nil, fmt.Errorf("numtheory: empty prime interval [%s, %s)", min, max)
	}
	span := new(big.Int).Sub(max, min)

	// Expected gap between primes near n is ln(n); a generous multiple of the
	// bit length bounds the search without risking an infinite loop.
	attempts := 64 * (max.BitLen() + 1)
	for i := 0; i < attempts; i++ {
		offset, err := rand.Int(rand.Reader, span)
		if err != nil {
			return nil, fmt.Errorf("numtheory: draw random candidate: %w", err)
		}
		candidate := new(big.Int).Add(min, offset)
		if candidate.Bit(0) == 0 {
			candidate.Add(candidate, one)
			if candidate.Cmp(max) >= 0 {
				continue
			}
		}
		if IsProbablePrime(candidate) {
			return candidate, nil
		}
	}
	return nil, errors.New("numtheory: no prime found in interval")
}
