// SPDX-License-Identifier: MIT

// Package rsakit implements a deliberately small, educational RSA. Keys
// generated here demonstrate textbook RSA and its classical failure modes
// for the factorization attacks in internal/factor. Nothing in this package
// is safe for protecting real data.
package rsakit

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/kryptoslab/kryptos/internal/numtheory"
)

// DefaultPublicExponent is the conventional RSA public exponent.
const DefaultPublicExponent = 65537

// MinPrimeBits is the smallest prime size key generation accepts. Anything
// this small is breakable instantly, which is the point of the toy.
const MinPrimeBits = 8

var (
	// ErrKeyTooSmall is returned when the requested prime size is below
	// MinPrimeBits.
	ErrKeyTooSmall = errors.New("rsakit: prime size too small")

	// ErrMessageTooLarge is returned when a message is not in [0, N).
	ErrMessageTooLarge = errors.New("rsakit: message not in modulus range")

	// ErrNoPrivateExponent is returned when decrypting with a key that
	// has no valid private exponent (weak-modulus keys).
	ErrNoPrivateExponent = errors.New("rsakit: key has no private exponent")

	// ErrInvalidHex is returned by ParseHexModulus for non-hex input.
	ErrInvalidHex = errors.New("rsakit: invalid hex modulus")
)

// PublicKey is an RSA public key (e, N).
type PublicKey struct {
	E *big.Int
	N *big.Int
}

// PrivateKey carries the full key material. D is nil for weak-modulus keys,
// whose factors are not prime and therefore admit no valid exponent pair.
type PrivateKey struct {
	PublicKey
	D *big.Int
	P *big.Int
	Q *big.Int
}

// GenerateKey generates a textbook RSA key from two random primes of
// primeBits bits each, with the given public exponent (DefaultPublicExponent
// when e is 0).
func GenerateKey(primeBits int, e int64) (*PrivateKey, error) {
	if primeBits < MinPrimeBits {
		return nil, fmt.Errorf("%w: %d bits", ErrKeyTooSmall, primeBits)
	}
	if e == 0 {
		e = DefaultPublicExponent
	}
	pubExp := big.NewInt(e)
	lo, hi := primeRange(primeBits)
	for attempt := 0; attempt < 64; attempt++ {
		p, q, err := distinctPrimes(lo, hi)
		if err != nil {
			return nil, err
		}
		key, err := assembleKey(pubExp, p, q)
		if err == nil {
			return key, nil
		}
		// e shared a factor with phi; draw fresh primes
	}
	return nil, fmt.Errorf("rsakit: exponent %d incompatible with generated primes", e)
}

// WeakMode selects a deliberately broken key-generation strategy.
type WeakMode string

const (
	// WeakClosePrimes picks q just above p, leaving N open to Fermat
	// factorization.
	WeakClosePrimes WeakMode = "close-primes"
	// WeakSmallD picks a tiny private exponent, leaving (e, N) open to
	// the Wiener continued-fraction attack.
	WeakSmallD WeakMode = "small-d"
	// WeakModulus multiplies two random, likely composite numbers,
	// leaving N open to trial division of its small factors.
	WeakModulus WeakMode = "weak-modulus"
)

// closePrimeGap bounds how far above p the second prime of a
// WeakClosePrimes key may land.
var closePrimeGap = big.NewInt(1_000_000_000)

// GenerateWeakKey generates a key that is breakable by the attack matching
// mode. The result always includes P and Q so callers can verify a recovery.
func GenerateWeakKey(mode WeakMode, primeBits int) (*PrivateKey, error) {
	if primeBits < MinPrimeBits {
		return nil, fmt.Errorf("%w: %d bits", ErrKeyTooSmall, primeBits)
	}
	lo, hi := primeRange(primeBits)
	switch mode {
	case WeakClosePrimes:
		p, err := numtheory.RandomPrime(lo, hi)
		if err != nil {
			return nil, fmt.Errorf("rsakit: %w", err)
		}
		q, err := numtheory.RandomPrime(new(big.Int).Add(p, big.NewInt(1)), new(big.Int).Add(p, closePrimeGap))
		if err != nil {
			return nil, fmt.Errorf("rsakit: %w", err)
		}
		return assembleKey(big.NewInt(DefaultPublicExponent), p, q)
	case WeakSmallD:
		return generateSmallDKey(lo, hi)
	case WeakModulus:
		return generateWeakModulusKey(hi)
	default:
		return nil, fmt.Errorf("rsakit: unknown weak mode %q", mode)
	}
}

// generateSmallDKey draws a prime private exponent below the Wiener bound
// N^(1/4)/4 and derives e from it.
func generateSmallDKey(lo, hi *big.Int) (*PrivateKey, error) {
	for attempt := 0; attempt < 64; attempt++ {
		p, q, err := distinctPrimes(lo, hi)
		if err != nil {
			return nil, err
		}
		n := new(big.Int).Mul(p, q)
		bound := numtheory.IntegerSqrt(numtheory.IntegerSqrt(n))
		bound.Quo(bound, big.NewInt(4))
		bound.Sub(bound, big.NewInt(1))
		if bound.Cmp(big.NewInt(3)) < 0 {
			return nil, fmt.Errorf("%w: modulus leaves no room for a small exponent", ErrKeyTooSmall)
		}
		d, err := numtheory.RandomPrime(big.NewInt(2), bound)
		if err != nil {
			return nil, fmt.Errorf("rsakit: %w", err)
		}
		phi := phiOf(p, q)
		e := new(big.Int).ModInverse(d, phi)
		if e == nil {
			continue
		}
		return &PrivateKey{
			PublicKey: PublicKey{E: e, N: n},
			D:         d,
			P:         p,
			Q:         q,
		}, nil
	}
	return nil, errors.New("rsakit: failed to find an invertible small exponent")
}

// generateWeakModulusKey multiplies two uniform random integers, so N almost
// surely carries small prime factors.
func generateWeakModulusKey(hi *big.Int) (*PrivateKey, error) {
	p, err := randomInRange(big.NewInt(2), hi)
	if err != nil {
		return nil, err
	}
	q, err := randomInRange(big.NewInt(2), hi)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{
		PublicKey: PublicKey{
			E: big.NewInt(DefaultPublicExponent),
			N: new(big.Int).Mul(p, q),
		},
		P: p,
		Q: q,
	}, nil
}

// Encrypt computes m^e mod N for a message in [0, N).
func (k *PublicKey) Encrypt(m *big.Int) (*big.Int, error) {
	if m.Sign() < 0 || m.Cmp(k.N) >= 0 {
		return nil, ErrMessageTooLarge
	}
	return numtheory.PowMod(m, k.E, k.N), nil
}

// Decrypt computes c^d mod N.
func (k *PrivateKey) Decrypt(c *big.Int) (*big.Int, error) {
	if k.D == nil {
		return nil, ErrNoPrivateExponent
	}
	if c.Sign() < 0 || c.Cmp(k.N) >= 0 {
		return nil, ErrMessageTooLarge
	}
	return numtheory.PowMod(c, k.D, k.N), nil
}

// ParseHexModulus parses a hex string into an integer, tolerating the
// spaces and line breaks that published moduli are usually wrapped with.
func ParseHexModulus(s string) (*big.Int, error) {
	var cleaned strings.Builder
	cleaned.Grow(len(s))
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			cleaned.WriteRune(r)
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", ErrInvalidHex, r)
		}
	}
	if cleaned.Len() == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidHex)
	}
	n, ok := new(big.Int).SetString(cleaned.String(), 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return n, nil
}

// primeRange returns [2^(bits-1), 2^bits), the range of bits-bit primes.
func primeRange(bits int) (lo, hi *big.Int) {
	lo = new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	hi = new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return lo, hi
}

func distinctPrimes(lo, hi *big.Int) (p, q *big.Int, err error) {
	p, err = numtheory.RandomPrime(lo, hi)
	if err != nil {
		return nil, nil, fmt.Errorf("rsakit: %w", err)
	}
	for {
		q, err = numtheory.RandomPrime(lo, hi)
		if err != nil {
			return nil, nil, fmt.Errorf("rsakit: %w", err)
		}
		if q.Cmp(p) != 0 {
			return p, q, nil
		}
	}
}

func assembleKey(e, p, q *big.Int) (*PrivateKey, error) {
	phi := phiOf(p, q)
	d := new(big.Int).ModInverse(e, phi)
	if d == nil {
		return nil, fmt.Errorf("rsakit: exponent %s not invertible modulo phi", e)
	}
	return &PrivateKey{
		PublicKey: PublicKey{E: new(big.Int).Set(e), N: new(big.Int).Mul(p, q)},
		D:         d,
		P:         p,
		Q:         q,
	}, nil
}

// randomInRange draws a uniform integer in [lo, hi).
func randomInRange(lo, hi *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(hi, lo)
	r, err := rand.Int(rand.Reader, span)
	if err != nil {
		return nil, fmt.Errorf("rsakit: draw random integer: %w", err)
	}
	return r.Add(r, lo), nil
}

func phiOf(p, q *big.Int) *big.Int {
	one := big.NewInt(1)
	return new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))
}
