// SPDX-License-Identifier: MIT

// Package factor implements the classical integer-factorization attacks the
// rsakit weak keys are vulnerable to: Fermat's difference of squares,
// Pollard's rho and p-1, the Wiener continued-fraction attack and recovery
// from a known decryption exponent. Every method honours context
// cancellation and returns ErrNoFactor when its bounds run out.
package factor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/kryptoslab/kryptos/internal/numtheory"
)

var (
	// ErrNoFactor is returned when a method exhausts its bounds without
	// finding a nontrivial factor.
	ErrNoFactor = errors.New("factor: no nontrivial factor found")

	// ErrNotOdd is returned by Fermat for even or out-of-range input.
	ErrNotOdd = errors.New("factor: n must be an odd number greater than 1")
)

const (
	// DefaultFermatIterations bounds the Fermat search.
	DefaultFermatIterations = 1 << 22

	// DefaultRhoIterations bounds the Pollard rho walk.
	DefaultRhoIterations = 1 << 20

	// DefaultPMinusOneBound is the exponent bound for Pollard's p-1.
	DefaultPMinusOneBound = 1_000_000

	cancelCheckInterval = 1 << 10
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// ordered returns the factor pair with p <= q.
func ordered(p, q *big.Int) (*big.Int, *big.Int) {
	if p.Cmp(q) > 0 {
		return q, p
	}
	return p, q
}

// Fermat factors an odd n as a difference of squares: if n = a^2 - b^2 then
// n = (a-b)(a+b). A perfect square short-circuits to its double root. The
// search works outward from sqrt(n), so it finds close factor pairs fast.
func Fermat(ctx context.Context, n *big.Int) (*big.Int, *big.Int, error) {
	if n.Cmp(one) <= 0 || n.Bit(0) == 0 {
		return nil, nil, ErrNotOdd
	}
	if numtheory.IsSquare(n) {
		root := numtheory.IntegerSqrt(n)
		return root, new(big.Int).Set(root), nil
	}
	a := numtheory.IntegerSqrt(new(big.Int).Sub(n, one))
	a.Add(a, one)
	bSquared := new(big.Int)
	for i := 0; i < DefaultFermatIterations; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		bSquared.Mul(a, a)
		bSquared.Sub(bSquared, n)
		if numtheory.IsSquare(bSquared) {
			b := numtheory.IntegerSqrt(bSquared)
			return orderedPair(new(big.Int).Sub(a, b), new(big.Int).Add(a, b))
		}
		a.Add(a, one)
	}
	return nil, nil, fmt.Errorf("%w: fermat bound %d exhausted", ErrNoFactor, DefaultFermatIterations)
}

func orderedPair(p, q *big.Int) (*big.Int, *big.Int, error) {
	p, q = ordered(p, q)
	return p, q, nil
}

// Rho runs Pollard's rho with the classic x^2+1 walk and Floyd cycle
// detection.
func Rho(ctx context.Context, n *big.Int) (*big.Int, *big.Int, error) {
	if n.Cmp(one) <= 0 {
		return nil, nil, fmt.Errorf("%w: n must be greater than 1", ErrNoFactor)
	}
	x := big.NewInt(1)
	y := big.NewInt(2)
	g := new(big.Int)
	diff := new(big.Int)
	for i := 0; i < DefaultRhoIterations; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		x = rhoStep(x, n)
		y = rhoStep(rhoStep(y, n), n)
		diff.Sub(y, x)
		diff.Abs(diff)
		g.GCD(nil, nil, diff, n)
		if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
			return orderedPair(g, new(big.Int).Quo(n, g))
		}
		if g.Cmp(n) == 0 {
			// degenerate cycle, this walk cannot split n
			break
		}
	}
	return nil, nil, fmt.Errorf("%w: rho walk exhausted", ErrNoFactor)
}

func rhoStep(x, n *big.Int) *big.Int {
	next := new(big.Int).Mul(x, x)
	next.Add(next, one)
	return next.Mod(next, n)
}

// PMinusOne runs Pollard's p-1 with the given smoothness bound
// (DefaultPMinusOneBound when bound is 0). It splits n when some prime
// factor p has p-1 composed of primes below the bound.
func PMinusOne(ctx context.Context, n *big.Int, bound int64) (*big.Int, *big.Int, error) {
	if n.Cmp(one) <= 0 {
		return nil, nil, fmt.Errorf("%w: n must be greater than 1", ErrNoFactor)
	}
	if bound <= 0 {
		bound = DefaultPMinusOneBound
	}
	a := big.NewInt(2)
	g := new(big.Int)
	aMinusOne := new(big.Int)
	exp := new(big.Int)
	for i := int64(2); i <= bound; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		exp.SetInt64(i)
		a = numtheory.PowMod(a, exp, n)
		aMinusOne.Sub(a, one)
		g.GCD(nil, nil, aMinusOne, n)
		if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
			return orderedPair(g, new(big.Int).Quo(n, g))
		}
	}
	return nil, nil, fmt.Errorf("%w: p-1 bound %d exhausted", ErrNoFactor, bound)
}

// Wiener recovers the factors of n from a public key (e, n) whose private
// exponent is small, by testing the convergents of e/n as candidates for
// k/d and solving the resulting quadratic for p and q.
func Wiener(ctx context.Context, e, n *big.Int) (*big.Int, *big.Int, error) {
	convergents := numtheory.Convergents(numtheory.ContinuedFraction(e, n))
	for _, c := range convergents {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		k, d := c.Num, c.Den
		if k.Sign() == 0 {
			continue
		}
		// candidate phi = (e*d - 1) / k must divide exactly
		phi := new(big.Int).Mul(e, d)
		phi.Sub(phi, one)
		if new(big.Int).Mod(phi, k).Sign() != 0 {
			continue
		}
		phi.Quo(phi, k)
		// p and q are roots of x^2 - (n - phi + 1)x + n
		s := new(big.Int).Sub(n, phi)
		s.Add(s, one)
		p, q, ok := quadraticRoots(s, n)
		if !ok {
			continue
		}
		if new(big.Int).Mul(p, q).Cmp(n) == 0 {
			return orderedPair(p, q)
		}
	}
	return nil, nil, fmt.Errorf("%w: no convergent of e/n yields the factorization", ErrNoFactor)
}

// quadraticRoots solves x^2 - sx + product = 0 over the integers.
func quadraticRoots(s, product *big.Int) (*big.Int, *big.Int, bool) {
	disc := new(big.Int).Mul(s, s)
	disc.Sub(disc, new(big.Int).Lsh(product, 2))
	if disc.Sign() < 0 || !numtheory.IsSquare(disc) {
		return nil, nil, false
	}
	root := numtheory.IntegerSqrt(disc)
	sum := new(big.Int).Add(s, root)
	if sum.Bit(0) != 0 {
		return nil, nil, false
	}
	p := new(big.Int).Rsh(sum, 1)
	q := new(big.Int).Sub(s, p)
	if p.Cmp(one) <= 0 || q.Cmp(one) <= 0 {
		return nil, nil, false
	}
	return p, q, true
}

// knownKeyAttempts bounds the random bases KnownKey tries.
const knownKeyAttempts = 64

// KnownKey factors n given a working exponent pair (d, e): d*e - 1 is a
// multiple of the group order, so a random base raised through its odd part
// yields a nontrivial square root of unity with probability at least 1/2.
func KnownKey(ctx context.Context, d, e, n *big.Int) (*big.Int, *big.Int, error) {
	k := new(big.Int).Mul(d, e)
	k.Sub(k, one)
	if k.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: d*e-1 not positive", ErrNoFactor)
	}
	// k = 2^t * r with r odd
	r := new(big.Int).Set(k)
	t := 0
	for r.Bit(0) == 0 {
		r.Rsh(r, 1)
		t++
	}
	g := new(big.Int)
	span := new(big.Int).Sub(n, two)
	for attempt := 0; attempt < knownKeyAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		base, err := rand.Int(rand.Reader, span)
		if err != nil {
			return nil, nil, fmt.Errorf("factor: draw random base: %w", err)
		}
		base.Add(base, two)
		x := numtheory.PowMod(base, r, n)
		for i := 0; i < t; i++ {
			if x.Cmp(one) == 0 {
				break
			}
			next := new(big.Int).Mul(x, x)
			next.Mod(next, n)
			if next.Cmp(one) == 0 {
				// x is a square root of unity; if nontrivial its
				// offset from 1 shares a factor with n
				candidate := new(big.Int).Sub(x, one)
				g.GCD(nil, nil, candidate, n)
				if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
					return orderedPair(g, new(big.Int).Quo(n, g))
				}
				break
			}
			x = next
		}
	}
	return nil, nil, fmt.Errorf("%w: %d bases tried", ErrNoFactor, knownKeyAttempts)
}
