// SPDX-License-Identifier: MIT

// Package numtheory provides the integer arithmetic the cipher and
// factorization packages are built on: gcd, modular inverses, modular
// exponentiation and integer roots.
package numtheory

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNoInverse is returned when a modular inverse does not exist.
var ErrNoInverse = errors.New("numtheory: no modular inverse exists")

// GCD returns the greatest common divisor of a and b. The result is always
// non-negative; GCD(0, 0) is 0.
func GCD(a, b int) int {
	a, b = Abs(a), Abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ExtendedGCD returns g = gcd(a, b) along with x, y such that a*x + b*y = g.
func ExtendedGCD(a, b int) (g, x, y int) {
	x0, x1 := 1, 0
	y0, y1 := 0, 1
	for b != 0 {
		q := a / b
		a, b = b, a-q*b
		x0, x1 = x1, x0-q*x1
		y0, y1 = y1, y0-q*y1
	}
	return a, x0, y0
}

// ModInverse returns the multiplicative inverse of a modulo m in [0, m).
// It fails unless gcd(a, m) == 1.
func ModInverse(a, m int) (int, error) {
	if m <= 1 {
		return 0, fmt.Errorf("%w: modulus %d", ErrNoInverse, m)
	}
	g, x, _ := ExtendedGCD(((a%m)+m)%m, m)
	if g != 1 {
		return 0, fmt.Errorf("%w: %d mod %d", ErrNoInverse, a, m)
	}
	return ((x % m) + m) % m, nil
}

// Abs returns the absolute value of n.
func Abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// PowMod computes base^exp mod m by repeated squaring. exp must be
// non-negative and m positive.
func PowMod(base, exp, m *big.Int) *big.Int {
	result := big.NewInt(1)
	b := new(big.Int).Mod(base, m)
	e := new(big.Int).Set(exp)
	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			result.Mul(result, b).Mod(result, m)
		}
		b.Mul(b, b).Mod(b, m)
		e.Rsh(e, 1)
	}
	return result
}

// IntegerSqrt returns the floor of the square root of n. n must be
// non-negative.
func IntegerSqrt(n *big.Int) *big.Int {
	return new(big.Int).Sqrt(n)
}

// IsSquare reports whether n is a perfect square.
func IsSquare(n *big.Int) bool {
	if n.Sign() < 0 {
		return false
	}
	r := new(big.Int).Sqrt(n)
	return new(big.Int).Mul(r, r).Cmp(n) == 0
}

// IntegerNthRoot returns the floor of the k-th root of n for k >= 1 and
// non-negative n, found by binary search.
func IntegerNthRoot(n *big.Int, k int) (*big.Int, error) {
	if k < 1 {
		return nil, fmt.Errorf("numtheory: root order %d out of range", k)
	}
	if n.Sign() < 0 {
		return nil, errors.New("numtheory: negative radicand")
	}
	if k == 1 || n.Sign() == 0 {
		return new(big.Int).Set(n), nil
	}
	bigK := big.NewInt(int64(k))
	lo := big.NewInt(0)
	hi := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/k+1))
	for lo.Cmp(hi) < 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Add(mid, big.NewInt(1)).Rsh(mid, 1)
		if new(big.Int).Exp(mid, bigK, nil).Cmp(n) <= 0 {
			lo = mid
		} else {
			hi = new(big.Int).Sub(mid, big.NewInt(1))
		}
	}
	return lo, nil
}

// ContinuedFraction returns the continued-fraction expansion of num/den.
func ContinuedFraction(num, den *big.Int) []*big.Int {
	var terms []*big.Int
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	for d.Sign() != 0 {
		q, r := new(big.Int).QuoRem(n, d, new(big.Int))
		terms = append(terms, q)
		n, d = d, r
	}
	return terms
}

// Convergent is a rational approximation drawn from a continued fraction.
type Convergent struct {
	Num *big.Int
	Den *big.Int
}

// Convergents returns the successive convergents of a continued-fraction
// expansion, in order of increasing accuracy.
func Convergents(terms []*big.Int) []Convergent {
	convergents := make([]Convergent, 0, len(terms))
	pPrev, p := big.NewInt(0), big.NewInt(1)
	qPrev, q := big.NewInt(1), big.NewInt(0)
	for _, t := range terms {
		pNext := new(big.Int).Mul(t, p)
		pNext.Add(pNext, pPrev)
		qNext := new(big.Int).Mul(t, q)
		qNext.Add(qNext, qPrev)
		pPrev, p = p, pNext
		qPrev, q = q, qNext
		convergents = append(convergents, Convergent{Num: new(big.Int).Set(p), Den: new(big.Int).Set(q)})
	}
	return convergents
}
