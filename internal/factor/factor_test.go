// SPDX-License-Identifier: MIT

package factor

import (
	"context"
	"errors"
	"math/big"
	"testing"
)

func checkFactors(t *testing.T, p, q *big.Int, err error, wantP, wantQ int64) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Int64() != wantP || q.Int64() != wantQ {
		t.Errorf("factors = (%s, %s), want (%d, %d)", p, q, wantP, wantQ)
	}
}

func TestFermat(t *testing.T) {
	ctx := context.Background()

	t.Run("odd semiprime", func(t *testing.T) {
		p, q, err := Fermat(ctx, big.NewInt(5959))
		checkFactors(t, p, q, err, 59, 101)
	})

	t.Run("close primes split immediately", func(t *testing.T) {
		p, q, err := Fermat(ctx, big.NewInt(10403))
		checkFactors(t, p, q, err, 101, 103)
	})

	t.Run("perfect square", func(t *testing.T) {
		p, q, err := Fermat(ctx, big.NewInt(169))
		checkFactors(t, p, q, err, 13, 13)
	})

	t.Run("even input", func(t *testing.T) {
		if _, _, err := Fermat(ctx, big.NewInt(100)); !errors.Is(err, ErrNotOdd) {
			t.Errorf("err = %v, want ErrNotOdd", err)
		}
	})

	t.Run("one", func(t *testing.T) {
		if _, _, err := Fermat(ctx, big.NewInt(1)); !errors.Is(err, ErrNotOdd) {
			t.Errorf("err = %v, want ErrNotOdd", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, _, err := Fermat(cancelled, big.NewInt(5959)); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestRho(t *testing.T) {
	ctx := context.Background()

	t.Run("classic example", func(t *testing.T) {
		p, q, err := Rho(ctx, big.NewInt(8051))
		checkFactors(t, p, q, err, 83, 97)
	})

	t.Run("larger semiprime", func(t *testing.T) {
		// 1000003 * 1000033
		n := new(big.Int).Mul(big.NewInt(1000003), big.NewInt(1000033))
		p, q, err := Rho(ctx, n)
		checkFactors(t, p, q, err, 1000003, 1000033)
	})

	t.Run("invalid input", func(t *testing.T) {
		if _, _, err := Rho(ctx, big.NewInt(1)); !errors.Is(err, ErrNoFactor) {
			t.Errorf("err = %v, want ErrNoFactor", err)
		}
	})
}

func TestPMinusOne(t *testing.T) {
	ctx := context.Background()

	t.Run("smooth factor", func(t *testing.T) {
		// 299 = 13 * 23, 13-1 is 5-smooth
		p, q, err := PMinusOne(ctx, big.NewInt(299), 100)
		checkFactors(t, p, q, err, 13, 23)
	})

	t.Run("default bound", func(t *testing.T) {
		// 1403 = 23 * 61
		p, q, err := PMinusOne(ctx, big.NewInt(1403), 0)
		checkFactors(t, p, q, err, 23, 61)
	})
}

func TestWiener(t *testing.T) {
	// classic small-d key: n = 239 * 379, d = 5
	p, q, err := Wiener(context.Background(), big.NewInt(17993), big.NewInt(90581))
	checkFactors(t, p, q, err, 239, 379)
}

func TestWienerStrongKeyFails(t *testing.T) {
	// n = 61 * 53 with e = 17 has d = 2753, far above the Wiener bound
	_, _, err := Wiener(context.Background(), big.NewInt(17), big.NewInt(3233))
	if !errors.Is(err, ErrNoFactor) {
		t.Errorf("err = %v, want ErrNoFactor", err)
	}
}

func TestKnownKey(t *testing.T) {
	// n = 61 * 53, e = 17, d = 17^-1 mod 3120
	p, q, err := KnownKey(context.Background(), big.NewInt(2753), big.NewInt(17), big.NewInt(3233))
	checkFactors(t, p, q, err, 53, 61)
}

func TestQuadraticRoots(t *testing.T) {
	p, q, ok := quadraticRoots(big.NewInt(618), big.NewInt(90581))
	if !ok {
		t.Fatal("expected roots")
	}
	if p.Int64() != 379 || q.Int64() != 239 {
		// root order depends on the sign convention
		if p.Int64() != 239 || q.Int64() != 379 {
			t.Errorf("roots = (%s, %s), want 239 and 379", p, q)
		}
	}
}
