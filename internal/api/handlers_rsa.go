// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/kryptoslab/kryptos/internal/factor"
	"github.com/kryptoslab/kryptos/internal/metrics"
	"github.com/kryptoslab/kryptos/internal/rsakit"
	"github.com/kryptoslab/kryptos/internal/telemetry"
)

// maxPrimeBits caps key generation. The keys are deliberately toy sized;
// anything bigger only burns CPU in the prime search.
const maxPrimeBits = 512

const defaultPrimeBits = 128

type rsaKeysRequest struct {
	PrimeBits int    `json:"prime_bits,omitempty"`
	E         int64  `json:"e,omitempty"`
	WeakMode  string `json:"weak_mode,omitempty"`
}

type rsaKeyResponse struct {
	N string `json:"n"`
	E string `json:"e"`
	D string `json:"d,omitempty"`
	P string `json:"p"`
	Q string `json:"q"`
}

func (s *Server) handleRSAKeys(w http.ResponseWriter, r *http.Request) {
	var req rsaKeysRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	bits := req.PrimeBits
	if bits == 0 {
		bits = defaultPrimeBits
	}
	if bits < rsakit.MinPrimeBits || bits > maxPrimeBits {
		writeBadRequest(w, fmt.Sprintf("prime_bits must be between %d and %d", rsakit.MinPrimeBits, maxPrimeBits))
		return
	}

	var (
		key *rsakit.PrivateKey
		err error
	)
	if req.WeakMode != "" {
		key, err = rsakit.GenerateWeakKey(rsakit.WeakMode(req.WeakMode), bits)
	} else {
		key, err = rsakit.GenerateKey(bits, req.E)
	}
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp := rsaKeyResponse{
		N: key.N.Text(16),
		E: key.E.Text(16),
		P: key.P.Text(16),
		Q: key.Q.Text(16),
	}
	if key.D != nil {
		resp.D = key.D.Text(16)
	}
	writeJSON(w, http.StatusOK, resp)
}

type rsaFactorRequest struct {
	N      string `json:"n"`
	E      string `json:"e,omitempty"`
	D      string `json:"d,omitempty"`
	Method string `json:"method,omitempty"`
	Bound  int64  `json:"bound,omitempty"`
}

type rsaFactorResponse struct {
	Method     string `json:"method"`
	P          string `json:"p"`
	Q          string `json:"q"`
	DurationMS int64  `json:"duration_ms"`
}

func (s *Server) handleRSAFactor(w http.ResponseWriter, r *http.Request) {
	var req rsaFactorRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.N == "" {
		writeBadRequest(w, "n is required")
		return
	}
	n, err := rsakit.ParseHexModulus(req.N)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var e, d *big.Int
	if req.E != "" {
		if e, err = rsakit.ParseHexModulus(req.E); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}
	if req.D != "" {
		if d, err = rsakit.ParseHexModulus(req.D); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}

	method := req.Method
	if method == "" {
		method = "auto"
	}
	bound := req.Bound
	if bound <= 0 {
		bound = factor.DefaultPMinusOneBound
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Jobs.Timeout)
	defer cancel()

	ctx, span := telemetry.Tracer("kryptos/api").Start(ctx, "rsa.factor")
	defer span.End()

	start := time.Now()
	p, q, usedMethod, err := runFactor(ctx, method, n, e, d, bound)
	duration := time.Since(start)
	span.SetAttributes(telemetry.FactorAttributes(usedMethod, n.BitLen())...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.IncFactor(method, false)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "factorization timed out")
		case errors.Is(err, factor.ErrNoFactor):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeBadRequest(w, err.Error())
		}
		return
	}
	metrics.IncFactor(usedMethod, true)

	writeJSON(w, http.StatusOK, rsaFactorResponse{
		Method:     usedMethod,
		P:          p.Text(16),
		Q:          q.Text(16),
		DurationMS: duration.Milliseconds(),
	})
}

// runFactor dispatches to the requested attack. "auto" walks the cheap
// attacks in order and reports which one succeeded.
func runFactor(ctx context.Context, method string, n, e, d *big.Int, bound int64) (*big.Int, *big.Int, string, error) {
	switch method {
	case "fermat":
		p, q, err := factor.Fermat(ctx, n)
		return p, q, method, err
	case "rho":
		p, q, err := factor.Rho(ctx, n)
		return p, q, method, err
	case "p-1":
		p, q, err := factor.PMinusOne(ctx, n, bound)
		return p, q, method, err
	case "wiener":
		if e == nil {
			return nil, nil, method, errors.New("wiener attack requires e")
		}
		p, q, err := factor.Wiener(ctx, e, n)
		return p, q, method, err
	case "known-key":
		if e == nil || d == nil {
			return nil, nil, method, errors.New("known-key recovery requires e and d")
		}
		p, q, err := factor.KnownKey(ctx, d, e, n)
		return p, q, method, err
	case "auto":
		if e != nil && d != nil {
			if p, q, err := factor.KnownKey(ctx, d, e, n); err == nil {
				return p, q, "known-key", nil
			} else if ctx.Err() != nil {
				return nil, nil, "known-key", err
			}
		}
		if e != nil {
			if p, q, err := factor.Wiener(ctx, e, n); err == nil {
				return p, q, "wiener", nil
			} else if ctx.Err() != nil {
				return nil, nil, "wiener", err
			}
		}
		if p, q, err := factor.Fermat(ctx, n); err == nil {
			return p, q, "fermat", nil
		} else if ctx.Err() != nil {
			return nil, nil, "fermat", err
		}
		if p, q, err := factor.Rho(ctx, n); err == nil {
			return p, q, "rho", nil
		} else if ctx.Err() != nil {
			return nil, nil, "rho", err
		}
		p, q, err := factor.PMinusOne(ctx, n, bound)
		return p, q, "p-1", err
	default:
		return nil, nil, method, fmt.Errorf("unknown method %q (supported: auto, fermat, rho, p-1, wiener, known-key)", method)
	}
}
