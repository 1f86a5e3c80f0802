// SPDX-License-Identifier: MIT

// kryptosctl is the offline companion to kryptosd: it exposes the cipher,
// analysis, cryptanalysis and toy RSA operations on the command line without
// needing a running daemon.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kryptoslab/kryptos/internal/analysis"
	"github.com/kryptoslab/kryptos/internal/cipher"
	"github.com/kryptoslab/kryptos/internal/crack"
	"github.com/kryptoslab/kryptos/internal/factor"
	"github.com/kryptoslab/kryptos/internal/jobs"
	"github.com/kryptoslab/kryptos/internal/rsakit"
	"github.com/kryptoslab/kryptos/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "encrypt":
		return runCipherOp(args[1:], false)
	case "decrypt":
		return runCipherOp(args[1:], true)
	case "analyze":
		return runAnalyze(args[1:])
	case "crack":
		return runCrack(ctx, args[1:])
	case "rsa-keygen":
		return runRSAKeygen(args[1:])
	case "rsa-factor":
		return runRSAFactor(ctx, args[1:])
	case "version":
		fmt.Println(version.Version)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: kryptosctl <command> [flags]

commands:
  encrypt     encrypt text with a classical cipher
  decrypt     decrypt text with a classical cipher
  analyze     classify a ciphertext and report its statistics
  crack       run a ciphertext-only attack
  rsa-keygen  generate a toy RSA key (optionally deliberately weak)
  rsa-factor  factor an RSA modulus
  version     print version and exit

input is read from --in FILE, or stdin when the flag is omitted`)
}

// readText reads the operation input from the named file or stdin.
func readText(path string) (string, error) {
	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "kryptosctl: %v\n", err)
	return 1
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fail(err)
	}
	return 0
}

// cipherFlags declares the key material flags shared by encrypt and decrypt.
func cipherFlags(fs *flag.FlagSet, spec *cipher.Spec) {
	fs.StringVar(&spec.Name, "cipher", "caesar", "cipher name (see kryptosd /api/v1/ciphers)")
	fs.IntVar(&spec.Shift, "shift", 0, "caesar or keyed-caesar shift")
	fs.IntVar(&spec.Factor, "factor", 0, "affine multiplier")
	fs.IntVar(&spec.Addend, "addend", 0, "affine addend")
	fs.StringVar(&spec.Key, "key", "", "keyword or key string")
	fs.StringVar(&spec.SecondKey, "second-key", "", "second keyword (double-columnar, adfgx)")
	fs.IntVar(&spec.Rails, "rails", 0, "rail fence rail count")
	fs.IntVar(&spec.BlockSize, "block-size", 0, "hill block size")
}

func parseColumns(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	cols := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid column %q", p)
		}
		cols = append(cols, v)
	}
	return cols, nil
}

func runCipherOp(args []string, decrypt bool) int {
	name := "encrypt"
	if decrypt {
		name = "decrypt"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var spec cipher.Spec
	cipherFlags(fs, &spec)
	in := fs.String("in", "", "input file (default stdin)")
	columns := fs.String("columns", "", "columnar numeric key, comma separated")
	_ = fs.Parse(args)

	cols, err := parseColumns(*columns)
	if err != nil {
		return fail(err)
	}
	spec.Columns = cols

	text, err := readText(*in)
	if err != nil {
		return fail(err)
	}

	c, err := cipher.New(spec)
	if err != nil {
		return fail(err)
	}

	var result string
	if decrypt {
		result, err = c.Decrypt(text)
	} else {
		result, err = c.Encrypt(text)
	}
	if err != nil {
		return fail(err)
	}

	fmt.Println(result)
	return 0
}

func runAnalyze(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	in := fs.String("in", "", "input file (default stdin)")
	maxKeyLength := fs.Int("max-key-length", crack.DefaultMaxKeyLength, "longest period to test")
	_ = fs.Parse(args)

	text, err := readText(*in)
	if err != nil {
		return fail(err)
	}

	id := analysis.Identify(text)
	out := struct {
		Identification analysis.Identification       `json:"identification"`
		KeyLengths     []analysis.KeyLengthCandidate `json:"key_lengths,omitempty"`
	}{Identification: id}
	if id.Class == analysis.ClassPolyalphabetic {
		out.KeyLengths = analysis.EstimateKeyLengths(text, *maxKeyLength)
	}
	return printJSON(out)
}

func runCrack(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("crack", flag.ExitOnError)
	in := fs.String("in", "", "input file (default stdin)")
	cipherName := fs.String("cipher", "auto", "breaker to run: "+strings.Join(jobs.Ciphers(), ", "))
	top := fs.Int("top", 5, "number of candidates to print")
	timeout := fs.Duration("timeout", 5*time.Minute, "attack time budget")
	_ = fs.Parse(args)

	text, err := readText(*in)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	candidates, err := jobs.RunBreaker(ctx, *cipherName, text)
	if err != nil {
		return fail(err)
	}
	if *top > 0 && len(candidates) > *top {
		candidates = candidates[:*top]
	}
	return printJSON(candidates)
}

func runRSAKeygen(args []string) int {
	fs := flag.NewFlagSet("rsa-keygen", flag.ExitOnError)
	bits := fs.Int("bits", 128, "prime size in bits")
	e := fs.Int64("e", 0, "public exponent (default 65537)")
	weak := fs.String("weak", "", "weak mode: close-primes, small-d or weak-modulus")
	_ = fs.Parse(args)

	var (
		key *rsakit.PrivateKey
		err error
	)
	if *weak != "" {
		key, err = rsakit.GenerateWeakKey(rsakit.WeakMode(*weak), *bits)
	} else {
		key, err = rsakit.GenerateKey(*bits, *e)
	}
	if err != nil {
		return fail(err)
	}

	out := map[string]string{
		"n": key.N.Text(16),
		"e": key.E.Text(16),
		"p": key.P.Text(16),
		"q": key.Q.Text(16),
	}
	if key.D != nil {
		out["d"] = key.D.Text(16)
	}
	return printJSON(out)
}

func runRSAFactor(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("rsa-factor", flag.ExitOnError)
	nHex := fs.String("n", "", "modulus, hex")
	eHex := fs.String("e", "", "public exponent, hex (wiener)")
	dHex := fs.String("d", "", "private exponent, hex (known-key)")
	method := fs.String("method", "fermat", "attack: fermat, rho, p-1, wiener or known-key")
	bound := fs.Int64("bound", factor.DefaultPMinusOneBound, "p-1 smoothness bound")
	timeout := fs.Duration("timeout", 5*time.Minute, "attack time budget")
	_ = fs.Parse(args)

	if *nHex == "" {
		return fail(fmt.Errorf("-n is required"))
	}
	n, err := rsakit.ParseHexModulus(*nHex)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	start := time.Now()
	var p, q *big.Int
	switch *method {
	case "fermat":
		p, q, err = factor.Fermat(ctx, n)
	case "rho":
		p, q, err = factor.Rho(ctx, n)
	case "p-1":
		p, q, err = factor.PMinusOne(ctx, n, *bound)
	case "wiener":
		e, perr := rsakit.ParseHexModulus(*eHex)
		if perr != nil {
			return fail(fmt.Errorf("wiener requires -e: %w", perr))
		}
		p, q, err = factor.Wiener(ctx, e, n)
	case "known-key":
		e, perr := rsakit.ParseHexModulus(*eHex)
		if perr != nil {
			return fail(fmt.Errorf("known-key requires -e: %w", perr))
		}
		d, perr := rsakit.ParseHexModulus(*dHex)
		if perr != nil {
			return fail(fmt.Errorf("known-key requires -d: %w", perr))
		}
		p, q, err = factor.KnownKey(ctx, d, e, n)
	default:
		return fail(fmt.Errorf("unknown method %q", *method))
	}
	if err != nil {
		return fail(err)
	}

	return printJSON(map[string]any{
		"method":      *method,
		"p":           p.Text(16),
		"q":           q.Text(16),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
