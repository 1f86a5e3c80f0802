// SPDX-License-Identifier: MIT

// Package polynomial provides the small polynomial arithmetic used by the
// number-theory utilities. Coefficients are given in descending order of
// degree.
package polynomial

import "errors"

// ErrNoCoefficients is returned when an operation receives an empty
// coefficient list.
var ErrNoCoefficients = errors.New("polynomial: no coefficients")

// Eval evaluates the polynomial at x using Horner's method.
func Eval(coefficients []float64, x float64) (float64, error) {
	if len(coefficients) == 0 {
		return 0, ErrNoCoefficients
	}
	result := 0.0
	for _, c := range coefficients {
		result = result*x + c
	}
	return result, nil
}

// Divide performs synthetic division of the polynomial by (x - root). It
// returns the quotient coefficients, one degree lower than the input, and
// the remainder. By the remainder theorem the remainder equals the
// polynomial evaluated at root.
func Divide(coefficients []float64, root float64) (quotient []float64, remainder float64, err error) {
	if len(coefficients) == 0 {
		return nil, 0, ErrNoCoefficients
	}
	quotient = make([]float64, 0, len(coefficients)-1)
	carry := coefficients[0]
	for _, c := range coefficients[1:] {
		quotient = append(quotient, carry)
		carry = carry*root + c
	}
	return quotient, carry, nil
}
