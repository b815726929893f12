// Package money provides exact two-decimal currency arithmetic.
//
// Every monetary value stored or compared in the ledger goes through
// Round2; splitting math runs on integer cents so a split always sums
// back to the original total with no drift.
package money

import "math"

// epsilon nudges values off the binary representation boundary so that
// amounts like 2.675 (stored as 2.67499...) round half-up as expected.
const epsilon = 1e-9

// Round2 rounds to the nearest cent, half away from zero.
func Round2(x float64) float64 {
	if x < 0 {
		return -Round2(-x)
	}
	return math.Floor((x+epsilon)*100+0.5) / 100
}

// ToCents converts a decimal amount to integer cents.
func ToCents(x float64) int64 {
	return int64(math.Round(Round2(x) * 100))
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(n int64) float64 {
	return float64(n) / 100
}

// Sum adds the given amounts and rounds the result to cents.
func Sum(xs ...float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return Round2(total)
}
