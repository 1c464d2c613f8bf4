package model

import "math"

// Quantize rounds a monetary amount to two fractional digits, half to even.
// Every value that reaches persistence goes through this.
func Quantize(amount float64) float64 {
	return math.RoundToEven(amount*100) / 100
}

// IsFinite reports whether an amount is a usable monetary value.
func IsFinite(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}
