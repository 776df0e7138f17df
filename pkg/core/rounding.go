package core

import "math"

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// RoundSig rounds a float to sig significant figures, halves away from zero.
// Zero, NaN and infinities are returned unchanged.
func RoundSig(val float64, sig int) float64 {
	if val == 0 || math.IsNaN(val) || math.IsInf(val, 0) || sig <= 0 {
		return val
	}
	exp := sig - 1 - int(math.Floor(math.Log10(math.Abs(val))))
	if exp >= 0 {
		ratio := math.Pow(10, float64(exp))
		return math.Round(val*ratio) / ratio
	}
	ratio := math.Pow(10, float64(-exp))
	return math.Round(val/ratio) * ratio
}
