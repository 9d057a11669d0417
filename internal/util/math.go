package util

import "math"

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Normalize maps x from [lo, hi] onto [0, 1], clamping outside values.
// An empty domain yields 0.
func Normalize(x, lo, hi float64) float64 {
	if hi <= lo || math.IsNaN(x) {
		return 0
	}
	return Clamp((x-lo)/(hi-lo), 0, 1)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// SafeDiv returns a/b, or 0 when b is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
