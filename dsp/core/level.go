// Package core holds the level conversions and numeric guards shared by
// the DSP and measurement packages.
package core

import "math"

// SilenceFloorDB is the level reported for silent signals on the dBFS
// amplitude scale.
const SilenceFloorDB = -96.0

// Clamp limits value to the inclusive range [lo, hi]. Swapped bounds are
// reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return math.Min(math.Max(value, lo), hi)
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LinearToDBFloor converts a non-negative amplitude to dB (20*log10) and
// clamps the result to floor. Zero, negative and non-finite input yield
// floor, so the result is always finite.
func LinearToDBFloor(linear, floor float64) float64 {
	if !(linear > 0) || math.IsInf(linear, 0) {
		return floor
	}

	return math.Max(20*math.Log10(linear), floor)
}

// PowerToDBFloor is the power (10*log10) counterpart of LinearToDBFloor.
func PowerToDBFloor(power, floor float64) float64 {
	if !(power > 0) || math.IsInf(power, 0) {
		return floor
	}

	return math.Max(10*math.Log10(power), floor)
}

// DBPowerToLinear converts dB to linear power (10*log10 convention).
func DBPowerToLinear(db float64) float64 {
	return math.Pow(10, db/10)
}
