// Package testutil holds deterministic signal generators and assertion
// helpers shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Bursts generates a quiet sine carrier with short loud bursts every period
// samples, each burst lasting burstLen samples. It models a signal with
// transient peaks well above its RMS level.
func Bursts(freqHz, sampleRate, quiet, loud float64, period, burstLen, length int) []float64 {
	out := DeterministicSine(freqHz, sampleRate, 1, length)
	for i := range out {
		amp := quiet
		if period > 0 && i%period < burstLen {
			amp = loud
		}
		out[i] *= amp
	}
	return out
}
