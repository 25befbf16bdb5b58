// Package design provides RBJ cookbook biquad coefficient designers.
//
// The functions in this package produce [biquad.Coefficients] for the
// mastering EQ stages (peaking and shelving bands) and for the loudness
// K-weighting pre-filter (high shelf plus high-pass).
//
// Designers never fail: a frequency outside (0, sampleRate/2) yields zero
// coefficients, and a gain of exactly 0 dB yields [biquad.Identity] so a
// flat band is a bit-exact no-op. Callers that need an error for invalid
// frequencies check [ValidFrequency] first.
package design
