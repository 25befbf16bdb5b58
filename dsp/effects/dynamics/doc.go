// Package dynamics provides the feed-forward compressor used by the
// mastering chain.
//
// The Compressor evaluates a soft-knee static curve in dB and smooths the
// resulting gain reduction with separate attack and release one-pole
// coefficients. It can run per channel (ProcessSample) or stereo-linked
// (ProcessLinked), where the louder channel drives a single envelope so
// both channels are attenuated identically.
//
// Building with the fastmath tag routes the dB conversions through
// github.com/meko-christian/algo-approx.
package dynamics
