// Package interp provides fractional-sample interpolation primitives.
//
// The loudness analyzer uses them to reconstruct inter-sample peaks when it
// oversamples a channel for true-peak estimation:
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (default)
package interp
