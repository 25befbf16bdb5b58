// Package biquad provides the second-order IIR runtime used by the mastering
// EQ stages and the loudness K-weighting filters.
//
// A [Section] implements Direct Form II Transposed processing for one set of
// [Coefficients]. Its two delay-line values are the only recursion state and
// are exposed through [Section.State] so renders can be inspected and
// compared.
//
// Coefficient design (shelves, peaking, high-pass) lives in dsp/filter/design.
package biquad
