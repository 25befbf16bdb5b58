// Package window generates the cosine-sum analysis windows used by the
// spectrum analyzer.
package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop

	typeCount
)

type shape struct {
	name string
	// terms are the signed cosine-sum coefficients:
	// w(x) = sum_k terms[k] * cos(2*pi*k*x).
	terms []float64
}

var shapes = [typeCount]shape{
	TypeRectangular:         {"rectangular", []float64{1}},
	TypeHann:                {"hann", []float64{0.5, -0.5}},
	TypeHamming:             {"hamming", []float64{0.54, -0.46}},
	TypeBlackman:            {"blackman", []float64{0.42, -0.5, 0.08}},
	TypeBlackmanHarris4Term: {"blackman-harris", []float64{0.35875, -0.48829, 0.14128, -0.01168}},
	TypeFlatTop:             {"flattop", []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}},
}

// String returns the window name accepted by ParseType.
func (t Type) String() string {
	if t.Valid() {
		return shapes[t].name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known window.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType resolves a window name case-insensitively.
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)

	for t, s := range shapes {
		if strings.EqualFold(s.name, name) {
			return Type(t), nil
		}
	}

	return 0, fmt.Errorf("window: unknown type %q", name)
}

// Names lists every window name in Type order.
func Names() []string {
	out := make([]string, typeCount)
	for t, s := range shapes {
		out[t] = s.name
	}

	return out
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic generates the periodic form used for FFT framing instead of
// the symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns length window coefficients. Unknown types fall back to
// rectangular; a non-positive length returns nil.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if !t.Valid() {
		t = TypeRectangular
	}

	den := float64(length - 1)
	if cfg.periodic || length == 1 {
		den = float64(length)
	}

	terms := shapes[t].terms
	out := make([]float64, length)

	for i := range out {
		phase := 2 * math.Pi * float64(i) / den

		sum := 0.0
		for k, c := range terms {
			sum += c * math.Cos(float64(k)*phase)
		}

		out[i] = sum
	}

	return out
}

// EquivalentNoiseBandwidth returns N * sum(w^2) / sum(w)^2 in bins, or 0
// when the coefficients sum to zero.
func EquivalentNoiseBandwidth(coeffs []float64) float64 {
	sum := vecmath.Sum(coeffs)
	if sum == 0 {
		return 0
	}

	return float64(len(coeffs)) * vecmath.DotProduct(coeffs, coeffs) / (sum * sum)
}
