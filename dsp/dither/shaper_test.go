package dither

import (
	"math"
	"testing"
)

func TestShelfShaperValidation(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		sr   float64
	}{
		{"zero freq", 0, 44100},
		{"negative freq", -100, 44100},
		{"above nyquist", 30000, 44100},
		{"zero sr", 10000, 0},
		{"NaN freq", math.NaN(), 44100},
		{"Inf sr", 10000, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShelfShaper(tt.freq, tt.sr)
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestShelfShaperFeedback(t *testing.T) {
	shaper, err := NewShelfShaper(10000, 44100)
	if err != nil {
		t.Fatal(err)
	}

	var _ NoiseShaper = shaper

	if got := shaper.Shape(1.0); got != 1.0 {
		t.Errorf("first sample: got %v, want 1.0", got)
	}

	shaper.RecordError(0.5)

	if got := shaper.Shape(1.0); got == 1.0 {
		t.Error("shaper should modify input when error is non-zero")
	}

	shaper.Reset()

	if got := shaper.Shape(0); got != 0 {
		t.Errorf("after reset: Shape(0) = %v, want 0", got)
	}
}

func TestShelfShaperStability(t *testing.T) {
	shaper, err := NewShelfShaper(10000, 44100)
	if err != nil {
		t.Fatal(err)
	}

	for idx := range 10000 {
		val := shaper.Shape(0.5)
		shaper.RecordError(0.1 * float64(idx%10-5))

		if math.IsNaN(val) || math.IsInf(val, 0) || math.Abs(val) > 10 {
			t.Fatalf("sample %d: got %v", idx, val)
		}
	}
}
