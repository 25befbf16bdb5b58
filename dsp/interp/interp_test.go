package interp

import (
	"math"
	"testing"
)

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0
	for _, tc := range []struct {
		t float64
		w float64
	}{
		{t: 0.0, w: 0.0},
		{t: 0.25, w: 0.25},
		{t: 0.5, w: 0.5},
		{t: 1.0, w: 1.0},
	} {
		got := Hermite4(tc.t, xm1, x0, x1, x2)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", tc.t, got, tc.w)
		}
	}
}

func TestModeAt(t *testing.T) {
	if got := ModeLinear.At(0.25, 100, 2, 4, 100); got != 2.5 {
		t.Fatalf("linear got %v want 2.5", got)
	}

	got := ModeHermite.At(0.5, 0, 1, 2, 3)
	if diff := got - 1.5; diff < -1e-12 || diff > 1e-12 {
		t.Fatalf("hermite got %v want 1.5", got)
	}

	if Mode(7).Valid() {
		t.Fatal("Mode(7) should be invalid")
	}

	if ModeLinear.String() != "linear" || ModeHermite.String() != "hermite" {
		t.Fatal("unexpected mode names")
	}
}

func TestOversampledPeakNeverBelowSamplePeak(t *testing.T) {
	x := []float64{0.1, -0.7, 0.3, 0.65, -0.2}

	for _, mode := range []Mode{ModeLinear, ModeHermite} {
		for _, factor := range []int{0, 1, 2, 4, 8} {
			if got := OversampledPeak(x, factor, mode); got < 0.7 {
				t.Fatalf("%v x%d: peak %v below sample peak 0.7", mode, factor, got)
			}
		}
	}
}

func TestOversampledPeakFindsInterSamplePeak(t *testing.T) {
	// fs/4 sine sampled at 45 degrees: every sample is ±sin(pi/4).
	x := make([]float64, 64)
	for i := range x {
		x[i] = math.Sin(math.Pi/2*float64(i) + math.Pi/4)
	}

	samplePeak := math.Sqrt2 / 2

	got := OversampledPeak(x, 4, ModeHermite)
	if got <= samplePeak+0.05 {
		t.Fatalf("hermite peak %v, want clearly above %v", got, samplePeak)
	}

	if got > 1.1 {
		t.Fatalf("hermite peak %v overshoots", got)
	}

	// Linear interpolation never exceeds the sample peak.
	if lin := OversampledPeak(x, 4, ModeLinear); math.Abs(lin-samplePeak) > 1e-12 {
		t.Fatalf("linear peak %v, want %v", lin, samplePeak)
	}
}

func TestOversampledPeakEmpty(t *testing.T) {
	if got := OversampledPeak(nil, 4, ModeHermite); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
}
