package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-master/dsp/filter/biquad"
)

const sr = 48000.0

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestZeroGainIsIdentity(t *testing.T) {
	tests := []struct {
		name   string
		coeffs biquad.Coefficients
	}{
		{"peak", Peak(1000, 0, 1.4, sr)},
		{"low shelf", LowShelf(120, 0, 0.7, sr)},
		{"high shelf", HighShelf(8000, 0, 0.7, sr)},
		{"low shelf slope", LowShelfSlope(120, 0, DefaultShelfSlope, sr)},
		{"high shelf slope", HighShelfSlope(8000, 0, DefaultShelfSlope, sr)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.coeffs.IsIdentity() {
				t.Fatalf("0 dB design = %+v, want identity", tt.coeffs)
			}
		})
	}
}

func TestPeak_GainAtCenter(t *testing.T) {
	for _, gain := range []float64{-9, -3, 2.5, 6, 12} {
		c := Peak(2500, gain, 1.2, sr)
		if got := c.MagnitudeDB(2500, sr); !almostEqual(got, gain, 1e-6) {
			t.Errorf("gain %v: magnitude at center = %v dB", gain, got)
		}

		if got := c.MagnitudeDB(20, sr); !almostEqual(got, 0, 0.05) {
			t.Errorf("gain %v: magnitude far below center = %v dB, want ~0", gain, got)
		}
	}
}

func TestShelves_AsymptoticGain(t *testing.T) {
	ls := LowShelfSlope(200, 6, DefaultShelfSlope, sr)
	if got := ls.MagnitudeDB(5, sr); !almostEqual(got, 6, 0.05) {
		t.Errorf("low shelf at 5 Hz = %v dB, want ~6", got)
	}
	if got := ls.MagnitudeDB(15000, sr); !almostEqual(got, 0, 0.05) {
		t.Errorf("low shelf at 15 kHz = %v dB, want ~0", got)
	}

	hs := HighShelfSlope(4000, -4, DefaultShelfSlope, sr)
	if got := hs.MagnitudeDB(23000, sr); !almostEqual(got, -4, 0.1) {
		t.Errorf("high shelf near Nyquist = %v dB, want ~-4", got)
	}
	if got := hs.MagnitudeDB(20, sr); !almostEqual(got, 0, 0.05) {
		t.Errorf("high shelf at 20 Hz = %v dB, want ~0", got)
	}
}

func TestShelfSlopeOneMatchesButterworthQ(t *testing.T) {
	slope := HighShelfSlope(1500, 4, 1, sr)
	q := HighShelf(1500, 4, defaultQ, sr)

	for _, f := range []float64{50, 500, 1500, 5000, 15000} {
		if !almostEqual(slope.MagnitudeDB(f, sr), q.MagnitudeDB(f, sr), 1e-9) {
			t.Fatalf("S=1 and Q=1/sqrt2 differ at %v Hz", f)
		}
	}
}

func TestHighpass_Shape(t *testing.T) {
	hp := Highpass(38, defaultQ, sr)
	if got := hp.MagnitudeDB(38, sr); !almostEqual(got, -3.01, 0.01) {
		t.Errorf("highpass at cutoff = %v dB, want -3.01", got)
	}
	if got := hp.MagnitudeDB(1000, sr); !almostEqual(got, 0, 0.01) {
		t.Errorf("highpass passband = %v dB, want ~0", got)
	}
}

func TestInvalidFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"zero", 0},
		{"negative", -100},
		{"nyquist", sr / 2},
		{"above nyquist", 30000},
		{"NaN", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ValidFrequency(tt.freq, sr) {
				t.Fatalf("ValidFrequency(%v) = true", tt.freq)
			}

			if c := Peak(tt.freq, 3, 1, sr); c != (biquad.Coefficients{}) {
				t.Fatalf("Peak(%v) = %+v, want zero coefficients", tt.freq, c)
			}
		})
	}

	if !ValidFrequency(1000, sr) {
		t.Fatal("ValidFrequency(1000) = false")
	}
}

func TestDesignsAreStable(t *testing.T) {
	for _, c := range []biquad.Coefficients{
		Peak(60, 9, 4, sr),
		LowShelfSlope(30, -12, 1, sr),
		HighShelfSlope(18000, 8, 1, sr),
		Highpass(20, 0.5, sr),
	} {
		// Jury criterion for a second-order denominator.
		if !(math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2) {
			t.Fatalf("unstable design: %+v", c)
		}
	}
}
