package design

import (
	"math"

	"github.com/cwbudde/algo-master/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// DefaultShelfSlope is the shelf slope S used by the mastering EQ. S = 1 is
// the steepest slope without overshoot in the magnitude response.
const DefaultShelfSlope = 1.0

// ValidFrequency reports whether freq lies strictly between 0 and the
// Nyquist frequency of sampleRate.
func ValidFrequency(freq, sampleRate float64) bool {
	_, ok := normalizedW0(freq, sampleRate)
	return ok
}

// Highpass designs a second-order highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := (1 + cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Peak designs a peaking-EQ biquad with gain in dB. Q sets the bandwidth.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	if gainDB == 0 {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Pow(10, gainDB/40)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// LowShelf designs a low-shelf biquad with gain in dB and quality factor q.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return lowShelf(w0, gainDB, math.Sin(w0)/(2*normalizedQ(q)))
}

// HighShelf designs a high-shelf biquad with gain in dB and quality factor q.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return highShelf(w0, gainDB, math.Sin(w0)/(2*normalizedQ(q)))
}

// LowShelfSlope designs a low-shelf biquad using the cookbook slope form:
//
//	alpha = sin(w0)/2 * sqrt((A + 1/A)(1/S - 1) + 2)
//
// A non-positive slope falls back to [DefaultShelfSlope].
func LowShelfSlope(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return lowShelf(w0, gainDB, slopeAlpha(w0, gainDB, slope))
}

// HighShelfSlope is the high-shelf counterpart of [LowShelfSlope].
func HighShelfSlope(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return highShelf(w0, gainDB, slopeAlpha(w0, gainDB, slope))
}

func lowShelf(w0, gainDB, alpha float64) biquad.Coefficients {
	if gainDB == 0 {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func highShelf(w0, gainDB, alpha float64) biquad.Coefficients {
	if gainDB == 0 {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func slopeAlpha(w0, gainDB, slope float64) float64 {
	if slope <= 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		slope = DefaultShelfSlope
	}

	a := math.Pow(10, gainDB/40)
	arg := (a+1/a)*(1/slope-1) + 2

	// Slopes steeper than the gain allows would take the root of a negative
	// number; clamp to the maximally steep shelf.
	if arg < 0 {
		arg = 0
	}

	return math.Sin(w0) / 2 * math.Sqrt(arg)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
