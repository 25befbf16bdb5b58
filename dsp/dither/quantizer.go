package dither

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// ErrLengthMismatch is returned by Quantize when dst and src differ in length.
var ErrLengthMismatch = errors.New("dither: destination and source lengths differ")

// Quantizer maps samples in [-1, 1) to signed integer codes of a fixed bit
// depth: code = round(x * 2^(bits-1) + dither), clipped to
// [-2^(bits-1), 2^(bits-1)-1]. A Quantizer is stateful (noise generator and
// shaper history) and must be used for one channel at a time.
type Quantizer struct {
	sampleRate      float64
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	seed            int64
	state           *vecmath.DitherState
	shaper          NoiseShaper

	// derived from bitDepth
	scale float64
	lo    float64
	hi    float64

	noise []float64
}

// NewQuantizer creates a Quantizer. The default configuration is 16-bit
// with triangular dither of amplitude 1 LSB and a fixed seed.
func NewQuantizer(sampleRate float64, opts ...Option) (*Quantizer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dither: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	quant := &Quantizer{
		sampleRate:      sampleRate,
		bitDepth:        cfg.bitDepth,
		ditherType:      cfg.ditherType,
		ditherAmplitude: cfg.ditherAmplitude,
		seed:            cfg.seed,
		state:           vecmath.NewDitherState(cfg.seed),
	}

	if cfg.ditherType == DitherShaped {
		shaper, err := NewShelfShaper(cfg.shelfFreq, sampleRate)
		if err != nil {
			return nil, err
		}

		quant.shaper = shaper
	}

	quant.scale = math.Exp2(float64(quant.bitDepth - 1))
	quant.lo = -quant.scale
	quant.hi = quant.scale - 1

	return quant, nil
}

// Quantize writes the integer code of each src sample to dst.
func (q *Quantizer) Quantize(dst []int, src []float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(dst), len(src))
	}

	noise := q.nextNoise(len(src))
	for i, x := range src {
		dst[i] = q.next(x, noise[i])
	}

	return nil
}

// ProcessSample quantizes one sample and returns it rescaled to [-1, 1).
func (q *Quantizer) ProcessSample(x float64) float64 {
	noise := q.nextNoise(1)
	return float64(q.next(x, noise[0])) / q.scale
}

// ProcessInPlace quantizes buf in place, leaving values on the output grid.
func (q *Quantizer) ProcessInPlace(buf []float64) {
	noise := q.nextNoise(len(buf))
	for i, x := range buf {
		buf[i] = float64(q.next(x, noise[i])) / q.scale
	}
}

// Reset reseeds the noise generator and clears the shaper history, so the
// next call reproduces the output of a fresh Quantizer.
func (q *Quantizer) Reset() {
	q.state = vecmath.NewDitherState(q.seed)
	if q.shaper != nil {
		q.shaper.Reset()
	}
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// DitherType returns the dither mode.
func (q *Quantizer) DitherType() DitherType { return q.ditherType }

// DitherAmplitude returns the TPDF amplitude in LSB.
func (q *Quantizer) DitherAmplitude() float64 { return q.ditherAmplitude }

// SampleRate returns the configured sample rate.
func (q *Quantizer) SampleRate() float64 { return q.sampleRate }

// Range returns the smallest and largest integer code.
func (q *Quantizer) Range() (lo, hi int) { return int(q.lo), int(q.hi) }

func (q *Quantizer) nextNoise(n int) []float64 {
	if cap(q.noise) < n {
		q.noise = make([]float64, n)
	}

	noise := q.noise[:n]

	if q.ditherType == DitherNone || q.ditherAmplitude == 0 {
		clear(noise)
		return noise
	}

	vecmath.GenerateTPDF(noise, q.ditherAmplitude, q.state)

	return noise
}

func (q *Quantizer) next(x, noise float64) int {
	scaled := x * q.scale
	if q.shaper != nil {
		scaled = q.shaper.Shape(scaled)
	}

	rounded := math.Round(scaled + noise)

	switch {
	case math.IsNaN(rounded):
		return 0
	case math.IsInf(rounded, 1):
		return int(q.hi)
	case math.IsInf(rounded, -1):
		return int(q.lo)
	}

	if q.shaper != nil {
		q.shaper.RecordError(rounded - scaled)
	}

	return int(max(q.lo, min(q.hi, rounded)))
}
