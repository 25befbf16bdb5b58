package dither

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-master/dsp/filter/biquad"
	"github.com/cwbudde/algo-master/dsp/filter/design"
)

const (
	shelfGainDB = -5.0
	shelfQ      = 0.707
)

// NoiseShaper applies spectral shaping to quantization error via feedback
// filtering. Per sample:
//  1. shaped := shaper.Shape(scaledInput)
//  2. quantized := round(shaped + dither)
//  3. shaper.RecordError(quantized - shaped)
type NoiseShaper interface {
	Shape(input float64) float64
	RecordError(quantizationError float64)
	Reset()
}

// ShelfShaper filters the previous quantization error through a biquad low
// shelf with -5 dB of low-frequency de-emphasis and subtracts it from the
// next sample.
type ShelfShaper struct {
	filter    *biquad.Section
	lastError float64
}

// NewShelfShaper returns a shaper with the given shelf corner frequency.
func NewShelfShaper(freq, sampleRate float64) (*ShelfShaper, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dither: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if !design.ValidFrequency(freq, sampleRate) {
		return nil, fmt.Errorf("dither: shelf frequency %f invalid at %f Hz", freq, sampleRate)
	}

	return &ShelfShaper{
		filter: biquad.NewSection(design.LowShelf(freq, shelfGainDB, shelfQ, sampleRate)),
	}, nil
}

// Shape subtracts the filtered previous error from input.
func (s *ShelfShaper) Shape(input float64) float64 {
	return input - s.filter.ProcessSample(s.lastError)
}

// RecordError stores the quantization error for the next Shape call.
func (s *ShelfShaper) RecordError(quantizationError float64) {
	s.lastError = quantizationError
}

// Reset clears the filter state and the stored error.
func (s *ShelfShaper) Reset() {
	s.filter.Reset()
	s.lastError = 0
}
