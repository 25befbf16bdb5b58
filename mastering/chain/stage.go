package chain

import (
	"fmt"

	"github.com/cwbudde/algo-master/dsp/filter/biquad"
	"github.com/cwbudde/algo-master/dsp/filter/design"
	"github.com/cwbudde/algo-master/mastering/preset"
)

// FilterStage is one EQ band bound to a single channel and sample rate.
// It owns its biquad delay line; stages are never shared across channels.
type FilterStage struct {
	band       preset.EqBand
	sampleRate int
	section    *biquad.Section
}

// NewFilterStage designs the band's biquad for sampleRate. Shelves use the
// slope form with design.DefaultShelfSlope; peaking bands use the band Q.
// A 0 dB band yields the exact identity section.
func NewFilterStage(band preset.EqBand, sampleRate int) (*FilterStage, error) {
	err := band.Validate()
	if err != nil {
		return nil, err
	}

	err = band.CheckNyquist(sampleRate)
	if err != nil {
		return nil, err
	}

	fs := float64(sampleRate)

	var coeffs biquad.Coefficients

	switch band.Kind {
	case preset.LowShelf:
		coeffs = design.LowShelfSlope(band.FrequencyHz, band.GainDB, design.DefaultShelfSlope, fs)
	case preset.HighShelf:
		coeffs = design.HighShelfSlope(band.FrequencyHz, band.GainDB, design.DefaultShelfSlope, fs)
	case preset.Peaking:
		coeffs = design.Peak(band.FrequencyHz, band.GainDB, band.Q, fs)
	default:
		return nil, fmt.Errorf("%w: band kind %v", preset.ErrInvalidPreset, band.Kind)
	}

	return &FilterStage{
		band:       band,
		sampleRate: sampleRate,
		section:    biquad.NewSection(coeffs),
	}, nil
}

// Process filters one sample.
func (f *FilterStage) Process(x float64) float64 {
	return f.section.ProcessSample(x)
}

// Band returns the EQ band the stage was built from.
func (f *FilterStage) Band() preset.EqBand { return f.band }

// SampleRate returns the rate the coefficients were designed for.
func (f *FilterStage) SampleRate() int { return f.sampleRate }

// Coefficients returns the designed biquad coefficients.
func (f *FilterStage) Coefficients() biquad.Coefficients { return f.section.Coefficients }

// State returns the delay-line values.
func (f *FilterStage) State() biquad.State { return f.section.State() }

// MagnitudeDB returns the stage response in dB at freqHz.
func (f *FilterStage) MagnitudeDB(freqHz float64) float64 {
	c := f.section.Coefficients
	return c.MagnitudeDB(freqHz, float64(f.sampleRate))
}
