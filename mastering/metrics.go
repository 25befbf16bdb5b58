package mastering

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/mastering/preset"
	"github.com/cwbudde/algo-master/measure/loudness"
	"github.com/cwbudde/algo-master/measure/spectrum"
	"github.com/cwbudde/algo-master/measure/stereo"
)

// Metrics is an immutable snapshot of buffer measurements.
type Metrics struct {
	loudness.Result

	// Stereo is nil for mono buffers.
	Stereo *stereo.Field
	// Spectrum is nil for buffers too short for one analysis block.
	Spectrum []spectrum.Band
}

// CrestDB returns PeakDB - RMSDB.
func (m Metrics) CrestDB() float64 {
	return m.PeakDB - m.RMSDB
}

// Measure computes loudness, stereo and spectrum metrics for buf. Stereo
// metrics are skipped for mono buffers and the spectrum for very short
// buffers; neither is an error.
func Measure(buf *buffer.AudioBuffer, spectrumOpts ...spectrum.Option) (Metrics, error) {
	res, err := loudness.Analyze(buf)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{Result: res}

	field, err := stereo.Analyze(buf)

	switch {
	case err == nil:
		m.Stereo = &field
	case !errors.Is(err, stereo.ErrMonoNotSupported):
		return Metrics{}, err
	}

	bands, err := spectrum.Analyze(buf, spectrumOpts...)

	switch {
	case err == nil:
		m.Spectrum = bands
	case !errors.Is(err, spectrum.ErrTooShort):
		return Metrics{}, fmt.Errorf("spectrum: %w", err)
	}

	return m, nil
}

// Validation compares measured output against the preset targets.
type Validation struct {
	TargetLUFS        float64
	TruePeakCeilingDB float64
	// LoudnessDeltaLU is integrated loudness minus the target; positive
	// means louder than the target.
	LoudnessDeltaLU float64
	// TruePeakExceeded is set when the output true peak is above the
	// preset ceiling.
	TruePeakExceeded bool
}

// Validate builds the target comparison for output metrics m.
func Validate(p preset.Preset, m Metrics) Validation {
	return Validation{
		TargetLUFS:        p.TargetLUFS,
		TruePeakCeilingDB: p.TruePeakCeilingDB,
		LoudnessDeltaLU:   m.IntegratedLUFS - p.TargetLUFS,
		TruePeakExceeded:  m.TruePeakDB > p.TruePeakCeilingDB,
	}
}

// WithinTolerance reports whether loudness is within tolLU of the target
// and the true-peak ceiling holds.
func (v Validation) WithinTolerance(tolLU float64) bool {
	return math.Abs(v.LoudnessDeltaLU) <= tolLU && !v.TruePeakExceeded
}
