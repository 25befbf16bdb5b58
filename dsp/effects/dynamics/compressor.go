package dynamics

import (
	"fmt"
	"math"
)

const (
	// Default compressor parameters
	defaultCompressorThresholdDB = -18.0
	defaultCompressorRatio       = 2.0
	defaultCompressorKneeDB      = 6.0
	defaultCompressorAttackSec   = 0.010
	defaultCompressorReleaseSec  = 0.150

	// Parameter validation ranges
	minCompressorRatio      = 1.0
	maxCompressorRatio      = 100.0
	maxCompressorAttackSec  = 1.0
	maxCompressorReleaseSec = 5.0
	minCompressorKneeDB     = 0.0
	maxCompressorKneeDB     = 24.0

	// log2Of10Div20 converts decibels to the log2 domain: log2(10) / 20.
	log2Of10Div20 = 0.16609640474436813
)

// CompressorMetrics holds metering information for visualization and analysis.
type CompressorMetrics struct {
	InputPeak            float64 // Maximum detector level since last reset
	OutputPeak           float64 // Maximum output level since last reset
	MaxGainReductionDB   float64 // Largest smoothed gain reduction since last reset
	ReducedSampleCount   int     // Samples processed with non-zero gain reduction
	ProcessedSampleCount int
}

// CompressorOption mutates compressor construction parameters.
type CompressorOption func(*Compressor) error

// WithThreshold sets the threshold in dB.
func WithThreshold(dB float64) CompressorOption {
	return func(c *Compressor) error { return c.SetThreshold(dB) }
}

// WithRatio sets the compression ratio.
func WithRatio(ratio float64) CompressorOption {
	return func(c *Compressor) error { return c.SetRatio(ratio) }
}

// WithKnee sets the soft-knee width in dB.
func WithKnee(kneeDB float64) CompressorOption {
	return func(c *Compressor) error { return c.SetKnee(kneeDB) }
}

// WithAttack sets the attack time in seconds.
func WithAttack(sec float64) CompressorOption {
	return func(c *Compressor) error { return c.SetAttack(sec) }
}

// WithRelease sets the release time in seconds.
func WithRelease(sec float64) CompressorOption {
	return func(c *Compressor) error { return c.SetRelease(sec) }
}

// Compressor is a feed-forward soft-knee compressor with a smoothed
// gain-reduction envelope.
//
// The detector measures the instantaneous peak level in dB and maps it
// through the static curve to a target gain reduction. The envelope moves
// toward the target with the attack coefficient when reduction increases
// and with the release coefficient when it decreases. The envelope, in dB of
// reduction, is the only recursion state.
//
// ProcessSample compresses one channel. ProcessLinked drives a single
// envelope from the louder of two channels so both receive identical gain,
// which keeps the stereo image stable.
//
// A Compressor is single-threaded and not safe for concurrent use.
type Compressor struct {
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attackSec   float64
	releaseSec  float64
	sampleRate  float64

	// Gain reduction envelope in dB (>= 0).
	envelopeDB float64

	attackCoeff  float64
	releaseCoeff float64
	slope        float64 // 1 - 1/ratio

	metrics CompressorMetrics
}

// NewCompressor creates a compressor for the given sample rate.
//
// Sample rate must be positive and finite.
//
// Default parameters:
//   - Threshold: -18 dB
//   - Ratio: 2:1
//   - Knee: 6 dB
//   - Attack: 10 ms
//   - Release: 150 ms
func NewCompressor(sampleRate float64, opts ...CompressorOption) (*Compressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("compressor sample rate must be positive and finite: %f", sampleRate)
	}

	c := &Compressor{
		thresholdDB: defaultCompressorThresholdDB,
		ratio:       defaultCompressorRatio,
		kneeDB:      defaultCompressorKneeDB,
		attackSec:   defaultCompressorAttackSec,
		releaseSec:  defaultCompressorReleaseSec,
		sampleRate:  sampleRate,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(c)
		if err != nil {
			return nil, err
		}
	}

	c.updateCoefficients()
	c.Reset()

	return c, nil
}

// SetThreshold sets compression threshold in dB.
func (c *Compressor) SetThreshold(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 0) {
		return fmt.Errorf("compressor threshold must be finite: %f", dB)
	}

	c.thresholdDB = dB

	return nil
}

// SetRatio sets compression ratio.
// Range: 1.0 to 100.0
//   - 1.0 = no compression
//   - 2.0-4.0 = typical bus and mastering compression
//   - 100.0 ≈ limiting
func (c *Compressor) SetRatio(ratio float64) error {
	if ratio < minCompressorRatio || ratio > maxCompressorRatio ||
		math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return fmt.Errorf("compressor ratio must be in [%f, %f]: %f",
			minCompressorRatio, maxCompressorRatio, ratio)
	}

	c.ratio = ratio
	c.updateCoefficients()

	return nil
}

// SetKnee sets soft-knee width in dB. 0 dB is a hard knee.
func (c *Compressor) SetKnee(kneeDB float64) error {
	if kneeDB < minCompressorKneeDB || kneeDB > maxCompressorKneeDB ||
		math.IsNaN(kneeDB) || math.IsInf(kneeDB, 0) {
		return fmt.Errorf("compressor knee must be in [%f, %f]: %f",
			minCompressorKneeDB, maxCompressorKneeDB, kneeDB)
	}

	c.kneeDB = kneeDB

	return nil
}

// SetAttack sets attack time in seconds. Must be in (0, 1].
func (c *Compressor) SetAttack(sec float64) error {
	if !(sec > 0) || sec > maxCompressorAttackSec || math.IsInf(sec, 0) {
		return fmt.Errorf("compressor attack must be in (0, %f] s: %f", maxCompressorAttackSec, sec)
	}

	c.attackSec = sec
	c.updateCoefficients()

	return nil
}

// SetRelease sets release time in seconds. Must be in (0, 5].
func (c *Compressor) SetRelease(sec float64) error {
	if !(sec > 0) || sec > maxCompressorReleaseSec || math.IsInf(sec, 0) {
		return fmt.Errorf("compressor release must be in (0, %f] s: %f", maxCompressorReleaseSec, sec)
	}

	c.releaseSec = sec
	c.updateCoefficients()

	return nil
}

// Threshold returns the current threshold in dB.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the current compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the current knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// Attack returns the current attack time in seconds.
func (c *Compressor) Attack() float64 { return c.attackSec }

// Release returns the current release time in seconds.
func (c *Compressor) Release() float64 { return c.releaseSec }

// SampleRate returns the sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// AttackCoeff returns the one-pole attack coefficient exp(-1/(attack*fs)).
func (c *Compressor) AttackCoeff() float64 { return c.attackCoeff }

// ReleaseCoeff returns the one-pole release coefficient exp(-1/(release*fs)).
func (c *Compressor) ReleaseCoeff() float64 { return c.releaseCoeff }

// Envelope returns the current smoothed gain reduction in dB.
func (c *Compressor) Envelope() float64 { return c.envelopeDB }

// SetEnvelope restores a previously saved envelope value.
func (c *Compressor) SetEnvelope(dB float64) { c.envelopeDB = math.Max(dB, 0) }

// ProcessSample compresses one sample of a single channel.
func (c *Compressor) ProcessSample(input float64) float64 {
	level := math.Abs(input)
	gain := c.NextGain(level)

	output := input * gain
	c.updateOutputPeak(math.Abs(output))

	return output
}

// ProcessLinked compresses one stereo frame. The detector uses the louder
// of the two channels and both receive the same gain.
func (c *Compressor) ProcessLinked(left, right float64) (float64, float64) {
	level := math.Max(math.Abs(left), math.Abs(right))
	gain := c.NextGain(level)

	outL, outR := left*gain, right*gain
	c.updateOutputPeak(math.Max(math.Abs(outL), math.Abs(outR)))

	return outL, outR
}

// ProcessInPlace applies compression to buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// NextGain advances the envelope by one sample for a detector level given
// as linear peak magnitude, and returns the linear gain to apply. It lets a
// caller separate detection from gain application, e.g. to compute a
// linked detector pass before applying gain to channels independently.
func (c *Compressor) NextGain(level float64) float64 {
	target := c.GainReductionDB(levelToDB(level))

	if target > c.envelopeDB {
		c.envelopeDB = c.attackCoeff*c.envelopeDB + (1-c.attackCoeff)*target
	} else {
		c.envelopeDB = c.releaseCoeff*c.envelopeDB + (1-c.releaseCoeff)*target
	}

	c.updateMetrics(level)

	if c.envelopeDB == 0 {
		return 1
	}

	return mathPower2(-c.envelopeDB * log2Of10Div20)
}

// GainReductionDB evaluates the static curve: the steady-state gain
// reduction in dB (>= 0) for an input level in dB.
//
// At or below the threshold there is no reduction. The knee spans
// [threshold, threshold+knee], where the reduction is
// (1-1/ratio)*over^2/(2*knee). Above it the curve continues linearly with
// slope (1-1/ratio) as (1-1/ratio)*(over-knee/2).
func (c *Compressor) GainReductionDB(levelDB float64) float64 {
	if math.IsInf(levelDB, -1) || c.slope == 0 {
		return 0
	}

	over := levelDB - c.thresholdDB
	if over <= 0 {
		return 0
	}

	if over >= c.kneeDB {
		return c.slope * (over - c.kneeDB*0.5)
	}

	return c.slope * over * over / (2 * c.kneeDB)
}

// CalculateOutputLevel computes the steady-state output magnitude for a
// given input magnitude. This allows visualizing the compression curve.
func (c *Compressor) CalculateOutputLevel(inputMagnitude float64) float64 {
	inputMagnitude = math.Abs(inputMagnitude)
	reduction := c.GainReductionDB(levelToDB(inputMagnitude))

	return inputMagnitude * mathPower2(-reduction*log2Of10Div20)
}

// Reset clears the envelope and metrics.
func (c *Compressor) Reset() {
	c.envelopeDB = 0
	c.ResetMetrics()
}

// GetMetrics returns current metering values.
func (c *Compressor) GetMetrics() CompressorMetrics {
	return c.metrics
}

// ResetMetrics clears metering state.
func (c *Compressor) ResetMetrics() {
	c.metrics = CompressorMetrics{}
}

func (c *Compressor) updateCoefficients() {
	c.slope = 1.0 - 1.0/c.ratio
	c.attackCoeff = math.Exp(-1.0 / (c.attackSec * c.sampleRate))
	c.releaseCoeff = math.Exp(-1.0 / (c.releaseSec * c.sampleRate))
}

func (c *Compressor) updateMetrics(level float64) {
	c.metrics.ProcessedSampleCount++

	if level > c.metrics.InputPeak {
		c.metrics.InputPeak = level
	}

	if c.envelopeDB > 0 {
		c.metrics.ReducedSampleCount++
	}

	if c.envelopeDB > c.metrics.MaxGainReductionDB {
		c.metrics.MaxGainReductionDB = c.envelopeDB
	}
}

func (c *Compressor) updateOutputPeak(level float64) {
	if level > c.metrics.OutputPeak {
		c.metrics.OutputPeak = level
	}
}

// levelToDB converts a linear magnitude to dB, -Inf for silence.
func levelToDB(level float64) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}

	return mathLog2(level) / log2Of10Div20
}
