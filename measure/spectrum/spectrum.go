package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/core"
	"github.com/cwbudde/algo-master/dsp/window"
)

const (
	defaultFFTSize = 4096
	minFFTSize     = 64
	maxFFTSize     = 1 << 16

	referenceHz = 1000.0
	lowestHz    = 20.0
)

// ErrTooShort is returned for buffers with fewer frames than the smallest
// FFT block.
var ErrTooShort = errors.New("spectrum: buffer shorter than one analysis block")

var scratch = buffer.NewPool()

// Band is one fractional-octave band.
type Band struct {
	CenterHz float64
	LowHz    float64
	HighHz   float64
	LevelDB  float64
}

// Config holds analyzer settings.
type Config struct {
	FFTSize        int
	Window         window.Type
	BandsPerOctave int
}

// DefaultConfig returns 4096-point Hann blocks and octave bands.
func DefaultConfig() Config {
	return Config{
		FFTSize:        defaultFFTSize,
		Window:         window.TypeHann,
		BandsPerOctave: 1,
	}
}

// Option mutates the analyzer configuration.
type Option func(*Config)

// WithFFTSize sets the block length. Values that are not a power of two in
// [64, 65536] are ignored.
func WithFFTSize(n int) Option {
	return func(cfg *Config) {
		if n >= minFFTSize && n <= maxFFTSize && n&(n-1) == 0 {
			cfg.FFTSize = n
		}
	}
}

// WithWindow selects the analysis window.
func WithWindow(t window.Type) Option {
	return func(cfg *Config) {
		cfg.Window = t
	}
}

// WithBandsPerOctave sets the band resolution (1 = octave, 3 = third
// octave). Values outside 1..12 are ignored.
func WithBandsPerOctave(n int) Option {
	return func(cfg *Config) {
		if n >= 1 && n <= 12 {
			cfg.BandsPerOctave = n
		}
	}
}

// Analyze returns the band levels of buf. Blocks overlap by half; when the
// buffer is shorter than the configured FFT size the block is halved until
// it fits.
func Analyze(buf *buffer.AudioBuffer, opts ...Option) ([]Band, error) {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	err := buf.CheckLayout()
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	frames := buf.Frames()
	if frames == 0 {
		return nil, fmt.Errorf("spectrum: %w", buffer.ErrEmpty)
	}

	if frames < minFFTSize {
		return nil, fmt.Errorf("%w: %d frames", ErrTooShort, frames)
	}

	size := cfg.FFTSize
	for size > frames {
		size /= 2
	}

	power, err := averagePower(buf, size, cfg.Window)
	if err != nil {
		return nil, err
	}

	return bandLevels(power, float64(buf.SampleRate), size, cfg.BandsPerOctave), nil
}

// Centers returns the band center frequencies below the Nyquist frequency
// of sampleRate, starting at the first band above 20 Hz.
func Centers(sampleRate float64, bandsPerOctave int) []float64 {
	if bandsPerOctave < 1 || sampleRate <= 0 {
		return nil
	}

	b := float64(bandsPerOctave)
	nyquist := sampleRate / 2

	var out []float64

	for k := int(math.Ceil(b * math.Log2(lowestHz/referenceHz))); ; k++ {
		c := referenceHz * math.Exp2(float64(k)/b)
		if c >= nyquist {
			break
		}

		out = append(out, c)
	}

	return out
}

// averagePower returns the one-sided power spectrum (size/2+1 bins) of the
// channel average, normalized so that the bins sum to the mean square.
func averagePower(buf *buffer.AudioBuffer, size int, winType window.Type) ([]float64, error) {
	frames := buf.Frames()

	mix := scratch.Get(frames)
	defer scratch.Put(mix)

	for _, ch := range buf.Channels {
		vecmath.AddBlockInPlace(mix, ch)
	}

	vecmath.ScaleBlockInPlace(mix, 1/float64(buf.ChannelCount()))

	win := window.Generate(winType, size, window.WithPeriodic())

	winPower := vecmath.DotProduct(win, win)
	if winPower == 0 {
		return nil, fmt.Errorf("spectrum: window %v has no energy", winType)
	}

	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	var (
		half  = size/2 + 1
		hop   = size / 2
		out   = make([]complex128, half)
		block = scratch.Get(size)
		re    = scratch.Get(half)
		im    = scratch.Get(half)
		pow   = scratch.Get(half)
		acc   = make([]float64, half)
		count int
	)

	defer func() {
		scratch.Put(block)
		scratch.Put(re)
		scratch.Put(im)
		scratch.Put(pow)
	}()

	for start := 0; start+size <= frames; start += hop {
		vecmath.MulBlock(block, mix[start:start+size], win)

		err = plan.Forward(out, block)
		if err != nil {
			return nil, fmt.Errorf("spectrum: fft: %w", err)
		}

		for k := range half {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}

		vecmath.Power(pow, re, im)
		vecmath.AddBlockInPlace(acc, pow)

		count++
	}

	vecmath.ScaleBlockInPlace(acc, 1/(float64(count)*float64(size)*winPower))

	// Fold negative frequencies onto the positive bins.
	vecmath.ScaleBlockInPlace(acc[1:half-1], 2)

	return acc, nil
}

func bandLevels(power []float64, sampleRate float64, size, bandsPerOctave int) []Band {
	centers := Centers(sampleRate, bandsPerOctave)
	bands := make([]Band, len(centers))
	edge := math.Exp2(1 / (2 * float64(bandsPerOctave)))
	binHz := sampleRate / float64(size)
	nyquist := sampleRate / 2

	for i, c := range centers {
		low := c / edge
		high := math.Min(c*edge, nyquist)

		first := int(math.Ceil(low / binHz))
		last := int(math.Ceil(high/binHz)) - 1

		if high == nyquist {
			last = len(power) - 1
		}

		sum := 0.0
		if first <= last {
			sum = vecmath.Sum(power[first : last+1])
		}

		bands[i] = Band{
			CenterHz: c,
			LowHz:    low,
			HighHz:   high,
			LevelDB:  core.PowerToDBFloor(sum, core.SilenceFloorDB),
		}
	}

	return bands
}
