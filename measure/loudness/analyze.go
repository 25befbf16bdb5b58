package loudness

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/core"
	"github.com/cwbudde/algo-master/dsp/filter/biquad"
	"github.com/cwbudde/algo-master/dsp/interp"
)

const (
	defaultOversampling = 4
	maxOversampling     = 32
	shortTermHop        = 0.1
)

var scratch = buffer.NewPool()

// Result holds whole-buffer level measurements. Level values are floored at
// core.SilenceFloorDB and loudness values at LUFSFloor, so silence never
// produces NaN or -Inf.
type Result struct {
	RMSDB          float64
	PeakDB         float64
	TruePeakDB     float64
	IntegratedLUFS float64
	ShortTermLUFS  float64

	// GatedLUFS is BS.1770 gated integrated loudness: 400 ms blocks every
	// 100 ms, absolute gate at -70 LUFS, relative gate at -10 LU.
	GatedLUFS float64
	// MaxMomentaryLUFS is the loudest 400 ms gating block.
	MaxMomentaryLUFS float64
}

// AnalyzeOption configures Analyze.
type AnalyzeOption func(*analyzeConfig)

type analyzeConfig struct {
	oversampling int
	mode         interp.Mode
	windowSec    float64
	hopSec       float64
}

func defaultAnalyzeConfig() analyzeConfig {
	return analyzeConfig{
		oversampling: defaultOversampling,
		mode:         interp.ModeHermite,
		windowSec:    shortTermDuration,
		hopSec:       shortTermHop,
	}
}

// WithOversampling sets the true-peak oversampling factor (1..32, default 4).
func WithOversampling(factor int) AnalyzeOption {
	return func(cfg *analyzeConfig) {
		if factor >= 1 && factor <= maxOversampling {
			cfg.oversampling = factor
		}
	}
}

// WithInterpolation selects the true-peak reconstruction kernel
// (default interp.ModeHermite).
func WithInterpolation(mode interp.Mode) AnalyzeOption {
	return func(cfg *analyzeConfig) {
		if mode.Valid() {
			cfg.mode = mode
		}
	}
}

// WithShortTermWindow overrides the short-term window and hop in seconds
// (default 3 s hopped by 100 ms).
func WithShortTermWindow(windowSec, hopSec float64) AnalyzeOption {
	return func(cfg *analyzeConfig) {
		if windowSec > 0 && hopSec > 0 {
			cfg.windowSec = windowSec
			cfg.hopSec = hopSec
		}
	}
}

// Analyze measures a complete buffer.
//
//   - PeakDB: 20*log10(max |x|) over all channels.
//   - TruePeakDB: peak of the signal reconstructed at the oversampling
//     factor; never below PeakDB.
//   - RMSDB: RMS over all channels and frames.
//   - IntegratedLUFS: -0.691 + 10*log10 of the channel-summed K-weighted
//     mean square over the whole buffer, ungated.
//   - ShortTermLUFS: the loudest window of the short-term length; buffers
//     shorter than one window use the whole buffer.
func Analyze(buf *buffer.AudioBuffer, opts ...AnalyzeOption) (Result, error) {
	cfg := defaultAnalyzeConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	err := buf.CheckLayout()
	if err != nil {
		return Result{}, fmt.Errorf("loudness: %w", err)
	}

	frames := buf.Frames()
	if frames == 0 {
		return Result{}, fmt.Errorf("loudness: %w", buffer.ErrEmpty)
	}

	var (
		peak, truePeak, sumSquares float64
		channels                   = buf.ChannelCount()
	)

	for _, ch := range buf.Channels {
		peak = math.Max(peak, vecmath.MaxAbs(ch))
		truePeak = math.Max(truePeak, interp.OversampledPeak(ch, cfg.oversampling, cfg.mode))
		sumSquares += vecmath.DotProduct(ch, ch)
	}

	res := Result{
		PeakDB:     core.LinearToDBFloor(peak, core.SilenceFloorDB),
		TruePeakDB: core.LinearToDBFloor(math.Max(truePeak, peak), core.SilenceFloorDB),
		RMSDB:      core.LinearToDBFloor(math.Sqrt(sumSquares/float64(channels*frames)), core.SilenceFloorDB),
	}

	energy := weightedEnergy(buf)
	defer scratch.Put(energy)

	res.IntegratedLUFS = toLUFS(vecmath.Sum(energy) / float64(frames))
	res.ShortTermLUFS = maxWindowLoudness(energy, windowLength(cfg.windowSec, buf.SampleRate),
		windowLength(cfg.hopSec, buf.SampleRate))

	gate := newBlockGate(float64(buf.SampleRate))
	for _, e := range energy {
		gate.push(e)
	}

	res.GatedLUFS = gate.integrated()
	res.MaxMomentaryLUFS = toLUFS(gate.loudest())

	return res, nil
}

// weightedEnergy returns the per-frame sum over channels of the squared
// K-weighted signal. The slice comes from scratch.
func weightedEnergy(buf *buffer.AudioBuffer) []float64 {
	frames := buf.Frames()
	energy := scratch.Get(frames)
	filtered := scratch.Get(frames)

	defer scratch.Put(filtered)

	shelf, hpf := kWeighting(float64(buf.SampleRate))

	for _, ch := range buf.Channels {
		biquad.NewSection(shelf).ProcessBlockTo(filtered, ch)
		biquad.NewSection(hpf).ProcessBlock(filtered)

		vecmath.MulBlockInPlace(filtered, filtered)
		vecmath.AddBlockInPlace(energy, filtered)
	}

	return energy
}

// maxWindowLoudness returns the loudest window of length window hopped by
// hop. If the signal is shorter than one window, the whole signal is used.
func maxWindowLoudness(energy []float64, window, hop int) float64 {
	n := len(energy)
	if window >= n {
		return toLUFS(vecmath.Sum(energy) / float64(n))
	}

	prefix := make([]float64, n+1)
	for i, e := range energy {
		prefix[i+1] = prefix[i] + e
	}

	best := 0.0

	for start := 0; start+window <= n; start += hop {
		ms := (prefix[start+window] - prefix[start]) / float64(window)
		if ms > best {
			best = ms
		}
	}

	return toLUFS(best)
}

func windowLength(sec float64, sampleRate int) int {
	return max(int(math.Round(sec*float64(sampleRate))), 1)
}
