// Package chain turns a preset into an ordered, stateful processing
// pipeline: per-channel EQ filter stages, one (stereo-linked) compressor and
// a gain multiplier.
package chain

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/effects/dynamics"
	"github.com/cwbudde/algo-master/dsp/filter/biquad"
	"github.com/cwbudde/algo-master/mastering/preset"
)

// StageKind identifies a pipeline stage in Order.
type StageKind int

const (
	StageLowShelf StageKind = iota
	StagePeaking
	StageHighShelf
	StageCompressor
	StageGain
)

var stageKindNames = [...]string{"low_shelf", "peaking", "high_shelf", "compressor", "gain"}

func (k StageKind) String() string {
	if k >= 0 && int(k) < len(stageKindNames) {
		return stageKindNames[k]
	}

	return fmt.Sprintf("StageKind(%d)", int(k))
}

// StageInfo describes one stage of a built chain.
type StageInfo struct {
	Kind        StageKind
	FrequencyHz float64 // filter stages only
	GainDB      float64 // filter stages only
	Q           float64 // peaking stages only
	Gain        float64 // gain stage only
}

// State is an inspectable snapshot of a chain's recursion state.
// Filters[c][s] is the delay line of stage s on channel c.
type State struct {
	Filters  [][]biquad.State
	Envelope float64 // compressor gain reduction in dB
}

// Chain is a single-job processing pipeline. It is not safe for concurrent
// use and must not be reused for a second buffer.
type Chain struct {
	preset     preset.Preset
	sampleRate int
	channels   int

	bands      []preset.EqBand  // processing order
	filters    [][]*FilterStage // [channel][stage]
	compressor *dynamics.Compressor
	gain       float64

	claimed atomic.Bool
}

// Build composes the pipeline for p at sampleRate with channelCount
// channels. Bands are ordered low shelf, peaking by ascending frequency,
// high shelf; ties keep preset order.
func Build(p preset.Preset, sampleRate, channelCount int) (*Chain, error) {
	if channelCount < 1 || channelCount > buffer.MaxChannels {
		return nil, fmt.Errorf("%w: %d channels", buffer.ErrUnsupportedChannelLayout, channelCount)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", buffer.ErrInvalidSampleRate, sampleRate)
	}

	err := p.ValidateForSampleRate(sampleRate)
	if err != nil {
		return nil, err
	}

	comp, err := dynamics.NewCompressor(float64(sampleRate), p.Compressor.Options()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", preset.ErrInvalidPreset, err)
	}

	bands := orderBands(p.Bands)

	c := &Chain{
		preset:     p.Clone(),
		sampleRate: sampleRate,
		channels:   channelCount,
		bands:      bands,
		filters:    make([][]*FilterStage, channelCount),
		compressor: comp,
		gain:       p.GainMultiplier,
	}

	for ch := range channelCount {
		c.filters[ch] = make([]*FilterStage, len(bands))

		for i, band := range bands {
			stage, err := NewFilterStage(band, sampleRate)
			if err != nil {
				return nil, err
			}

			c.filters[ch][i] = stage
		}
	}

	return c, nil
}

func orderBands(in []preset.EqBand) []preset.EqBand {
	out := append([]preset.EqBand(nil), in...)

	rank := func(k preset.BandKind) int {
		switch k {
		case preset.LowShelf:
			return 0
		case preset.Peaking:
			return 1
		default:
			return 2
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Kind), rank(out[j].Kind)
		if ri != rj {
			return ri < rj
		}

		if ri == 1 {
			return out[i].FrequencyHz < out[j].FrequencyHz
		}

		return false
	})

	return out
}

// SampleRate returns the rate the chain was built for.
func (c *Chain) SampleRate() int { return c.sampleRate }

// ChannelCount returns the channel layout the chain was built for.
func (c *Chain) ChannelCount() int { return c.channels }

// Linked reports whether the compressor detector is shared by two channels.
func (c *Chain) Linked() bool { return c.channels == 2 }

// Gain returns the output gain multiplier.
func (c *Chain) Gain() float64 { return c.gain }

// Preset returns a copy of the preset the chain was built from.
func (c *Chain) Preset() preset.Preset { return c.preset.Clone() }

// Compressor returns the dynamics stage.
func (c *Chain) Compressor() *dynamics.Compressor { return c.compressor }

// Filters returns the filter stages of channel ch in processing order.
func (c *Chain) Filters(ch int) []*FilterStage { return c.filters[ch] }

// Order describes every stage in processing order.
func (c *Chain) Order() []StageInfo {
	out := make([]StageInfo, 0, len(c.bands)+2)

	for _, b := range c.bands {
		info := StageInfo{FrequencyHz: b.FrequencyHz, GainDB: b.GainDB}

		switch b.Kind {
		case preset.LowShelf:
			info.Kind = StageLowShelf
		case preset.HighShelf:
			info.Kind = StageHighShelf
		default:
			info.Kind = StagePeaking
			info.Q = b.Q
		}

		out = append(out, info)
	}

	out = append(out, StageInfo{Kind: StageCompressor}, StageInfo{Kind: StageGain, Gain: c.gain})

	return out
}

// State returns a deep snapshot of all filter delay lines and the
// compressor envelope.
func (c *Chain) State() State {
	s := State{
		Filters:  make([][]biquad.State, c.channels),
		Envelope: c.compressor.Envelope(),
	}

	for ch, stages := range c.filters {
		s.Filters[ch] = make([]biquad.State, len(stages))
		for i, f := range stages {
			s.Filters[ch][i] = f.State()
		}
	}

	return s
}

// Claim marks the chain as used. It returns false if it was already claimed.
func (c *Chain) Claim() bool {
	return c.claimed.CompareAndSwap(false, true)
}

// FilterSample runs x through the EQ stages of channel ch.
func (c *Chain) FilterSample(ch int, x float64) float64 {
	for _, f := range c.filters[ch] {
		x = f.Process(x)
	}

	return x
}

// ProcessFrame runs one frame through the whole pipeline in place.
// frame must hold exactly ChannelCount samples.
func (c *Chain) ProcessFrame(frame []float64) {
	for ch := range frame {
		frame[ch] = c.FilterSample(ch, frame[ch])
	}

	if c.channels == 2 {
		frame[0], frame[1] = c.compressor.ProcessLinked(frame[0], frame[1])
	} else {
		frame[0] = c.compressor.ProcessSample(frame[0])
	}

	for ch := range frame {
		frame[ch] *= c.gain
	}
}

// DetectorLevel is the compressor detector input for a filtered frame: the
// largest absolute sample across channels.
func DetectorLevel(frame []float64) float64 {
	level := 0.0
	for _, x := range frame {
		level = math.Max(level, math.Abs(x))
	}

	return level
}
