package loudness

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/filter/biquad"
	"github.com/cwbudde/algo-master/dsp/filter/design"
)

const (
	// K-weighting pre-filter (BS.1770): +4 dB high shelf at 1500 Hz, then a
	// 38 Hz high-pass.
	kWeightingShelfFreq = 1500.0
	kWeightingShelfGain = 4.0
	kWeightingHpfFreq   = 38.0

	momentaryDuration = 0.4
	shortTermDuration = 3.0

	// Gating blocks are momentary windows taken every 100 ms.
	blockStepDuration = 0.1

	absoluteGateLUFS = -70.0
	relativeGateLU   = -10.0
)

// LUFSFloor is reported for silence instead of -Inf.
const LUFSFloor = -120.0

// Meter is a streaming K-weighted loudness meter. It tracks momentary
// loudness over a 400 ms sliding window and collects gating blocks for
// BS.1770 gated integrated loudness.
type Meter struct {
	sampleRate float64
	channels   int
	shelf      []*biquad.Section
	hpf        []*biquad.Section
	frame      []float64
	gate       *blockGate
}

// NewMeter returns a meter for interleaved frames of the given channel
// count (1 or 2).
func NewMeter(sampleRate float64, channels int) (*Meter, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("loudness: %w: %v", buffer.ErrInvalidSampleRate, sampleRate)
	}

	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("loudness: %w: %d channels", buffer.ErrUnsupportedChannelLayout, channels)
	}

	shelf, hpf := kWeighting(sampleRate)

	m := &Meter{
		sampleRate: sampleRate,
		channels:   channels,
		shelf:      make([]*biquad.Section, channels),
		hpf:        make([]*biquad.Section, channels),
		frame:      make([]float64, channels),
		gate:       newBlockGate(sampleRate),
	}

	for ch := range channels {
		m.shelf[ch] = biquad.NewSection(shelf)
		m.hpf[ch] = biquad.NewSection(hpf)
	}

	return m, nil
}

// SampleRate returns the configured sample rate.
func (m *Meter) SampleRate() float64 { return m.sampleRate }

// Channels returns the configured channel count.
func (m *Meter) Channels() int { return m.channels }

// ProcessFrame feeds one frame with one sample per channel. Short frames
// are ignored.
func (m *Meter) ProcessFrame(frame []float64) {
	if len(frame) < m.channels {
		return
	}

	energy := 0.0

	for ch := range m.channels {
		v := m.hpf[ch].ProcessSample(m.shelf[ch].ProcessSample(frame[ch]))
		energy += v * v
	}

	m.gate.push(energy)
}

// ProcessInterleaved feeds interleaved frames. A trailing partial frame is
// dropped.
func (m *Meter) ProcessInterleaved(samples []float64) {
	for i := 0; i+m.channels <= len(samples); i += m.channels {
		m.ProcessFrame(samples[i : i+m.channels])
	}
}

// ProcessBuffer feeds every frame of buf, which must match the meter's
// channel count and sample rate.
func (m *Meter) ProcessBuffer(buf *buffer.AudioBuffer) error {
	err := buf.CheckLayout()
	if err != nil {
		return fmt.Errorf("loudness: %w", err)
	}

	if buf.ChannelCount() != m.channels {
		return fmt.Errorf("loudness: %w: buffer has %d channels, meter %d",
			buffer.ErrUnsupportedChannelLayout, buf.ChannelCount(), m.channels)
	}

	if float64(buf.SampleRate) != m.sampleRate {
		return fmt.Errorf("loudness: %w: buffer at %d Hz, meter at %v Hz",
			buffer.ErrInvalidSampleRate, buf.SampleRate, m.sampleRate)
	}

	for i := range buf.Frames() {
		for ch, samples := range buf.Channels {
			m.frame[ch] = samples[i]
		}

		m.ProcessFrame(m.frame)
	}

	return nil
}

// Momentary returns the loudness of the last 400 ms.
func (m *Meter) Momentary() float64 { return toLUFS(m.gate.momentary()) }

// MaxMomentary returns the loudest gating block seen so far.
func (m *Meter) MaxMomentary() float64 { return toLUFS(m.gate.loudest()) }

// Integrated returns the gated integrated loudness of everything fed since
// the last Reset.
func (m *Meter) Integrated() float64 { return m.gate.integrated() }

// Reset clears filter and gating state.
func (m *Meter) Reset() {
	for ch := range m.channels {
		m.shelf[ch].Reset()
		m.hpf[ch].Reset()
	}

	m.gate.reset()
}

// blockGate turns a stream of channel-summed K-weighted energies into
// 400 ms gating blocks with a 100 ms step.
type blockGate struct {
	window int
	step   int

	ring   []float64
	pos    int
	filled int
	since  int
	sum    float64

	blocks   []float64
	maxBlock float64
}

func newBlockGate(sampleRate float64) *blockGate {
	window := max(int(math.Round(momentaryDuration*sampleRate)), 1)

	return &blockGate{
		window: window,
		step:   max(int(math.Round(blockStepDuration*sampleRate)), 1),
		ring:   make([]float64, window),
	}
}

func (g *blockGate) push(energy float64) {
	g.sum += energy - g.ring[g.pos]
	if g.sum < 0 {
		g.sum = 0
	}

	g.ring[g.pos] = energy
	g.pos = (g.pos + 1) % g.window

	if g.filled < g.window {
		g.filled++
		if g.filled == g.window {
			g.record()
		}

		return
	}

	g.since++
	if g.since == g.step {
		g.record()
	}
}

func (g *blockGate) record() {
	ms := g.sum / float64(g.window)
	g.blocks = append(g.blocks, ms)
	g.maxBlock = math.Max(g.maxBlock, ms)
	g.since = 0
}

func (g *blockGate) momentary() float64 {
	return g.sum / float64(g.window)
}

// loudest returns the largest block mean square, or the partial window's
// mean square when no full block exists yet.
func (g *blockGate) loudest() float64 {
	if len(g.blocks) == 0 && g.filled > 0 {
		return g.sum / float64(g.filled)
	}

	return g.maxBlock
}

// integrated applies the absolute (-70 LUFS) and relative (-10 LU) gates.
// Streams shorter than one block are measured as a single partial block.
func (g *blockGate) integrated() float64 {
	blocks := g.blocks
	if len(blocks) == 0 {
		if g.filled == 0 {
			return LUFSFloor
		}

		blocks = []float64{g.sum / float64(g.filled)}
	}

	var (
		sum   float64
		count int
	)

	for _, b := range blocks {
		if toLUFS(b) > absoluteGateLUFS {
			sum += b
			count++
		}
	}

	if count == 0 {
		return LUFSFloor
	}

	threshold := toLUFS(sum/float64(count)) + relativeGateLU
	sum, count = 0, 0

	for _, b := range blocks {
		if l := toLUFS(b); l > absoluteGateLUFS && l > threshold {
			sum += b
			count++
		}
	}

	if count == 0 {
		return LUFSFloor
	}

	return toLUFS(sum / float64(count))
}

func (g *blockGate) reset() {
	clear(g.ring)
	g.pos, g.filled, g.since, g.sum = 0, 0, 0, 0
	g.blocks = g.blocks[:0]
	g.maxBlock = 0
}

// kWeighting returns the BS.1770 pre-filter pair, both with Q = 1/sqrt(2).
func kWeighting(sampleRate float64) (shelf, hpf biquad.Coefficients) {
	q := 1.0 / math.Sqrt(2)
	shelf = design.HighShelf(kWeightingShelfFreq, kWeightingShelfGain, q, sampleRate)
	hpf = design.Highpass(kWeightingHpfFreq, q, sampleRate)

	return shelf, hpf
}

// toLUFS converts a channel-summed K-weighted mean square to LUFS,
// never returning less than LUFSFloor.
func toLUFS(meanSquare float64) float64 {
	if !(meanSquare > 0) {
		return LUFSFloor
	}

	return math.Max(-0.691+10.0*math.Log10(meanSquare), LUFSFloor)
}
