package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-master/dsp/buffer"
)

// MonoBuffer wraps samples in a single-channel buffer.
func MonoBuffer(sampleRate int, samples []float64) *buffer.AudioBuffer {
	return &buffer.AudioBuffer{SampleRate: sampleRate, Channels: [][]float64{samples}}
}

// StereoBuffer wraps left and right channels in a two-channel buffer.
func StereoBuffer(sampleRate int, left, right []float64) *buffer.AudioBuffer {
	return &buffer.AudioBuffer{SampleRate: sampleRate, Channels: [][]float64{left, right}}
}

// StereoSine returns a stereo buffer with the same sine on both channels.
func StereoSine(freqHz float64, sampleRate int, amplitude float64, frames int) *buffer.AudioBuffer {
	s := DeterministicSine(freqHz, float64(sampleRate), amplitude, frames)
	return StereoBuffer(sampleRate, s, append([]float64(nil), s...))
}

// RequireFinite fails t on the first NaN or Inf in data.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireBuffersNearlyEqual fails t if the buffers differ in layout or any
// sample pair differs by more than eps. The failure names the channel and
// frame of the first mismatch and the largest difference in that channel.
func RequireBuffersNearlyEqual(t *testing.T, got, want *buffer.AudioBuffer, eps float64) {
	t.Helper()

	if got.SampleRate != want.SampleRate {
		t.Fatalf("sample rate: got %d, want %d", got.SampleRate, want.SampleRate)
	}

	if got.ChannelCount() != want.ChannelCount() {
		t.Fatalf("channel count: got %d, want %d", got.ChannelCount(), want.ChannelCount())
	}

	for ch := range got.Channels {
		g, w := got.Channels[ch], want.Channels[ch]
		if len(g) != len(w) {
			t.Fatalf("channel %d: got %d frames, want %d", ch, len(g), len(w))
		}

		first, worst := -1, 0.0

		for i := range g {
			d := math.Abs(g[i] - w[i])
			if d > eps && first < 0 {
				first = i
			}

			worst = math.Max(worst, d)
		}

		if first >= 0 {
			t.Fatalf("channel %d frame %d: got %v, want %v (max diff %g > %g)",
				ch, first, g[first], w[first], worst, eps)
		}
	}
}

// RequireBitIdentical fails t unless both buffers hold exactly the same
// samples.
func RequireBitIdentical(t *testing.T, got, want *buffer.AudioBuffer) {
	t.Helper()
	RequireBuffersNearlyEqual(t, got, want, 0)
}
