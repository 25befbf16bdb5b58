package buffer

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedChannelLayout is returned for channel counts other than 1 or 2.
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")
	// ErrEmpty is returned for buffers without frames.
	ErrEmpty = errors.New("buffer has no frames")
	// ErrNonFinite is returned when a sample is NaN or infinite.
	ErrNonFinite = errors.New("buffer contains non-finite samples")
	// ErrRaggedChannels is returned when channels differ in length.
	ErrRaggedChannels = errors.New("channels have different lengths")
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// MaxChannels is the largest supported channel count (stereo).
const MaxChannels = 2

// AudioBuffer is decoded PCM in planar layout: Channels[c][i] is frame i of
// channel c. Samples are nominally in [-1, 1].
type AudioBuffer struct {
	SampleRate int
	Channels   [][]float64
}

// New allocates a zero-filled buffer with the given shape.
func New(sampleRate, channels, frames int) (*AudioBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannelLayout, channels)
	}

	if frames < 0 {
		frames = 0
	}

	b := &AudioBuffer{SampleRate: sampleRate, Channels: make([][]float64, channels)}
	for c := range b.Channels {
		b.Channels[c] = make([]float64, frames)
	}

	return b, nil
}

// FromInterleaved copies interleaved samples (L R L R ...) into a new
// planar buffer. A trailing partial frame is dropped.
func FromInterleaved(sampleRate, channels int, data []float64) (*AudioBuffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannelLayout, channels)
	}

	b, err := New(sampleRate, channels, len(data)/channels)
	if err != nil {
		return nil, err
	}

	for c, ch := range b.Channels {
		for i := range ch {
			ch[i] = data[i*channels+c]
		}
	}

	return b, nil
}

// Interleaved returns the samples in interleaved order.
func (b *AudioBuffer) Interleaved() []float64 {
	n := b.ChannelCount()
	frames := b.Frames()
	out := make([]float64, n*frames)

	for c, ch := range b.Channels {
		for i := range frames {
			out[i*n+c] = ch[i]
		}
	}

	return out
}

// ChannelCount returns the number of channels.
func (b *AudioBuffer) ChannelCount() int { return len(b.Channels) }

// Frames returns the number of frames (samples per channel).
func (b *AudioBuffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}

	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *AudioBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(b.Frames()) / float64(b.SampleRate)
}

// NewLike allocates a zero-filled buffer with the same sample rate, channel
// count and frame count.
func (b *AudioBuffer) NewLike() *AudioBuffer {
	out := &AudioBuffer{SampleRate: b.SampleRate, Channels: make([][]float64, len(b.Channels))}
	for c, ch := range b.Channels {
		out.Channels[c] = make([]float64, len(ch))
	}

	return out
}

// Clone returns a deep copy.
func (b *AudioBuffer) Clone() *AudioBuffer {
	out := b.NewLike()
	for c, ch := range b.Channels {
		copy(out.Channels[c], ch)
	}

	return out
}

// CheckLayout verifies sample rate, channel count and that all channels have
// the same length. It does not inspect sample values.
func (b *AudioBuffer) CheckLayout() error {
	if b == nil {
		return ErrEmpty
	}

	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, b.SampleRate)
	}

	n := len(b.Channels)
	if n < 1 || n > MaxChannels {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedChannelLayout, n)
	}

	frames := len(b.Channels[0])
	for c := 1; c < n; c++ {
		if len(b.Channels[c]) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrRaggedChannels, c, len(b.Channels[c]), frames)
		}
	}

	return nil
}

// Validate performs CheckLayout and additionally rejects empty buffers and
// NaN/Inf samples.
func (b *AudioBuffer) Validate() error {
	err := b.CheckLayout()
	if err != nil {
		return err
	}

	if b.Frames() == 0 {
		return ErrEmpty
	}

	for c, ch := range b.Channels {
		for i, x := range ch {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: channel %d frame %d = %v", ErrNonFinite, c, i, x)
			}
		}
	}

	return nil
}
