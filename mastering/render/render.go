// Package render drives a chain over a complete buffer.
//
// Rendering is single pass and strictly sequential within a channel. With
// WithParallelChannels the EQ pass and the gain application run one
// goroutine per channel, separated by a sequential detector pre-pass that
// feeds both channels' filtered levels to the linked compressor. Both paths
// produce bit-identical output.
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/mastering/chain"
)

var (
	// ErrEmptyBuffer is returned for inputs with zero frames.
	ErrEmptyBuffer = errors.New("render: empty buffer")
	// ErrLayoutMismatch is returned when the chain was built for a different
	// sample rate or channel count than the input buffer.
	ErrLayoutMismatch = errors.New("render: chain layout does not match buffer")
	// ErrChainConsumed is returned when a chain is rendered a second time.
	ErrChainConsumed = errors.New("render: chain already used")
)

var scratch = buffer.NewPool()

// Option configures a render call.
type Option func(*config)

type config struct {
	parallel bool
}

// WithParallelChannels processes the channels of a stereo buffer
// concurrently.
func WithParallelChannels() Option {
	return func(cfg *config) {
		cfg.parallel = true
	}
}

// Render runs c over in and returns a freshly allocated output buffer of
// identical shape. The input is not modified. A chain can be rendered only
// once.
func Render(c *chain.Chain, in *buffer.AudioBuffer, opts ...Option) (*buffer.AudioBuffer, error) {
	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if c == nil {
		return nil, fmt.Errorf("%w: nil chain", ErrLayoutMismatch)
	}

	err := in.CheckLayout()
	if err != nil {
		if errors.Is(err, buffer.ErrEmpty) {
			return nil, ErrEmptyBuffer
		}

		return nil, err
	}

	if in.Frames() == 0 {
		return nil, ErrEmptyBuffer
	}

	if in.SampleRate != c.SampleRate() || in.ChannelCount() != c.ChannelCount() {
		return nil, fmt.Errorf("%w: chain %d Hz/%d ch, buffer %d Hz/%d ch", ErrLayoutMismatch,
			c.SampleRate(), c.ChannelCount(), in.SampleRate, in.ChannelCount())
	}

	if !c.Claim() {
		return nil, ErrChainConsumed
	}

	out := in.NewLike()

	if cfg.parallel && in.ChannelCount() > 1 {
		renderParallel(c, in, out)
	} else {
		renderSequential(c, in, out)
	}

	return out, nil
}

func renderSequential(c *chain.Chain, in, out *buffer.AudioBuffer) {
	channels := in.ChannelCount()
	frame := make([]float64, channels)

	for i := range in.Frames() {
		for ch := range channels {
			frame[ch] = in.Channels[ch][i]
		}

		c.ProcessFrame(frame)

		for ch := range channels {
			out.Channels[ch][i] = frame[ch]
		}
	}
}

func renderParallel(c *chain.Chain, in, out *buffer.AudioBuffer) {
	channels := in.ChannelCount()
	frames := in.Frames()

	// EQ pass, one goroutine per channel.
	forEachChannel(channels, func(ch int) {
		src, dst := in.Channels[ch], out.Channels[ch]
		for i, x := range src {
			dst[i] = c.FilterSample(ch, x)
		}
	})

	// Linked detector pre-pass: one gain per frame from all channels.
	gains := scratch.Get(frames)
	defer scratch.Put(gains)

	comp := c.Compressor()
	frame := make([]float64, channels)

	for i := range frames {
		for ch := range channels {
			frame[ch] = out.Channels[ch][i]
		}

		gains[i] = comp.NextGain(chain.DetectorLevel(frame))
	}

	// Gain application, one goroutine per channel.
	gain := c.Gain()

	forEachChannel(channels, func(ch int) {
		vecmath.MulBlockInPlace(out.Channels[ch], gains)
		vecmath.ScaleBlockInPlace(out.Channels[ch], gain)
	})
}

func forEachChannel(channels int, fn func(ch int)) {
	var wg sync.WaitGroup

	wg.Add(channels)

	for ch := range channels {
		go func() {
			defer wg.Done()
			fn(ch)
		}()
	}

	wg.Wait()
}
