package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/dither"
)

const wavFormatPCM = 1

var (
	errInvalidWAV       = errors.New("not a valid WAV file")
	errUnsupportedDepth = errors.New("unsupported bit depth")
)

// decodeWAV reads integer PCM and normalizes it to [-1, 1). It returns the
// source bit depth so the output can be written in the same format.
func decodeWAV(r io.ReadSeeker) (*buffer.AudioBuffer, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errInvalidWAV
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return nil, 0, fmt.Errorf("%w: audio format %d is not integer PCM", errInvalidWAV, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)

	err := checkBitDepth(bitDepth)
	if err != nil {
		return nil, 0, err
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read PCM data: %w", err)
	}

	scale := 1 / math.Exp2(float64(bitDepth-1))
	samples := make([]float64, len(pcm.Data))

	for i, v := range pcm.Data {
		samples[i] = float64(v) * scale
	}

	buf, err := buffer.FromInterleaved(pcm.Format.SampleRate, pcm.Format.NumChannels, samples)
	if err != nil {
		return nil, 0, err
	}

	return buf, bitDepth, nil
}

// encodeWAV quantizes buf to bitDepth with one quantizer per channel and
// writes a PCM WAV file.
func encodeWAV(w io.WriteSeeker, buf *buffer.AudioBuffer, bitDepth int, dt dither.DitherType) error {
	err := checkBitDepth(bitDepth)
	if err != nil {
		return err
	}

	channels := buf.ChannelCount()
	frames := buf.Frames()
	codes := make([]int, frames)
	data := make([]int, frames*channels)

	for ch, samples := range buf.Channels {
		quant, err := dither.NewQuantizer(float64(buf.SampleRate),
			dither.WithBitDepth(bitDepth),
			dither.WithDitherType(dt),
			dither.WithSeed(int64(ch+1)),
		)
		if err != nil {
			return err
		}

		err = quant.Quantize(codes, samples)
		if err != nil {
			return err
		}

		for i, c := range codes {
			data[i*channels+ch] = c
		}
	}

	enc := wav.NewEncoder(w, buf.SampleRate, bitDepth, channels, wavFormatPCM)

	err = enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return fmt.Errorf("write PCM data: %w", err)
	}

	return enc.Close()
}

func checkBitDepth(bits int) error {
	switch bits {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: %d (want 16, 24 or 32)", errUnsupportedDepth, bits)
	}
}
