package dither_test

import (
	"fmt"

	"github.com/cwbudde/algo-master/dsp/dither"
)

func ExampleQuantizer_Quantize() {
	quant, err := dither.NewQuantizer(44100,
		dither.WithBitDepth(16),
		dither.WithDitherType(dither.DitherNone),
	)
	if err != nil {
		panic(err)
	}

	src := []float64{0, 0.25, 0.5, -1, 1}
	codes := make([]int, len(src))

	if err := quant.Quantize(codes, src); err != nil {
		panic(err)
	}

	fmt.Println(codes)
	// Output: [0 8192 16384 -32768 32767]
}

func ExampleNewQuantizer() {
	quant, err := dither.NewQuantizer(48000,
		dither.WithBitDepth(24),
		dither.WithDitherType(dither.DitherShaped),
		dither.WithSeed(42),
	)
	if err != nil {
		panic(err)
	}

	lo, hi := quant.Range()
	fmt.Println(quant.DitherType(), lo, hi)
	// Output: Shaped -8388608 8388607
}
