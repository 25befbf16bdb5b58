package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-master/dsp/filter/biquad"
)

func ExampleCoefficients_MagnitudeDB() {
	// Lowpass smoother with a double zero at Nyquist.
	c := biquad.Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}

	fmt.Printf("DC: %.3f dB\n", c.MagnitudeDB(0, 48000))
	fmt.Println("Nyquist below -200 dB:", c.MagnitudeDB(24000, 48000) < -200)
	fmt.Println("identity:", biquad.Identity().IsIdentity(), c.IsIdentity())

	// Output:
	// DC: 1.514 dB
	// Nyquist below -200 dB: true
	// identity: true false
}

func ExampleSection_State() {
	s := biquad.NewSection(biquad.Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})

	for _, x := range []float64{1, 0, 0} {
		s.ProcessSample(x)
	}

	saved := s.State()
	next := s.ProcessSample(0)

	s.SetState(saved)
	fmt.Printf("%.6f %.6f\n", next, s.ProcessSample(0))

	// Output:
	// 0.048000 0.048000
}
