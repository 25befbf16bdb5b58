package interp

import "fmt"

// Mode selects an interpolation kernel.
type Mode int

const (
	// ModeHermite uses 4-point cubic Hermite interpolation.
	ModeHermite Mode = iota
	// ModeLinear uses 2-point linear interpolation.
	ModeLinear
)

// String returns the kernel name.
func (m Mode) String() string {
	switch m {
	case ModeHermite:
		return "hermite"
	case ModeLinear:
		return "linear"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m names a known kernel.
func (m Mode) Valid() bool {
	return m == ModeHermite || m == ModeLinear
}

// At evaluates the kernel between x0 and x1 at fractional position t in
// [0,1]. xm1 and x2 are the outer neighbours; the linear kernel ignores them.
func (m Mode) At(t, xm1, x0, x1, x2 float64) float64 {
	if m == ModeLinear {
		return Linear2(t, x0, x1)
	}

	return Hermite4(t, xm1, x0, x1, x2)
}

// Linear2 computes 2-point linear interpolation from x0 to x1.
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

// OversampledPeak returns the largest absolute value of x reconstructed at
// factor points per sample interval, including the original samples.
// Samples outside the slice are taken as the nearest edge sample.
func OversampledPeak(x []float64, factor int, mode Mode) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}

	if factor < 1 {
		factor = 1
	}

	at := func(i int) float64 {
		switch {
		case i < 0:
			return x[0]
		case i >= n:
			return x[n-1]
		default:
			return x[i]
		}
	}

	peak := 0.0

	for i := range n {
		if v := abs(x[i]); v > peak {
			peak = v
		}

		if i == n-1 {
			break
		}

		xm1, x0, x1, x2 := at(i-1), x[i], x[i+1], at(i+2)

		for k := 1; k < factor; k++ {
			t := float64(k) / float64(factor)
			if v := abs(mode.At(t, xm1, x0, x1, x2)); v > peak {
				peak = v
			}
		}
	}

	return peak
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
