package stereo

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/core"
)

var (
	// ErrMonoNotSupported is returned for buffers that do not have exactly
	// two channels.
	ErrMonoNotSupported = errors.New("stereo: analysis requires exactly two channels")
	// ErrInvalidPointCount is returned by Goniometer for maxPoints < 1.
	ErrInvalidPointCount = errors.New("stereo: point count must be >= 1")
)

var scratch = buffer.NewPool()

// Field describes the stereo image of a buffer.
type Field struct {
	// Correlation is Σlr / sqrt(Σl² Σr²) in [-1, 1]; 0 when either channel
	// is silent.
	Correlation float64
	// MidEnergy is the mean of ((l+r)/2)².
	MidEnergy float64
	// SideEnergy is the mean of ((l-r)/2)².
	SideEnergy float64
}

// Width returns SideEnergy / (MidEnergy + SideEnergy): 0 for mono content,
// 0.5 for uncorrelated channels and 1 for fully out-of-phase channels.
// Silence reports 0.
func (f Field) Width() float64 {
	total := f.MidEnergy + f.SideEnergy
	if total <= 0 {
		return 0
	}

	return f.SideEnergy / total
}

// Point is one goniometer sample: X is the side signal, Y the mid signal.
type Point struct {
	X, Y float64
}

// Analyze measures the stereo field of a two-channel buffer.
func Analyze(buf *buffer.AudioBuffer) (Field, error) {
	left, right, err := channels(buf)
	if err != nil {
		return Field{}, err
	}

	frames := len(left)
	if frames == 0 {
		return Field{}, fmt.Errorf("stereo: %w", buffer.ErrEmpty)
	}

	mid := scratch.Get(frames)
	side := scratch.Get(frames)

	defer scratch.Put(mid)
	defer scratch.Put(side)

	midSide(mid, side, left, right)

	n := float64(frames)
	field := Field{
		Correlation: correlation(left, right),
		MidEnergy:   vecmath.DotProduct(mid, mid) / n,
		SideEnergy:  vecmath.DotProduct(side, side) / n,
	}

	return field, nil
}

// Goniometer returns at most maxPoints (side, mid) pairs taken at an even
// stride through the buffer.
func Goniometer(buf *buffer.AudioBuffer, maxPoints int) ([]Point, error) {
	if maxPoints < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPointCount, maxPoints)
	}

	left, right, err := channels(buf)
	if err != nil {
		return nil, err
	}

	frames := len(left)
	if frames == 0 {
		return nil, nil
	}

	stride := (frames + maxPoints - 1) / maxPoints
	points := make([]Point, 0, (frames+stride-1)/stride)

	for i := 0; i < frames; i += stride {
		points = append(points, Point{
			X: 0.5 * (left[i] - right[i]),
			Y: 0.5 * (left[i] + right[i]),
		})
	}

	return points, nil
}

func channels(buf *buffer.AudioBuffer) (left, right []float64, err error) {
	if buf != nil && len(buf.Channels) != 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrMonoNotSupported, len(buf.Channels))
	}

	err = buf.CheckLayout()
	if err != nil {
		return nil, nil, fmt.Errorf("stereo: %w", err)
	}

	return buf.Channels[0], buf.Channels[1], nil
}

// midSide writes (l+r)/2 into mid and (l-r)/2 into side.
func midSide(mid, side, left, right []float64) {
	vecmath.AddBlock(mid, left, right)
	vecmath.ScaleBlockInPlace(mid, 0.5)

	vecmath.ScaleBlock(side, right, -1)
	vecmath.AddBlockInPlace(side, left)
	vecmath.ScaleBlockInPlace(side, 0.5)
}

func correlation(left, right []float64) float64 {
	ll := vecmath.DotProduct(left, left)
	rr := vecmath.DotProduct(right, right)

	if ll == 0 || rr == 0 {
		return 0
	}

	r := vecmath.DotProduct(left, right) / math.Sqrt(ll*rr)
	if math.IsNaN(r) {
		return 0
	}

	return core.Clamp(r, -1, 1)
}
