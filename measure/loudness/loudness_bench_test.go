package loudness

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-master/internal/testutil"
)

func BenchmarkMeterProcessInterleaved(b *testing.B) {
	for _, ch := range []int{1, 2} {
		b.Run(fmt.Sprintf("%dch", ch), func(b *testing.B) {
			m, err := NewMeter(48000, ch)
			if err != nil {
				b.Fatal(err)
			}

			block := testutil.DeterministicNoise(1, 0.5, 1024*ch)

			b.SetBytes(int64(len(block) * 8))
			b.ResetTimer()

			for range b.N {
				m.ProcessInterleaved(block)
			}
		})
	}
}

func BenchmarkAnalyze(b *testing.B) {
	buf := testutil.StereoSine(1000, 48000, 0.5, 10*48000)

	b.ResetTimer()

	for range b.N {
		_, err := Analyze(buf)
		if err != nil {
			b.Fatal(err)
		}
	}
}
