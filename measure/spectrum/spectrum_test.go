package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/core"
	"github.com/cwbudde/algo-master/dsp/window"
	"github.com/cwbudde/algo-master/internal/testutil"
)

func TestCenters(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		perOctave  int
		wantLen    int
		first      float64
		last       float64
	}{
		{"octave 48k", 48000, 1, 10, 31.25, 16000},
		{"octave 32k", 32000, 1, 9, 31.25, 8000},
		{"third 44.1k", 44100, 3, 30, 1000 * math.Exp2(-16.0/3), 1000 * math.Exp2(13.0/3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Centers(tt.sampleRate, tt.perOctave)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d (%v)", len(got), tt.wantLen, got)
			}

			if math.Abs(got[0]-tt.first) > 1e-9 || math.Abs(got[len(got)-1]-tt.last) > 1e-9 {
				t.Fatalf("range = [%v, %v], want [%v, %v]", got[0], got[len(got)-1], tt.first, tt.last)
			}
		})
	}

	if Centers(0, 1) != nil || Centers(48000, 0) != nil {
		t.Fatal("invalid arguments should yield nil")
	}
}

func TestAnalyzeSineLandsInItsBand(t *testing.T) {
	const fs = 48000

	bands, err := Analyze(testutil.MonoBuffer(fs, testutil.DeterministicSine(1000, fs, 1, fs)))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(bands) != 10 {
		t.Fatalf("got %d bands, want 10", len(bands))
	}

	for _, b := range bands {
		if b.CenterHz == 1000 {
			if math.Abs(b.LevelDB-(-3.0103)) > 0.05 {
				t.Errorf("1 kHz band = %.3f dB, want -3.01", b.LevelDB)
			}

			continue
		}

		if b.LevelDB > -60 {
			t.Errorf("%.2f Hz band = %.2f dB, want below -60", b.CenterHz, b.LevelDB)
		}
	}
}

func TestAnalyzeNoiseBandsSumToMeanSquare(t *testing.T) {
	const fs = 44100

	noise := testutil.DeterministicNoise(5, 0.5, fs)

	bands, err := Analyze(testutil.MonoBuffer(fs, noise), WithBandsPerOctave(3))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	total := 0.0
	for _, b := range bands {
		total += core.DBPowerToLinear(b.LevelDB)
	}

	ms := 0.0
	for _, v := range noise {
		ms += v * v
	}

	ms /= float64(len(noise))

	if math.Abs(total-ms)/ms > 0.03 {
		t.Fatalf("band power sum %.5f, mean square %.5f", total, ms)
	}

	if last := bands[len(bands)-1]; last.HighHz != fs/2 {
		t.Fatalf("top band edge = %v, want Nyquist", last.HighHz)
	}
}

func TestAnalyzeAveragesChannels(t *testing.T) {
	const fs = 48000

	sine := testutil.DeterministicSine(250, fs, 0.5, fs)

	mono, err := Analyze(testutil.MonoBuffer(fs, sine))
	if err != nil {
		t.Fatalf("Analyze mono: %v", err)
	}

	stereo, err := Analyze(testutil.StereoBuffer(fs, sine, append([]float64(nil), sine...)))
	if err != nil {
		t.Fatalf("Analyze stereo: %v", err)
	}

	for i := range mono {
		if math.Abs(mono[i].LevelDB-stereo[i].LevelDB) > 1e-9 {
			t.Fatalf("band %d: mono %.6f, stereo %.6f", i, mono[i].LevelDB, stereo[i].LevelDB)
		}
	}

	cancelled, err := Analyze(testutil.StereoBuffer(fs, sine, scaled(sine, -1)))
	if err != nil {
		t.Fatalf("Analyze cancelled: %v", err)
	}

	for _, b := range cancelled {
		if b.LevelDB != core.SilenceFloorDB {
			t.Fatalf("out-of-phase band %.2f Hz = %v, want floor", b.CenterHz, b.LevelDB)
		}
	}
}

func scaled(x []float64, g float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = g * v
	}

	return out
}

func TestAnalyzeShortBufferShrinksBlock(t *testing.T) {
	const fs = 48000

	bands, err := Analyze(testutil.MonoBuffer(fs, testutil.DeterministicSine(1000, fs, 1, 100)),
		WithWindow(window.TypeBlackman), WithFFTSize(8192))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	levels := make([]float64, len(bands))
	loudest := 0

	for i, b := range bands {
		levels[i] = b.LevelDB
		if b.LevelDB > bands[loudest].LevelDB {
			loudest = i
		}
	}

	testutil.RequireFinite(t, levels)

	if bands[loudest].CenterHz != 1000 {
		t.Fatalf("loudest band %.2f Hz, want 1000", bands[loudest].CenterHz)
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	cfg := DefaultConfig()

	for _, opt := range []Option{WithFFTSize(1000), WithFFTSize(32), WithFFTSize(1 << 17), WithBandsPerOctave(0), WithBandsPerOctave(13)} {
		opt(&cfg)
	}

	if cfg != DefaultConfig() {
		t.Fatalf("config changed: %+v", cfg)
	}

	WithFFTSize(1024)(&cfg)
	WithBandsPerOctave(6)(&cfg)

	if cfg.FFTSize != 1024 || cfg.BandsPerOctave != 6 {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  *buffer.AudioBuffer
		want error
	}{
		{"nil", nil, buffer.ErrEmpty},
		{"empty", testutil.MonoBuffer(48000, nil), buffer.ErrEmpty},
		{"too short", testutil.MonoBuffer(48000, make([]float64, minFFTSize-1)), ErrTooShort},
		{"bad rate", testutil.MonoBuffer(-1, make([]float64, 128)), buffer.ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.buf)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
