package loudness

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/core"
	"github.com/cwbudde/algo-master/dsp/interp"
	"github.com/cwbudde/algo-master/internal/testutil"
)

func requireFiniteResult(t *testing.T, res Result) {
	t.Helper()
	testutil.RequireFinite(t, []float64{
		res.RMSDB, res.PeakDB, res.TruePeakDB, res.IntegratedLUFS, res.ShortTermLUFS,
		res.GatedLUFS, res.MaxMomentaryLUFS,
	})
}

func TestAnalyzeSilenceUsesFloors(t *testing.T) {
	buf := testutil.MonoBuffer(44100, make([]float64, 44100))

	res, err := Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	requireFiniteResult(t, res)

	if res.PeakDB != core.SilenceFloorDB {
		t.Errorf("PeakDB = %v, want %v", res.PeakDB, core.SilenceFloorDB)
	}
	if res.RMSDB != core.SilenceFloorDB {
		t.Errorf("RMSDB = %v, want %v", res.RMSDB, core.SilenceFloorDB)
	}
	if res.TruePeakDB != core.SilenceFloorDB {
		t.Errorf("TruePeakDB = %v, want %v", res.TruePeakDB, core.SilenceFloorDB)
	}
	if res.IntegratedLUFS != LUFSFloor || res.ShortTermLUFS != LUFSFloor {
		t.Errorf("loudness = %v/%v, want %v", res.IntegratedLUFS, res.ShortTermLUFS, LUFSFloor)
	}
	if res.GatedLUFS != LUFSFloor || res.MaxMomentaryLUFS != LUFSFloor {
		t.Errorf("gated = %v, max momentary = %v, want %v", res.GatedLUFS, res.MaxMomentaryLUFS, LUFSFloor)
	}
}

func TestAnalyzeSineLevels(t *testing.T) {
	const fs = 48000

	sig := testutil.DeterministicSine(1000, fs, 0.5, 4*fs)

	res, err := Analyze(testutil.MonoBuffer(fs, sig))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
		tol  float64
	}{
		{"peak", res.PeakDB, -6.0206, 0.01},
		{"true peak", res.TruePeakDB, -6.0206, 0.01},
		{"rms", res.RMSDB, -9.0309, 0.01},
		{"integrated", res.IntegratedLUFS, -9.0531, 0.02},
		{"short-term", res.ShortTermLUFS, -9.0531, 0.02},
		{"gated", res.GatedLUFS, -9.0531, 0.02},
		{"max momentary", res.MaxMomentaryLUFS, -9.0531, 0.02},
	}

	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > tt.tol {
			t.Errorf("%s = %.4f, want %.4f ± %.2f", tt.name, tt.got, tt.want, tt.tol)
		}
	}
}

func TestAnalyzeTruePeakNeverBelowSamplePeak(t *testing.T) {
	signals := map[string][]float64{
		"noise":  testutil.DeterministicNoise(7, 0.8, 4800),
		"sine":   testutil.DeterministicSine(997, 48000, 0.9, 4800),
		"dc":     testutil.DC(-0.25, 4800),
		"single": {0.5},
	}

	for name, sig := range signals {
		t.Run(name, func(t *testing.T) {
			res, err := Analyze(testutil.MonoBuffer(48000, sig))
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if res.TruePeakDB < res.PeakDB {
				t.Fatalf("TruePeakDB %.4f < PeakDB %.4f", res.TruePeakDB, res.PeakDB)
			}
			requireFiniteResult(t, res)
		})
	}
}

func TestAnalyzeDetectsInterSamplePeaks(t *testing.T) {
	// fs/4 sine sampled at 45 degrees: samples never reach the waveform peak.
	sig := make([]float64, 4096)
	for i := range sig {
		sig[i] = math.Sin(math.Pi/2*float64(i) + math.Pi/4)
	}

	buf := testutil.MonoBuffer(48000, sig)

	res, err := Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.TruePeakDB-res.PeakDB < 0.5 {
		t.Fatalf("TruePeakDB %.3f not above PeakDB %.3f", res.TruePeakDB, res.PeakDB)
	}

	linear, err := Analyze(buf, WithInterpolation(interp.ModeLinear))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(linear.TruePeakDB-linear.PeakDB) > 1e-9 {
		t.Fatalf("linear TruePeakDB %.6f, want PeakDB %.6f", linear.TruePeakDB, linear.PeakDB)
	}

	plain, err := Analyze(buf, WithOversampling(1))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if plain.TruePeakDB != plain.PeakDB {
		t.Fatalf("oversampling 1: TruePeakDB %.6f, want %.6f", plain.TruePeakDB, plain.PeakDB)
	}
}

func TestAnalyzeScalesWithGain(t *testing.T) {
	const fs = 48000

	quiet := testutil.DeterministicNoise(3, 0.1, 2*fs)
	loud := make([]float64, len(quiet))

	for i, v := range quiet {
		loud[i] = 2 * v
	}

	a, err := Analyze(testutil.MonoBuffer(fs, quiet))
	if err != nil {
		t.Fatalf("Analyze quiet: %v", err)
	}

	b, err := Analyze(testutil.MonoBuffer(fs, loud))
	if err != nil {
		t.Fatalf("Analyze loud: %v", err)
	}

	want := 20 * math.Log10(2)
	pairs := []struct {
		name     string
		low, hig float64
	}{
		{"peak", a.PeakDB, b.PeakDB},
		{"rms", a.RMSDB, b.RMSDB},
		{"true peak", a.TruePeakDB, b.TruePeakDB},
		{"integrated", a.IntegratedLUFS, b.IntegratedLUFS},
		{"short-term", a.ShortTermLUFS, b.ShortTermLUFS},
		{"gated", a.GatedLUFS, b.GatedLUFS},
		{"max momentary", a.MaxMomentaryLUFS, b.MaxMomentaryLUFS},
	}

	for _, p := range pairs {
		if d := p.hig - p.low; math.Abs(d-want) > 1e-6 {
			t.Errorf("%s delta = %.6f dB, want %.6f", p.name, d, want)
		}
	}
}

func TestAnalyzeStereoSumsChannels(t *testing.T) {
	const fs = 48000

	mono, err := Analyze(testutil.MonoBuffer(fs, testutil.DeterministicSine(1000, fs, 0.5, fs)))
	if err != nil {
		t.Fatalf("Analyze mono: %v", err)
	}

	stereo, err := Analyze(testutil.StereoSine(1000, fs, 0.5, fs))
	if err != nil {
		t.Fatalf("Analyze stereo: %v", err)
	}

	if d := stereo.IntegratedLUFS - mono.IntegratedLUFS; math.Abs(d-10*math.Log10(2)) > 1e-6 {
		t.Errorf("stereo integrated delta = %.6f, want 3.0103", d)
	}
	if math.Abs(stereo.RMSDB-mono.RMSDB) > 1e-9 {
		t.Errorf("stereo RMS %.6f != mono RMS %.6f", stereo.RMSDB, mono.RMSDB)
	}
	if stereo.PeakDB != mono.PeakDB {
		t.Errorf("stereo peak %.6f != mono peak %.6f", stereo.PeakDB, mono.PeakDB)
	}
}

func TestAnalyzeShortTermFindsLoudestWindow(t *testing.T) {
	const fs = 48000

	sig := testutil.DeterministicSine(1000, fs, 0.5, 10*fs)
	for i := range 5 * fs {
		sig[i] *= 0.02
	}

	res, err := Analyze(testutil.MonoBuffer(fs, sig))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(res.ShortTermLUFS-(-9.0531)) > 0.02 {
		t.Errorf("ShortTermLUFS = %.4f, want -9.0531", res.ShortTermLUFS)
	}
	if math.Abs(res.IntegratedLUFS-(-12.0617)) > 0.02 {
		t.Errorf("IntegratedLUFS = %.4f, want -12.0617", res.IntegratedLUFS)
	}
	if res.ShortTermLUFS < res.IntegratedLUFS {
		t.Errorf("short-term %.4f below integrated %.4f", res.ShortTermLUFS, res.IntegratedLUFS)
	}

	// The quiet half sits 34 LU down and falls under the relative gate;
	// only the three blocks straddling the step pull the result down.
	if math.Abs(res.GatedLUFS-(-9.185)) > 0.05 {
		t.Errorf("GatedLUFS = %.4f, want -9.185", res.GatedLUFS)
	}
	if math.Abs(res.MaxMomentaryLUFS-(-9.0531)) > 0.02 {
		t.Errorf("MaxMomentaryLUFS = %.4f, want -9.0531", res.MaxMomentaryLUFS)
	}
}

func TestAnalyzeGatedShorterThanOneBlock(t *testing.T) {
	const fs = 48000

	res, err := Analyze(testutil.MonoBuffer(fs, testutil.DeterministicNoise(5, 0.3, fs/5)))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(res.GatedLUFS-res.IntegratedLUFS) > 1e-9 {
		t.Errorf("GatedLUFS %.9f != IntegratedLUFS %.9f", res.GatedLUFS, res.IntegratedLUFS)
	}
	if math.Abs(res.MaxMomentaryLUFS-res.IntegratedLUFS) > 1e-9 {
		t.Errorf("MaxMomentaryLUFS %.9f != IntegratedLUFS %.9f", res.MaxMomentaryLUFS, res.IntegratedLUFS)
	}
}

func TestAnalyzeShortBufferUsesWholeSignal(t *testing.T) {
	const fs = 48000

	res, err := Analyze(testutil.MonoBuffer(fs, testutil.DeterministicNoise(11, 0.3, fs/2)))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.ShortTermLUFS != res.IntegratedLUFS {
		t.Fatalf("ShortTermLUFS %.6f != IntegratedLUFS %.6f", res.ShortTermLUFS, res.IntegratedLUFS)
	}

	windowed, err := Analyze(testutil.MonoBuffer(fs, testutil.DeterministicNoise(11, 0.3, fs/2)),
		WithShortTermWindow(0.1, 0.05))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if windowed.ShortTermLUFS < windowed.IntegratedLUFS-0.5 {
		t.Fatalf("windowed short-term %.4f far below integrated %.4f",
			windowed.ShortTermLUFS, windowed.IntegratedLUFS)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  *buffer.AudioBuffer
		want error
	}{
		{"nil", nil, buffer.ErrEmpty},
		{"no frames", testutil.MonoBuffer(48000, nil), buffer.ErrEmpty},
		{"three channels", &buffer.AudioBuffer{
			SampleRate: 48000,
			Channels:   [][]float64{{0}, {0}, {0}},
		}, buffer.ErrUnsupportedChannelLayout},
		{"bad rate", testutil.MonoBuffer(0, []float64{0}), buffer.ErrInvalidSampleRate},
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
