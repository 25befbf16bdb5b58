// Command mastering applies a genre preset to a WAV file and prints a
// loudness, stereo and spectrum report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/dsp/dither"
	"github.com/cwbudde/algo-master/dsp/window"
	"github.com/cwbudde/algo-master/mastering"
	"github.com/cwbudde/algo-master/mastering/preset"
	"github.com/cwbudde/algo-master/measure/spectrum"
)

var errMissingArgs = errors.New("input and output files are required")

// CLI defines the command-line interface.
type CLI struct {
	Input  string `arg:"" optional:"" name:"input"  help:"Input WAV file"  type:"existingfile"`
	Output string `arg:"" optional:"" name:"output" help:"Output WAV file" type:"path"`

	Preset        string `short:"p" default:"no-op" help:"Preset name (case-insensitive)"`
	Presets       string `type:"existingfile" help:"TOML or YAML preset catalog (default: built-in)"`
	DefaultPreset string `help:"Preset used when --preset is not in the catalog"`
	Parallel      bool   `help:"Render channels concurrently"`
	Dither        string `default:"triangular" enum:"none,triangular,shaped" help:"Dither applied when writing the output (none, triangular, shaped)"`
	Window        string `default:"hann" help:"Spectrum analysis window (rectangular, hann, hamming, blackman, blackman-harris, flattop)"`
	Bands         int    `name:"bands-per-octave" default:"1" help:"Spectrum bands per octave (1-12)"`
	LogLevel      string `default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	List          bool   `short:"l" help:"List catalog presets and exit"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("mastering"),
		kong.Description("Offline mastering: EQ, compression and gain with loudness analysis"),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, &cli, os.Stdout, os.Stderr)
	if err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cli *CLI, stdout, stderr io.Writer) error {
	logger, err := newLogger(cli.LogLevel, stderr)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cli.Presets)
	if err != nil {
		return err
	}

	if cli.List {
		printPresets(stdout, catalog.Names())
		return nil
	}

	if cli.Input == "" || cli.Output == "" {
		return errMissingArgs
	}

	ditherType, err := dither.ParseDitherType(cli.Dither)
	if err != nil {
		return err
	}

	in, bitDepth, err := readWAV(cli.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", cli.Input, err)
	}

	spectrumOpts, err := cli.spectrumOptions()
	if err != nil {
		return err
	}

	opts := []mastering.Option{
		mastering.WithName(filepath.Base(cli.Input)),
		mastering.WithLogger(logger),
		mastering.WithSpectrumOptions(spectrumOpts...),
	}
	if cli.DefaultPreset != "" {
		opts = append(opts, mastering.WithDefaultPreset(cli.DefaultPreset))
	}

	if cli.Parallel {
		opts = append(opts, mastering.WithParallelChannels())
	}

	job, err := mastering.New(catalog, opts...)
	if err != nil {
		return err
	}

	res, err := job.Run(ctx, in, cli.Preset)
	if err != nil {
		return err
	}

	err = writeWAV(cli.Output, res.Output, bitDepth, ditherType)
	if err != nil {
		return fmt.Errorf("write %s: %w", cli.Output, err)
	}

	logger.WithFields(logrus.Fields{
		"output":    cli.Output,
		"bit_depth": bitDepth,
		"dither":    ditherType,
	}).Info("output written")

	fmt.Fprint(stdout, renderReport(res, cli.Input, cli.Output))

	return nil
}

func (cli *CLI) spectrumOptions() ([]spectrum.Option, error) {
	opts := []spectrum.Option{spectrum.WithBandsPerOctave(cli.Bands)}

	if cli.Window != "" {
		t, err := window.ParseType(cli.Window)
		if err != nil {
			return nil, err
		}

		opts = append(opts, spectrum.WithWindow(t))
	}

	return opts, nil
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	return logger, nil
}

func loadCatalog(path string) (*preset.Catalog, error) {
	if path == "" {
		return preset.Default()
	}

	return preset.LoadFile(path)
}

func readWAV(path string) (*buffer.AudioBuffer, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return decodeWAV(f)
}

func writeWAV(path string, buf *buffer.AudioBuffer, bitDepth int, dt dither.DitherType) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = encodeWAV(f, buf, bitDepth, dt)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
