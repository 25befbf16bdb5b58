package mastering

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/mastering/chain"
	"github.com/cwbudde/algo-master/mastering/preset"
	"github.com/cwbudde/algo-master/mastering/render"
	"github.com/cwbudde/algo-master/measure/spectrum"
)

// Option configures a Job.
type Option func(*config)

type config struct {
	name          string
	defaultPreset string
	logger        logrus.FieldLogger
	renderOpts    []render.Option
	spectrumOpts  []spectrum.Option
}

func defaultConfig() config {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return config{
		name:   "job",
		logger: discard,
	}
}

// WithName sets the value of the "job" log field.
func WithName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithDefaultPreset makes unknown preset names resolve to name instead of
// failing with preset.ErrUnknownPreset.
func WithDefaultPreset(name string) Option {
	return func(cfg *config) {
		cfg.defaultPreset = name
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithParallelChannels renders the channels of stereo input concurrently.
func WithParallelChannels() Option {
	return func(cfg *config) {
		cfg.renderOpts = append(cfg.renderOpts, render.WithParallelChannels())
	}
}

// WithSpectrumOptions configures the output spectrum snapshot.
func WithSpectrumOptions(opts ...spectrum.Option) Option {
	return func(cfg *config) {
		cfg.spectrumOpts = append(cfg.spectrumOpts, opts...)
	}
}

// Result is the outcome of a completed job.
type Result struct {
	Output       *buffer.AudioBuffer
	Metrics      Metrics
	InputMetrics Metrics
	Preset       preset.Preset
	Validation   Validation
}

// Job masters one buffer with one preset. A Job runs at most once.
type Job struct {
	catalog *preset.Catalog
	cfg     config

	state   atomic.Int32
	started atomic.Bool
}

// New returns a job resolving presets from catalog. A configured default
// preset must exist in the catalog.
func New(catalog *preset.Catalog, opts ...Option) (*Job, error) {
	if catalog == nil {
		return nil, ErrNoCatalog
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.defaultPreset != "" {
		_, err := catalog.Lookup(cfg.defaultPreset)
		if err != nil {
			return nil, fmt.Errorf("default preset: %w", err)
		}
	}

	return &Job{catalog: catalog, cfg: cfg}, nil
}

// State returns the current lifecycle state.
func (j *Job) State() State {
	return State(j.state.Load())
}

// Run masters in with the named preset. The input buffer is never
// modified. ctx is checked between states; a cancelled job fails with the
// context error and returns no output.
func (j *Job) Run(ctx context.Context, in *buffer.AudioBuffer, presetName string) (*Result, error) {
	if !j.started.CompareAndSwap(false, true) {
		return nil, ErrJobReused
	}

	log := j.cfg.logger.WithFields(logrus.Fields{
		"job":    j.cfg.name,
		"preset": presetName,
	})

	// Validating
	err := j.enter(ctx, StateValidating, log)
	if err != nil {
		return nil, err
	}

	err = in.Validate()
	if err != nil {
		return nil, j.fail(StateValidating, fmt.Errorf("%w: %w", ErrInvalidInput, err), log)
	}

	log = log.WithFields(logrus.Fields{
		"frames":   in.Frames(),
		"channels": in.ChannelCount(),
	})

	// Building
	err = j.enter(ctx, StateBuilding, log)
	if err != nil {
		return nil, err
	}

	p, err := j.catalog.Resolve(presetName, j.cfg.defaultPreset)
	if err != nil {
		return nil, j.fail(StateBuilding, err, log)
	}

	if !strings.EqualFold(p.Name, strings.TrimSpace(presetName)) {
		log = log.WithField("resolved", p.Name)
	}

	c, err := chain.Build(p, in.SampleRate, in.ChannelCount())
	if err != nil {
		return nil, j.fail(StateBuilding, err, log)
	}

	// Rendering
	err = j.enter(ctx, StateRendering, log)
	if err != nil {
		return nil, err
	}

	out, err := render.Render(c, in, j.cfg.renderOpts...)
	if err != nil {
		return nil, j.fail(StateRendering, fmt.Errorf("%w: %w", ErrRender, err), log)
	}

	// Analyzing
	err = j.enter(ctx, StateAnalyzing, log)
	if err != nil {
		return nil, err
	}

	outMetrics, err := Measure(out, j.cfg.spectrumOpts...)
	if err != nil {
		return nil, j.fail(StateAnalyzing, fmt.Errorf("output: %w", err), log)
	}

	inMetrics, err := Measure(in, j.cfg.spectrumOpts...)
	if err != nil {
		return nil, j.fail(StateAnalyzing, fmt.Errorf("input: %w", err), log)
	}

	res := &Result{
		Output:       out,
		Metrics:      outMetrics,
		InputMetrics: inMetrics,
		Preset:       p,
		Validation:   Validate(p, outMetrics),
	}

	if err := ctx.Err(); err != nil {
		return nil, j.fail(StateAnalyzing, err, log)
	}

	j.state.Store(int32(StateCompleted))
	log.WithFields(logrus.Fields{
		"state":         StateCompleted,
		"lufs":          outMetrics.IntegratedLUFS,
		"true_peak_db":  outMetrics.TruePeakDB,
		"delta_lu":      res.Validation.LoudnessDeltaLU,
		"peak_exceeded": res.Validation.TruePeakExceeded,
	}).Debug("job completed")

	return res, nil
}

// enter moves the job to s unless ctx is done.
func (j *Job) enter(ctx context.Context, s State, log logrus.FieldLogger) error {
	err := ctx.Err()
	if err != nil {
		return j.fail(s, err, log)
	}

	j.state.Store(int32(s))
	log.WithField("state", s).Debug("job state")

	return nil
}

func (j *Job) fail(s State, err error, log logrus.FieldLogger) error {
	j.state.Store(int32(StateFailed))
	log.WithFields(logrus.Fields{
		"state": s,
		"error": err,
	}).Warn("job failed")

	return &JobError{State: s, Err: err}
}
