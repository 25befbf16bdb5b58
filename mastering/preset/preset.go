package preset

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-master/dsp/core"
	"github.com/cwbudde/algo-master/dsp/effects/dynamics"
)

var (
	// ErrInvalidPreset reports malformed preset data: non-positive Q or
	// frequency, a frequency at or above Nyquist, or compressor parameters
	// outside their valid ranges.
	ErrInvalidPreset = errors.New("invalid preset")
	// ErrUnknownPreset is returned when a name is not in the catalog.
	ErrUnknownPreset = errors.New("unknown preset")
)

// validationSampleRate is used to construct a throwaway compressor when
// checking compressor parameters at catalog load time.
const validationSampleRate = 48000

// BandKind selects the EQ filter shape of a band.
type BandKind int

const (
	// LowShelf boosts or cuts everything below the corner frequency.
	LowShelf BandKind = iota
	// Peaking boosts or cuts a band around the centre frequency; Q sets the width.
	Peaking
	// HighShelf boosts or cuts everything above the corner frequency.
	HighShelf
)

var bandKindNames = map[BandKind]string{
	LowShelf:  "low_shelf",
	Peaking:   "peaking",
	HighShelf: "high_shelf",
}

// String returns the canonical name used in catalog files.
func (k BandKind) String() string {
	if s, ok := bandKindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("BandKind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k BandKind) Valid() bool {
	_, ok := bandKindNames[k]
	return ok
}

// ParseBandKind accepts the canonical names plus common spellings
// ("lowshelf", "low-shelf", "peak", "bell", ...), case-insensitively.
func ParseBandKind(s string) (BandKind, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))

	switch norm {
	case "lowshelf":
		return LowShelf, nil
	case "peaking", "peak", "bell":
		return Peaking, nil
	case "highshelf":
		return HighShelf, nil
	default:
		return 0, fmt.Errorf("%w: unknown band kind %q", ErrInvalidPreset, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k BandKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: band kind %d", ErrInvalidPreset, int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BandKind) UnmarshalText(text []byte) error {
	v, err := ParseBandKind(string(text))
	if err != nil {
		return err
	}

	*k = v

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *BandKind) UnmarshalYAML(node *yaml.Node) error {
	return k.UnmarshalText([]byte(node.Value))
}

// EqBand is one equalizer band.
type EqBand struct {
	Kind        BandKind `toml:"kind"         yaml:"kind"`
	FrequencyHz float64  `toml:"frequency_hz" yaml:"frequency_hz"`
	GainDB      float64  `toml:"gain_db"      yaml:"gain_db"`
	Q           float64  `toml:"q"            yaml:"q"`
}

// Validate checks the band independently of any sample rate.
func (b EqBand) Validate() error {
	switch {
	case !b.Kind.Valid():
		return fmt.Errorf("%w: band kind %d", ErrInvalidPreset, int(b.Kind))
	case !core.IsFinite(b.FrequencyHz) || b.FrequencyHz <= 0:
		return fmt.Errorf("%w: %s frequency must be > 0: %v", ErrInvalidPreset, b.Kind, b.FrequencyHz)
	case !core.IsFinite(b.GainDB):
		return fmt.Errorf("%w: %s gain must be finite: %v", ErrInvalidPreset, b.Kind, b.GainDB)
	case !core.IsFinite(b.Q) || b.Q <= 0:
		return fmt.Errorf("%w: %s q must be > 0: %v", ErrInvalidPreset, b.Kind, b.Q)
	}

	return nil
}

// CheckNyquist reports ErrInvalidPreset when the band frequency is not
// strictly below sampleRate/2.
func (b EqBand) CheckNyquist(sampleRate int) error {
	nyquist := float64(sampleRate) / 2
	if b.FrequencyHz >= nyquist {
		return fmt.Errorf("%w: %s at %v Hz is not below Nyquist (%v Hz)",
			ErrInvalidPreset, b.Kind, b.FrequencyHz, nyquist)
	}

	return nil
}

// CompressorParams configures the dynamics stage.
type CompressorParams struct {
	ThresholdDB float64 `toml:"threshold_db" yaml:"threshold_db"`
	Ratio       float64 `toml:"ratio"        yaml:"ratio"`
	AttackSec   float64 `toml:"attack_sec"   yaml:"attack_sec"`
	ReleaseSec  float64 `toml:"release_sec"  yaml:"release_sec"`
	KneeDB      float64 `toml:"knee_db"      yaml:"knee_db"`
}

// Options converts the parameters to compressor construction options.
func (c CompressorParams) Options() []dynamics.CompressorOption {
	return []dynamics.CompressorOption{
		dynamics.WithThreshold(c.ThresholdDB),
		dynamics.WithRatio(c.Ratio),
		dynamics.WithKnee(c.KneeDB),
		dynamics.WithAttack(c.AttackSec),
		dynamics.WithRelease(c.ReleaseSec),
	}
}

// Validate checks ratio >= 1, attack > 0, release > 0 and the remaining
// compressor ranges.
func (c CompressorParams) Validate() error {
	_, err := dynamics.NewCompressor(validationSampleRate, c.Options()...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}

	return nil
}

// Preset is an immutable genre mastering configuration.
type Preset struct {
	Name              string           `toml:"name"                 yaml:"name"`
	Bands             []EqBand         `toml:"band"                 yaml:"bands"`
	Compressor        CompressorParams `toml:"compressor"           yaml:"compressor"`
	GainMultiplier    float64          `toml:"gain_multiplier"      yaml:"gain_multiplier"`
	TargetLUFS        float64          `toml:"target_lufs"          yaml:"target_lufs"`
	TruePeakCeilingDB float64          `toml:"true_peak_ceiling_db" yaml:"true_peak_ceiling_db"`
}

// Validate checks every field that does not depend on the sample rate.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPreset)
	}

	for i, b := range p.Bands {
		err := b.Validate()
		if err != nil {
			return fmt.Errorf("preset %q band %d: %w", p.Name, i, err)
		}
	}

	err := p.Compressor.Validate()
	if err != nil {
		return fmt.Errorf("preset %q compressor: %w", p.Name, err)
	}

	switch {
	case !core.IsFinite(p.GainMultiplier) || p.GainMultiplier <= 0:
		return fmt.Errorf("%w: preset %q gain multiplier must be > 0: %v",
			ErrInvalidPreset, p.Name, p.GainMultiplier)
	case !core.IsFinite(p.TargetLUFS):
		return fmt.Errorf("%w: preset %q target loudness must be finite", ErrInvalidPreset, p.Name)
	case !core.IsFinite(p.TruePeakCeilingDB):
		return fmt.Errorf("%w: preset %q true-peak ceiling must be finite", ErrInvalidPreset, p.Name)
	}

	return nil
}

// ValidateForSampleRate runs Validate and additionally requires every band
// frequency to be below sampleRate/2.
func (p Preset) ValidateForSampleRate(sampleRate int) error {
	err := p.Validate()
	if err != nil {
		return err
	}

	for i, b := range p.Bands {
		err := b.CheckNyquist(sampleRate)
		if err != nil {
			return fmt.Errorf("preset %q band %d: %w", p.Name, i, err)
		}
	}

	return nil
}

// Clone returns a deep copy.
func (p Preset) Clone() Preset {
	p.Bands = append([]EqBand(nil), p.Bands...)
	return p
}
