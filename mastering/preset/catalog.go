package preset

import (
	"fmt"
	"strings"
)

// ErrDuplicatePreset is returned when two presets share a name, ignoring case.
var ErrDuplicatePreset = fmt.Errorf("%w: duplicate name", ErrInvalidPreset)

// Catalog is a read-only table of presets keyed by case-insensitive name.
type Catalog struct {
	byKey map[string]Preset
	names []string
}

// CatalogOption configures catalog construction.
type CatalogOption func(*catalogConfig)

type catalogConfig struct {
	maxSampleRate int
}

// WithMaxSampleRate additionally rejects, at load time, any band whose
// frequency is not below sampleRate/2.
func WithMaxSampleRate(sampleRate int) CatalogOption {
	return func(cfg *catalogConfig) {
		if sampleRate > 0 {
			cfg.maxSampleRate = sampleRate
		}
	}
}

// NewCatalog validates presets and builds a catalog. The input slice is
// copied; later changes to it do not affect the catalog.
func NewCatalog(presets []Preset, opts ...CatalogOption) (*Catalog, error) {
	var cfg catalogConfig

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c := &Catalog{
		byKey: make(map[string]Preset, len(presets)),
		names: make([]string, 0, len(presets)),
	}

	for _, p := range presets {
		var err error
		if cfg.maxSampleRate > 0 {
			err = p.ValidateForSampleRate(cfg.maxSampleRate)
		} else {
			err = p.Validate()
		}

		if err != nil {
			return nil, err
		}

		key := normalizeName(p.Name)
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePreset, p.Name)
		}

		c.byKey[key] = p.Clone()
		c.names = append(c.names, p.Name)
	}

	return c, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(presets []Preset, opts ...CatalogOption) *Catalog {
	c, err := NewCatalog(presets, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// Lookup returns a copy of the preset with the given name, matched
// case-insensitively and ignoring surrounding whitespace.
func (c *Catalog) Lookup(name string) (Preset, error) {
	p, ok := c.byKey[normalizeName(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	return p.Clone(), nil
}

// Resolve looks up name and, if it is unknown and fallback is non-empty,
// looks up fallback instead. Errors other than an unknown name are never
// masked.
func (c *Catalog) Resolve(name, fallback string) (Preset, error) {
	p, err := c.Lookup(name)
	if err == nil || fallback == "" {
		return p, err
	}

	fp, ferr := c.Lookup(fallback)
	if ferr != nil {
		return Preset{}, fmt.Errorf("%w (fallback %q also unknown)", err, fallback)
	}

	return fp, nil
}

// Names returns preset names in catalog order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of presets.
func (c *Catalog) Len() int {
	return len(c.names)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
