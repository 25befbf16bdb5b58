package preset

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed presets.toml
var defaultCatalogTOML []byte

// Format identifies a catalog file encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("preset: unsupported catalog extension %q", filepath.Ext(path))
	}
}

// catalogFile is the on-disk layout: a list of presets under "preset"
// (TOML array of tables) or "presets" (YAML sequence).
type catalogFile struct {
	Presets []Preset `toml:"preset" yaml:"presets"`
}

// Load decodes a catalog from r. Unknown keys are rejected so typos in
// parameter names surface as errors instead of silently defaulting to zero.
func Load(r io.Reader, format Format, opts ...CatalogOption) (*Catalog, error) {
	var file catalogFile

	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&file)
		if err != nil {
			return nil, fmt.Errorf("preset: decode toml: %w", err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}

			sort.Strings(keys)

			return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidPreset, strings.Join(keys, ", "))
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)

		err := dec.Decode(&file)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("preset: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("preset: unsupported format %v", format)
	}

	return NewCatalog(file.Presets, opts...)
}

// LoadFile reads a catalog from path; the format follows the extension.
func LoadFile(path string, opts ...CatalogOption) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	defer f.Close()

	c, err := Load(f, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Default returns the built-in genre catalog.
func Default(opts ...CatalogOption) (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalogTOML), FormatTOML, opts...)
}

// MustDefault is like Default but panics on error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}

	return c
}

// Encode writes presets in the given format, in the layout Load reads.
func Encode(w io.Writer, format Format, presets []Preset) error {
	file := catalogFile{Presets: presets}

	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(file)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(file)
		if err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("preset: unsupported format %v", format)
	}
}

// Presets returns copies of every preset in catalog order.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.byKey[normalizeName(name)].Clone())
	}

	return out
}
