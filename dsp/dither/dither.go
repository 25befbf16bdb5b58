// Package dither converts normalized float samples to integer PCM for
// export, with optional TPDF dither and error-feedback noise shaping.
package dither

import (
	"fmt"
	"strings"
)

// DitherType selects how quantization error is decorrelated.
type DitherType int

const (
	// DitherNone rounds to the nearest step.
	DitherNone DitherType = iota
	// DitherTriangular adds TPDF noise of ±1 LSB before rounding.
	DitherTriangular
	// DitherShaped adds TPDF noise and feeds the quantization error back
	// through a low-shelf filter, moving noise energy towards high
	// frequencies.
	DitherShaped

	ditherTypeCount // sentinel for validation
)

var ditherTypeNames = [ditherTypeCount]string{"None", "Triangular", "Shaped"}

// String returns the name of the dither type.
func (dt DitherType) String() string {
	if dt.Valid() {
		return ditherTypeNames[dt]
	}

	return fmt.Sprintf("DitherType(%d)", int(dt))
}

// Valid reports whether dt is a known dither type.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}

// ParseDitherType resolves a dither type name case-insensitively.
// "tpdf" is accepted for DitherTriangular.
func ParseDitherType(name string) (DitherType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "tpdf" {
		return DitherTriangular, nil
	}

	for i, n := range ditherTypeNames {
		if strings.ToLower(n) == key {
			return DitherType(i), nil
		}
	}

	return 0, fmt.Errorf("dither: unknown dither type %q", name)
}
