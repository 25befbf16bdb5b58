package window

import (
	"math"
	"testing"
)

func TestGenerateSymmetric(t *testing.T) {
	for typ := range typeCount {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 65)
			if len(w) != 65 {
				t.Fatalf("len = %d, want 65", len(w))
			}

			for i := range w {
				if math.IsNaN(w[i]) || math.IsInf(w[i], 0) {
					t.Fatalf("w[%d] = %v", i, w[i])
				}
				if math.Abs(w[i]-w[len(w)-1-i]) > 1e-12 {
					t.Fatalf("asymmetry at %d: %v vs %v", i, w[i], w[len(w)-1-i])
				}
			}

			// Every cosine-sum window peaks at 1 in the centre.
			if math.Abs(w[32]-1) > 1e-6 {
				t.Fatalf("centre = %v, want 1", w[32])
			}
		})
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("zero length = %v, want nil", w)
	}

	if w := Generate(TypeHann, 1); len(w) != 1 || w[0] != 0 {
		t.Fatalf("length 1 = %v", w)
	}

	unknown := Generate(Type(42), 8)
	for i, v := range unknown {
		if v != 1 {
			t.Fatalf("unknown type w[%d] = %v, want rectangular", i, v)
		}
	}
}

func TestPeriodicHann(t *testing.T) {
	sym := Generate(TypeHann, 16)
	per := Generate(TypeHann, 16, WithPeriodic())

	if sym[15] > 1e-12 {
		t.Fatalf("symmetric Hann must end at zero, got %v", sym[15])
	}

	// The periodic form is the first N points of an N+1 symmetric window.
	long := Generate(TypeHann, 17)
	for i := range per {
		if math.Abs(per[i]-long[i]) > 1e-12 {
			t.Fatalf("periodic[%d] = %v, want %v", i, per[i], long[i])
		}
	}
}

func TestEquivalentNoiseBandwidth(t *testing.T) {
	tests := []struct {
		typ  Type
		want float64
		tol  float64
	}{
		{TypeRectangular, 1, 1e-12},
		{TypeHann, 1.5, 1e-9},
		{TypeHamming, 1.3628, 1e-3},
		{TypeBlackman, 1.7268, 1e-3},
	}

	for _, tt := range tests {
		got := EquivalentNoiseBandwidth(Generate(tt.typ, 4096, WithPeriodic()))
		if math.Abs(got-tt.want) > tt.tol {
			t.Errorf("%v ENBW = %v, want %v", tt.typ, got, tt.want)
		}
	}

	if got := EquivalentNoiseBandwidth([]float64{1, -1}); got != 0 {
		t.Fatalf("zero-sum ENBW = %v, want 0", got)
	}
}

func TestParseType(t *testing.T) {
	for typ := range typeCount {
		got, err := ParseType(" " + typ.String() + " ")
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}

	if got, err := ParseType("HANN"); err != nil || got != TypeHann {
		t.Fatalf("ParseType(HANN) = %v, %v", got, err)
	}

	if _, err := ParseType("kaiser"); err == nil {
		t.Fatal("expected error for unknown window")
	}

	if Type(-1).Valid() || Type(-1).String() != "Type(-1)" {
		t.Fatal("negative type should be invalid")
	}

	if len(Names()) != int(typeCount) || Names()[1] != "hann" {
		t.Fatalf("Names() = %v", Names())
	}
}
