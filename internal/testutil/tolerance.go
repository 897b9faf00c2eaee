package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireComplexNearlyEqual fails t if |got-want| > eps.
func RequireComplexNearlyEqual(t *testing.T, name string, got, want complex128, eps float64) {
	t.Helper()
	if !core.NearlyEqualComplex(got, want, eps) {
		t.Fatalf("%s = %v, want %v (|diff| %v > eps %v)", name, got, want, cmplx.Abs(got-want), eps)
	}
}

// RequireFiniteComplex fails t if any element has a NaN or Inf part.
func RequireFiniteComplex(t *testing.T, data []complex128) {
	t.Helper()
	for i, v := range data {
		if !core.IsFiniteComplex(v) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}
