package beamform

import (
	"errors"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/AshwinBarnwal/Beamforming-via-ML/internal/cmat"
	"github.com/AshwinBarnwal/Beamforming-via-ML/internal/testutil"
)

// randomPSD returns B·Bᴴ + load·I for a random n×n B.
func randomPSD(seed int64, n int, load float64) []complex128 {
	b := testutil.ComplexGaussian(seed, n*n)
	r := cmat.New(n)
	for col := range n {
		x := make([]complex128, n)
		for i := range n {
			x[i] = b[i*n+col]
		}
		r.AddScaledOuter(1, x)
	}
	r.AddDiagonal(complex(load, 0))
	return r.Data
}

func quadForm(r, w []complex128) float64 {
	n := len(w)
	rm := cmat.View(n, r)
	rw := make([]complex128, n)
	rm.MulVec(rw, w)
	return real(cmplxs.Dot(w, rw))
}

func TestMVDRDistortionless(t *testing.T) {
	const mics = 4
	ws := NewMVDRWorkspace(mics)
	a := []complex128{1, cmplx.Exp(0.4i), cmplx.Exp(-2.1i), cmplx.Exp(1.3i)}

	for seed := range int64(5) {
		r := randomPSD(seed, mics, 0.1)
		w := make([]complex128, mics)

		res, err := MVDR{}.Solve(r, a, w, ws)
		if err != nil {
			t.Fatalf("Solve() error = %v", err)
		}
		if res.Vanishing || res.PseudoInverse {
			t.Fatalf("seed %d: unexpected fallback %+v", seed, res)
		}
		testutil.RequireComplexNearlyEqual(t, "wᴴa", Apply(w, a), 1, 1e-9)
	}
}

func TestMVDRBeatsDelayAndSumVariance(t *testing.T) {
	const mics = 4
	ws := NewMVDRWorkspace(mics)
	a := []complex128{1, cmplx.Exp(0.9i), cmplx.Exp(-0.3i), cmplx.Exp(2.2i)}
	r := randomPSD(42, mics, 0.05)

	w := make([]complex128, mics)
	if _, err := (MVDR{}).Solve(r, a, w, ws); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	ds := make([]complex128, mics)
	copy(ds, a)
	cmplxs.Scale(complex(1.0/mics, 0), ds)

	if pm, pd := quadForm(r, w), quadForm(r, ds); pm > pd*(1+1e-12) {
		t.Fatalf("MVDR output power %v exceeds delay-and-sum %v", pm, pd)
	}
}

func TestMVDRVanishingResponseZeroesWeights(t *testing.T) {
	ws := NewMVDRWorkspace(2)
	w := []complex128{5, 5}

	res, err := MVDR{}.Solve([]complex128{1, 0, 0, 1}, []complex128{0, 0}, w, ws)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !res.Vanishing {
		t.Fatal("expected vanishing response")
	}
	if w[0] != 0 || w[1] != 0 {
		t.Fatalf("weights = %v, want zero", w)
	}
}

func TestMVDRSingularCovarianceFallsBack(t *testing.T) {
	const mics = 4
	a := []complex128{1, 1i, -1, -1i}
	r := cmat.New(mics)
	r.AddScaledOuter(1, a)

	w := make([]complex128, mics)
	res, err := MVDR{}.Solve(r.Data, a, w, NewMVDRWorkspace(mics))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !res.PseudoInverse {
		t.Fatal("expected pseudo-inverse fallback")
	}
	testutil.RequireFiniteComplex(t, w)
	testutil.RequireComplexNearlyEqual(t, "wᴴa", Apply(w, a), 1, 1e-9)
}

func TestMVDRValidation(t *testing.T) {
	ws := NewMVDRWorkspace(2)
	id := []complex128{1, 0, 0, 1}
	a := []complex128{1, 1}

	for name, fn := range map[string]func() error{
		"covariance": func() error { _, err := MVDR{}.Solve(id[:3], a, make([]complex128, 2), ws); return err },
		"weights":    func() error { _, err := MVDR{}.Solve(id, a, make([]complex128, 3), ws); return err },
		"workspace":  func() error { _, err := MVDR{}.Solve(id, a, make([]complex128, 2), NewMVDRWorkspace(3)); return err },
		"steering":   func() error { _, err := MVDR{}.Solve(id, []complex128{cmplx.Inf(), 1}, make([]complex128, 2), ws); return err },
	} {
		if err := fn(); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: error = %v, want ErrInvalidInput", name, err)
		}
	}
}

func BenchmarkMVDRSolve(b *testing.B) {
	const mics = 4
	r := randomPSD(3, mics, 0.1)
	a := []complex128{1, 1i, -1, -1i}
	w := make([]complex128, mics)
	ws := NewMVDRWorkspace(mics)

	b.ReportAllocs()
	for b.Loop() {
		_, _ = MVDR{}.Solve(r, a, w, ws)
	}
}
