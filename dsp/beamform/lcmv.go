package beamform

import (
	"fmt"
	"math"
	"math/cmplx"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/cmplxs"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/steering"
	"github.com/AshwinBarnwal/Beamforming-via-ML/internal/cmat"
)

const (
	defaultLCMVRegularization = 1e-6
	defaultLCMVConditionTol   = 1e-6
	defaultLCMVVanishing      = 1e-6
)

// ConstraintSet lists the steering matrices of an LCMV problem with their
// desired responses. Steering[0] is the target; the remaining entries are
// directions to suppress.
type ConstraintSet struct {
	Steering []*steering.Vectors
	Response []complex128
}

// NewConstraintSet builds the usual distortionless-target, null-interferer
// set: response 1 toward target and 0 toward every null.
func NewConstraintSet(target *steering.Vectors, nulls ...*steering.Vectors) (ConstraintSet, error) {
	cs := ConstraintSet{
		Steering: make([]*steering.Vectors, 0, 1+len(nulls)),
		Response: make([]complex128, 1+len(nulls)),
	}
	cs.Steering = append(cs.Steering, target)
	cs.Steering = append(cs.Steering, nulls...)
	cs.Response[0] = 1

	if err := cs.validate(); err != nil {
		return ConstraintSet{}, err
	}

	return cs, nil
}

// Len returns the number of constraints.
func (cs ConstraintSet) Len() int { return len(cs.Steering) }

func (cs ConstraintSet) validate() error {
	if len(cs.Steering) == 0 {
		return invalidf("constraint set is empty")
	}
	if len(cs.Response) != len(cs.Steering) {
		return invalidf("constraint set has %d steering matrices but %d responses",
			len(cs.Steering), len(cs.Response))
	}

	first := cs.Steering[0]
	if first == nil {
		return invalidf("constraint 0 is nil")
	}
	if first.Mics < 2 || first.Bins < 1 {
		return invalidf("constraint 0 has shape %d×%d", first.Bins, first.Mics)
	}
	for i, v := range cs.Steering {
		if v == nil {
			return invalidf("constraint %d is nil", i)
		}
		if v.Bins != first.Bins || v.Mics != first.Mics || len(v.Data) != v.Bins*v.Mics {
			return invalidf("constraint %d has shape %d×%d, want %d×%d",
				i, v.Bins, v.Mics, first.Bins, first.Mics)
		}
		if !core.AllFiniteComplex(v.Data) {
			return invalidf("constraint %d has non-finite elements", i)
		}
	}
	for i, g := range cs.Response {
		if !core.IsFiniteComplex(g) {
			return invalidf("response %d is not finite", i)
		}
	}

	return nil
}

// LCMVOption configures SolveLCMV.
type LCMVOption func(*lcmvConfig) error

type lcmvConfig struct {
	regularization float64
	conditionTol   float64
	vanishing      float64
	workers        int
}

func defaultLCMVConfig() lcmvConfig {
	return lcmvConfig{
		regularization: defaultLCMVRegularization,
		conditionTol:   defaultLCMVConditionTol,
		vanishing:      defaultLCMVVanishing,
		workers:        1,
	}
}

// WithLCMVRegularization sets the ridge ε added to the Gram matrix CᴴC.
func WithLCMVRegularization(eps float64) LCMVOption {
	return func(cfg *lcmvConfig) error {
		if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
			return fmt.Errorf("lcmv regularization must be finite and >= 0: %g", eps)
		}
		cfg.regularization = eps
		return nil
	}
}

// WithLCMVConditionTolerance sets the reciprocal condition number below
// which the Gram matrix is inverted through the pseudo-inverse.
func WithLCMVConditionTolerance(tol float64) LCMVOption {
	return func(cfg *lcmvConfig) error {
		if tol < 0 || tol >= 1 || math.IsNaN(tol) {
			return fmt.Errorf("lcmv condition tolerance must be in [0, 1): %g", tol)
		}
		cfg.conditionTol = tol
		return nil
	}
}

// WithLCMVVanishingThreshold sets the magnitude of the target response below
// which the distortionless normalisation is skipped.
func WithLCMVVanishingThreshold(th float64) LCMVOption {
	return func(cfg *lcmvConfig) error {
		if th < 0 || math.IsNaN(th) || math.IsInf(th, 0) {
			return fmt.Errorf("lcmv vanishing threshold must be finite and >= 0: %g", th)
		}
		cfg.vanishing = th
		return nil
	}
}

// WithLCMVWorkers solves bins on n goroutines.
func WithLCMVWorkers(n int) LCMVOption {
	return func(cfg *lcmvConfig) error {
		if n < 1 {
			return fmt.Errorf("lcmv workers must be >= 1: %d", n)
		}
		cfg.workers = n
		return nil
	}
}

// SolveLCMV computes per-bin weights minimising output power subject to
// wᴴC = gᴴ. With the minimum-norm closed form
//
//	w0 = C (CᴴC + εI)⁻¹ g
//
// each bin is then rescaled so that the target response wᴴa₀ is exactly 1.
// When |w0ᴴa₀| is below the vanishing threshold the rescaling is skipped and
// the bin is counted in Diagnostics.VanishingBins. Ill-conditioned Gram
// matrices, for instance from coincident microphones or a null placed on the
// target, are inverted with the pseudo-inverse and counted in
// Diagnostics.PseudoInverseBins.
func SolveLCMV(cs ConstraintSet, opts ...LCMVOption) (*Weights, Diagnostics, error) {
	cfg := defaultLCMVConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, Diagnostics{}, err
		}
	}
	if err := cs.validate(); err != nil {
		return nil, Diagnostics{}, err
	}

	bins := cs.Steering[0].Bins
	mics := cs.Steering[0].Mics
	w := NewWeights(bins, mics)

	chunks := splitBins(bins, cfg.workers)
	diags := make([]Diagnostics, len(chunks))

	var g errgroup.Group
	for i, c := range chunks {
		g.Go(func() error {
			s := newLCMVScratch(cs.Len())
			for k := c.lo; k < c.hi; k++ {
				res, err := s.solve(cs, k, cfg, w.Vector(k))
				if err != nil {
					return fmt.Errorf("lcmv bin %d: %w", k, err)
				}
				diags[i].record(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Diagnostics{}, err
	}

	var diag Diagnostics
	for _, d := range diags {
		diag.add(d)
	}

	return w, diag, nil
}

type lcmvScratch struct {
	gram *cmat.Matrix
	inv  *cmat.Matrix
	ws   *cmat.Workspace
	h    []complex128
}

func newLCMVScratch(k int) *lcmvScratch {
	return &lcmvScratch{
		gram: cmat.New(k),
		inv:  cmat.New(k),
		ws:   cmat.NewWorkspace(k),
		h:    make([]complex128, k),
	}
}

func (s *lcmvScratch) solve(cs ConstraintSet, k int, cfg lcmvConfig, w []complex128) (SolveResult, error) {
	var res SolveResult
	n := cs.Len()

	// G[i][j] = c_iᴴ c_j
	for i := range n {
		ci := cs.Steering[i].Vector(k)
		for j := i; j < n; j++ {
			v := cmplxs.Dot(ci, cs.Steering[j].Vector(k))
			s.gram.Set(i, j, v)
			s.gram.Set(j, i, cmplx.Conj(v))
		}
	}
	s.gram.AddDiagonal(complex(cfg.regularization, 0))

	method, err := cmat.InvertOrPseudo(s.inv, s.gram, s.ws, cfg.conditionTol)
	if err != nil {
		return res, err
	}
	res.PseudoInverse = method == cmat.MethodPseudoInverse

	s.inv.MulVec(s.h, cs.Response)

	for m := range w {
		w[m] = 0
	}
	for j := range n {
		cmplxs.AddScaled(w, s.h[j], cs.Steering[j].Vector(k))
	}

	denom := cmplxs.Dot(w, cs.Steering[0].Vector(k))
	if cmplx.Abs(denom) < cfg.vanishing {
		res.Vanishing = true
		return res, nil
	}
	cmplxs.Scale(1/cmplx.Conj(denom), w)

	return res, nil
}

// DelayAndSum returns phase-aligning weights w = a / (aᴴa) for every bin of
// a. The target response is 1 and no interferer is suppressed.
func DelayAndSum(a *steering.Vectors) (*Weights, error) {
	if a == nil || a.Mics < 1 || len(a.Data) != a.Bins*a.Mics {
		return nil, invalidf("malformed steering matrix")
	}
	if !core.AllFiniteComplex(a.Data) {
		return nil, invalidf("steering matrix has non-finite elements")
	}

	w := NewWeights(a.Bins, a.Mics)
	for k := range a.Bins {
		ak := a.Vector(k)
		norm := real(cmplxs.Dot(ak, ak))
		if norm == 0 {
			continue
		}
		dst := w.Vector(k)
		copy(dst, ak)
		cmplxs.Scale(complex(1/norm, 0), dst)
	}

	return w, nil
}

type binRange struct{ lo, hi int }

// splitBins partitions [0, bins) into at most workers contiguous ranges.
func splitBins(bins, workers int) []binRange {
	if workers < 1 {
		workers = 1
	}
	if workers > bins {
		workers = bins
	}
	out := make([]binRange, 0, workers)
	size := (bins + workers - 1) / workers
	for lo := 0; lo < bins; lo += size {
		out = append(out, binRange{lo: lo, hi: min(lo+size, bins)})
	}
	return out
}
