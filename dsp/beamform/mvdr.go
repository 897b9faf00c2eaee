package beamform

import (
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/internal/cmat"
)

// MVDR solves minimum-variance distortionless-response weights
//
//	w = R⁻¹a / (aᴴR⁻¹a)
//
// for one bin at a time. The zero value uses the default thresholds. MVDR is
// stateless; concurrent solves need one MVDRWorkspace each.
type MVDR struct {
	// Epsilon is the magnitude of aᴴR⁻¹a below which the weights are zeroed.
	Epsilon float64
	// ConditionTolerance is the reciprocal condition number of R below
	// which the pseudo-inverse is used.
	ConditionTolerance float64
}

// MVDRWorkspace is caller-owned scratch space for MVDR.Solve.
type MVDRWorkspace struct {
	mics int
	inv  *cmat.Matrix
	ws   *cmat.Workspace
	v    []complex128
}

// NewMVDRWorkspace returns scratch space for mics-channel solves.
func NewMVDRWorkspace(mics int) *MVDRWorkspace {
	return &MVDRWorkspace{
		mics: mics,
		inv:  cmat.New(mics),
		ws:   cmat.NewWorkspace(mics),
		v:    make([]complex128, mics),
	}
}

func (s MVDR) thresholds() (eps, tol float64) {
	eps, tol = s.Epsilon, s.ConditionTolerance
	if eps <= 0 {
		eps = defaultMVDREpsilon
	}
	if tol <= 0 {
		tol = defaultMVDRConditionTol
	}
	return eps, tol
}

// Solve writes the weights for covariance r (row-major, len(a)² values) and
// steering vector a into dst. When |aᴴR⁻¹a| < Epsilon dst is zeroed and the
// result is flagged Vanishing. The returned weights satisfy wᴴa = 1
// otherwise.
func (s MVDR) Solve(r, a, dst []complex128, ws *MVDRWorkspace) (SolveResult, error) {
	m := len(a)
	if m == 0 || len(r) != m*m || len(dst) != m {
		return SolveResult{}, invalidf("mvdr shapes: covariance %d, steering %d, weights %d", len(r), m, len(dst))
	}
	if ws == nil || ws.mics != m {
		return SolveResult{}, invalidf("mvdr workspace does not match %d channels", m)
	}
	if !core.AllFiniteComplex(a) {
		return SolveResult{}, invalidf("steering vector has non-finite elements")
	}

	rm := cmat.View(m, r)
	return s.solve(&rm, a, dst, ws)
}

func (s MVDR) solve(r *cmat.Matrix, a, dst []complex128, ws *MVDRWorkspace) (SolveResult, error) {
	var res SolveResult
	eps, tol := s.thresholds()

	method, err := cmat.InvertOrPseudo(ws.inv, r, ws.ws, tol)
	if err != nil {
		return res, err
	}
	res.PseudoInverse = method == cmat.MethodPseudoInverse

	ws.inv.MulVec(ws.v, a)
	d := cmplxs.Dot(a, ws.v)
	if !core.IsFiniteComplex(d) || cmplx.Abs(d) < eps {
		res.Vanishing = true
		for i := range dst {
			dst[i] = 0
		}
		return res, nil
	}

	copy(dst, ws.v)
	cmplxs.Scale(1/d, dst)

	return res, nil
}
