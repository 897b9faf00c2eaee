package cmat

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultPseudoInverseRcond is the relative singular-value cutoff of
	// PseudoInverse.
	DefaultPseudoInverseRcond = 1e-12

	pivotFloor = 1e-300
)

var (
	// ErrSingular reports an exactly or numerically zero pivot.
	ErrSingular = errors.New("cmat: matrix is singular")
	// ErrIllConditioned reports a reciprocal condition number below the
	// caller's tolerance.
	ErrIllConditioned = errors.New("cmat: matrix is ill-conditioned")
	// ErrNoConvergence reports an SVD that failed to converge.
	ErrNoConvergence = errors.New("cmat: SVD did not converge")
	// ErrNonFinite reports NaN or Inf input.
	ErrNonFinite = errors.New("cmat: matrix has non-finite elements")
)

// Method identifies which inversion produced a result.
type Method int

const (
	// MethodDirect is the Gauss-Jordan inverse.
	MethodDirect Method = iota
	// MethodPseudoInverse is the SVD Moore-Penrose pseudo-inverse.
	MethodPseudoInverse
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodPseudoInverse:
		return "pseudo-inverse"
	default:
		return "unknown"
	}
}

// Workspace holds the scratch matrix of Invert. A Workspace must not be
// shared between goroutines.
type Workspace struct {
	lu Matrix
}

// NewWorkspace returns scratch space for n×n inversions.
func NewWorkspace(n int) *Workspace {
	return &Workspace{lu: *New(n)}
}

// Invert writes src⁻¹ into dst using Gauss-Jordan elimination with partial
// pivoting. It returns ErrSingular when a pivot vanishes relative to the
// largest element of src, and ErrIllConditioned when the reciprocal 1-norm
// condition number is below condTol; dst is unspecified on error. Invert does
// not allocate.
func Invert(dst, src *Matrix, ws *Workspace, condTol float64) error {
	n := src.N
	if !src.IsFinite() {
		return ErrNonFinite
	}

	lu := &ws.lu
	lu.CopyFrom(src)
	dst.SetIdentity()

	scale := 0.0
	for _, v := range src.Data {
		scale = math.Max(scale, cmplx.Abs(v))
	}
	if scale == 0 {
		return ErrSingular
	}
	tiny := math.Max(scale*1e-15, pivotFloor)

	for col := range n {
		pivot := col
		best := cmplx.Abs(lu.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := cmplx.Abs(lu.At(r, col)); v > best {
				best, pivot = v, r
			}
		}
		if best <= tiny {
			return ErrSingular
		}

		if pivot != col {
			swapRows(lu, pivot, col)
			swapRows(dst, pivot, col)
		}

		inv := 1 / lu.At(col, col)
		scaleRow(lu, col, inv)
		scaleRow(dst, col, inv)

		for r := range n {
			if r == col {
				continue
			}
			f := lu.At(r, col)
			if f == 0 {
				continue
			}
			subRow(lu, r, col, f)
			subRow(dst, r, col, f)
		}
	}

	if !dst.IsFinite() {
		return ErrSingular
	}

	rcond := 1 / (src.OneNorm() * dst.OneNorm())
	if math.IsNaN(rcond) || rcond < condTol {
		return ErrIllConditioned
	}

	return nil
}

// PseudoInverse writes the Moore-Penrose pseudo-inverse of src into dst.
// Singular values below rcond·σmax are treated as zero; rcond <= 0 selects
// DefaultPseudoInverseRcond.
//
// The complex matrix A = Ar + iAi is factored through its real embedding
// [[Ar, -Ai], [Ai, Ar]], whose pseudo-inverse is the embedding of A⁺.
func PseudoInverse(dst, src *Matrix, rcond float64) error {
	if !src.IsFinite() {
		return ErrNonFinite
	}
	if rcond <= 0 {
		rcond = DefaultPseudoInverseRcond
	}

	n := src.N
	e := mat.NewDense(2*n, 2*n, nil)
	for i := range n {
		for j := range n {
			v := src.At(i, j)
			e.Set(i, j, real(v))
			e.Set(i, j+n, -imag(v))
			e.Set(i+n, j, imag(v))
			e.Set(i+n, j+n, real(v))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(e, mat.SVDThin); !ok {
		return ErrNoConvergence
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(values) > 0 {
		cutoff = rcond * values[0]
	}

	for i := range n {
		for j := range n {
			var re, im float64
			for k, s := range values {
				if s <= cutoff || s == 0 {
					continue
				}
				re += v.At(i, k) * u.At(j, k) / s
				im += v.At(i+n, k) * u.At(j, k) / s
			}
			dst.Set(i, j, complex(re, im))
		}
	}

	return nil
}

// InvertOrPseudo attempts Invert and falls back to PseudoInverse when the
// direct inverse reports a singular or ill-conditioned matrix. The returned
// Method tells which path produced dst.
func InvertOrPseudo(dst, src *Matrix, ws *Workspace, condTol float64) (Method, error) {
	err := Invert(dst, src, ws, condTol)
	switch {
	case err == nil:
		return MethodDirect, nil
	case errors.Is(err, ErrSingular), errors.Is(err, ErrIllConditioned):
		if perr := PseudoInverse(dst, src, 0); perr != nil {
			return MethodPseudoInverse, perr
		}
		return MethodPseudoInverse, nil
	default:
		return MethodDirect, err
	}
}

func swapRows(a *Matrix, r1, r2 int) {
	n := a.N
	row1 := a.Data[r1*n : (r1+1)*n]
	row2 := a.Data[r2*n : (r2+1)*n]
	for j := range row1 {
		row1[j], row2[j] = row2[j], row1[j]
	}
}

func scaleRow(a *Matrix, r int, s complex128) {
	row := a.Data[r*a.N : (r+1)*a.N]
	for j := range row {
		row[j] *= s
	}
}

// subRow computes row r -= f·row p.
func subRow(a *Matrix, r, p int, f complex128) {
	n := a.N
	dst := a.Data[r*n : (r+1)*n]
	src := a.Data[p*n : (p+1)*n]
	for j := range dst {
		dst[j] -= f * src[j]
	}
}
