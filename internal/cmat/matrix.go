// Package cmat implements the small dense complex square matrices used per
// frequency bin by the beamformers: in-place updates, a zero-allocation
// Gauss-Jordan inverse that reports singular or ill-conditioned input, and an
// SVD-based Moore-Penrose pseudo-inverse used as the fallback.
package cmat

import (
	"math/cmplx"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
)

// Matrix is a dense N×N complex matrix stored row-major.
type Matrix struct {
	N    int
	Data []complex128
}

// New returns a zeroed n×n matrix.
func New(n int) *Matrix {
	return &Matrix{N: n, Data: make([]complex128, n*n)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n)
	m.SetIdentity()
	return m
}

// View wraps data (len n*n) as a matrix without copying.
func View(n int, data []complex128) Matrix {
	return Matrix{N: n, Data: data[:n*n]}
}

// At returns element (i, j).
func (a *Matrix) At(i, j int) complex128 { return a.Data[i*a.N+j] }

// Set stores element (i, j).
func (a *Matrix) Set(i, j int, v complex128) { a.Data[i*a.N+j] = v }

// SetIdentity overwrites a with the identity.
func (a *Matrix) SetIdentity() {
	for i := range a.Data {
		a.Data[i] = 0
	}
	for i := range a.N {
		a.Data[i*a.N+i] = 1
	}
}

// CopyFrom copies b into a. Both must have the same size.
func (a *Matrix) CopyFrom(b *Matrix) {
	copy(a.Data, b.Data)
}

// Scale multiplies every element by s.
func (a *Matrix) Scale(s float64) {
	c := complex(s, 0)
	for i := range a.Data {
		a.Data[i] *= c
	}
}

// AddDiagonal adds d to every diagonal element.
func (a *Matrix) AddDiagonal(d complex128) {
	for i := range a.N {
		a.Data[i*a.N+i] += d
	}
}

// AddScaledOuter accumulates s·x·xᴴ into a. len(x) must be N.
func (a *Matrix) AddScaledOuter(s float64, x []complex128) {
	n := a.N
	for i := range n {
		xi := x[i] * complex(s, 0)
		row := a.Data[i*n : (i+1)*n]
		for j, xj := range x[:n] {
			row[j] += xi * cmplx.Conj(xj)
		}
	}
}

// MulVec computes dst = a·x. dst and x must not alias.
func (a *Matrix) MulVec(dst, x []complex128) {
	n := a.N
	for i := range n {
		var sum complex128
		row := a.Data[i*n : (i+1)*n]
		for j, v := range row {
			sum += v * x[j]
		}
		dst[i] = sum
	}
}

// OneNorm returns the maximum absolute column sum.
func (a *Matrix) OneNorm() float64 {
	n := a.N
	best := 0.0
	for j := range n {
		sum := 0.0
		for i := range n {
			sum += cmplx.Abs(a.Data[i*n+j])
		}
		if sum > best {
			best = sum
		}
	}
	return best
}

// IsHermitian reports whether |a(i,j) - conj(a(j,i))| <= tol for all i, j.
func (a *Matrix) IsHermitian(tol float64) bool {
	n := a.N
	for i := range n {
		for j := i; j < n; j++ {
			if cmplx.Abs(a.At(i, j)-cmplx.Conj(a.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

// IsFinite reports whether every element has finite parts.
func (a *Matrix) IsFinite() bool {
	return core.AllFiniteComplex(a.Data)
}
