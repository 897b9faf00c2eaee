package beamform

import (
	"math"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/internal/cmat"
)

// CovarianceTracker keeps one exponentially-forgotten, mask-weighted spatial
// covariance matrix per frequency bin:
//
//	R ← α·R + (1-α)·m·x·xᴴ + δ·I
//
// with forgetting factor α, diagonal loading δ and noise-presence mask m.
// Every matrix starts as the identity. Distinct bins may be updated from
// different goroutines; a single bin must not.
type CovarianceTracker struct {
	bins    int
	mics    int
	alpha   float64
	loading float64

	data    []complex128
	updates []int
}

// NewCovarianceTracker returns a tracker for bins matrices of size mics×mics.
// Only WithForgettingFactor and WithDiagonalLoading affect a tracker.
func NewCovarianceTracker(bins, mics int, opts ...Option) (*CovarianceTracker, error) {
	if bins < 1 || mics < 1 {
		return nil, invalidf("covariance tracker shape must be positive: %d bins × %d mics", bins, mics)
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	c := &CovarianceTracker{
		bins:    bins,
		mics:    mics,
		alpha:   cfg.alpha,
		loading: cfg.loading,
		data:    make([]complex128, bins*mics*mics),
		updates: make([]int, bins),
	}
	c.Reset()

	return c, nil
}

// Bins returns the number of frequency bins.
func (c *CovarianceTracker) Bins() int { return c.bins }

// Mics returns the matrix dimension.
func (c *CovarianceTracker) Mics() int { return c.mics }

// ForgettingFactor returns α.
func (c *CovarianceTracker) ForgettingFactor() float64 { return c.alpha }

// DiagonalLoading returns δ.
func (c *CovarianceTracker) DiagonalLoading() float64 { return c.loading }

// Updates returns how many updates bin k has seen since its last reset.
func (c *CovarianceTracker) Updates(k int) int { return c.updates[k] }

// Update folds observation x (length mics) with noise-presence weight mask
// into the matrix of bin k. It does not allocate.
func (c *CovarianceTracker) Update(k int, x []complex128, mask float64) error {
	if k < 0 || k >= c.bins {
		return invalidf("bin %d out of range [0, %d)", k, c.bins)
	}
	if len(x) != c.mics {
		return invalidf("observation has %d channels, want %d", len(x), c.mics)
	}
	if mask < 0 || math.IsNaN(mask) || math.IsInf(mask, 0) {
		return invalidf("mask must be finite and >= 0: %g", mask)
	}
	if !core.AllFiniteComplex(x) {
		return invalidf("observation has non-finite samples")
	}

	c.update(k, x, mask)

	return nil
}

func (c *CovarianceTracker) update(k int, x []complex128, mask float64) {
	r := c.matrix(k)
	r.Scale(c.alpha)
	if mask != 0 {
		r.AddScaledOuter((1-c.alpha)*mask, x)
	}
	if c.loading != 0 {
		r.AddDiagonal(complex(c.loading, 0))
	}
	c.updates[k]++
}

// Reset restores every bin to the identity.
func (c *CovarianceTracker) Reset() {
	for k := range c.bins {
		c.ResetBin(k)
	}
}

// ResetBin restores bin k to the identity.
func (c *CovarianceTracker) ResetBin(k int) {
	r := c.matrix(k)
	r.SetIdentity()
	c.updates[k] = 0
}

// Matrix returns bin k's matrix as a row-major mics×mics slice without
// copying. The slice is overwritten by subsequent updates.
func (c *CovarianceTracker) Matrix(k int) []complex128 {
	n := c.mics * c.mics
	return c.data[k*n : (k+1)*n]
}

// CopyMatrix copies bin k's matrix into dst, which must hold mics² values.
func (c *CovarianceTracker) CopyMatrix(k int, dst []complex128) error {
	if k < 0 || k >= c.bins {
		return invalidf("bin %d out of range [0, %d)", k, c.bins)
	}
	if len(dst) != c.mics*c.mics {
		return invalidf("destination holds %d values, want %d", len(dst), c.mics*c.mics)
	}
	copy(dst, c.Matrix(k))
	return nil
}

func (c *CovarianceTracker) matrix(k int) cmat.Matrix {
	return cmat.View(c.mics, c.Matrix(k))
}
