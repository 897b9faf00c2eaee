package beamform

import (
	"errors"
	"fmt"
)

// ErrInvalidInput reports a caller contract violation: mismatched shapes,
// out-of-range parameters or non-finite samples.
var ErrInvalidInput = errors.New("beamform: invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Diagnostics counts the locally recovered numeric edge cases of a solve.
type Diagnostics struct {
	// Frames is the number of frames processed (adaptive path only).
	Frames int
	// Bins is the number of per-bin weight solves.
	Bins int
	// PseudoInverseBins counts solves that fell back to the pseudo-inverse
	// because the matrix was singular or ill-conditioned.
	PseudoInverseBins int
	// VanishingBins counts solves whose distortionless denominator was
	// below threshold (LCMV: normalisation skipped, MVDR: weights zeroed).
	VanishingBins int
	// Resets counts covariance resets requested by the reset policy.
	Resets int
}

func (d *Diagnostics) add(o Diagnostics) {
	d.Frames += o.Frames
	d.Bins += o.Bins
	d.PseudoInverseBins += o.PseudoInverseBins
	d.VanishingBins += o.VanishingBins
	d.Resets += o.Resets
}

func (d *Diagnostics) record(r SolveResult) {
	d.Bins++
	if r.PseudoInverse {
		d.PseudoInverseBins++
	}
	if r.Vanishing {
		d.VanishingBins++
	}
}

// SolveResult reports which fallbacks a single bin solve took.
type SolveResult struct {
	PseudoInverse bool
	Vanishing     bool
}
