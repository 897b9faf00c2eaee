package beamform

import (
	"fmt"
	"math"
)

const (
	defaultForgettingFactor = 0.95
	defaultDiagonalLoading  = 1e-6
	defaultMVDREpsilon      = 1e-9
	defaultMVDRConditionTol = 1e-12
)

// Option configures a CovarianceTracker or a Processor. A tracker only reads
// the forgetting factor and the diagonal loading.
type Option func(*config) error

type config struct {
	alpha        float64
	loading      float64
	epsilon      float64
	conditionTol float64
	workers      int
	reference    int
	mask         MaskSource
	sense        MaskSense
	reset        ResetPolicy
}

func defaultConfig() config {
	return config{
		alpha:        defaultForgettingFactor,
		loading:      defaultDiagonalLoading,
		epsilon:      defaultMVDREpsilon,
		conditionTol: defaultMVDRConditionTol,
		workers:      1,
		mask:         ConstantMask(1),
		sense:        NoisePresence,
		reset:        NeverReset{},
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// WithForgettingFactor sets the exponential forgetting factor α of the
// covariance recursion, 0 < α < 1. Larger values average over more frames.
func WithForgettingFactor(alpha float64) Option {
	return func(cfg *config) error {
		if !(alpha > 0 && alpha < 1) {
			return fmt.Errorf("covariance forgetting factor must be in (0, 1): %g", alpha)
		}
		cfg.alpha = alpha
		return nil
	}
}

// WithDiagonalLoading sets the δ added to the diagonal on every update.
func WithDiagonalLoading(delta float64) Option {
	return func(cfg *config) error {
		if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
			return fmt.Errorf("covariance diagonal loading must be finite and >= 0: %g", delta)
		}
		cfg.loading = delta
		return nil
	}
}

// WithMVDREpsilon sets the threshold on |aᴴR⁻¹a| below which MVDR weights
// are zeroed.
func WithMVDREpsilon(eps float64) Option {
	return func(cfg *config) error {
		if eps <= 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
			return fmt.Errorf("mvdr epsilon must be finite and > 0: %g", eps)
		}
		cfg.epsilon = eps
		return nil
	}
}

// WithConditionTolerance sets the reciprocal condition number below which
// the covariance is inverted through the pseudo-inverse.
func WithConditionTolerance(tol float64) Option {
	return func(cfg *config) error {
		if tol < 0 || tol >= 1 || math.IsNaN(tol) {
			return fmt.Errorf("mvdr condition tolerance must be in [0, 1): %g", tol)
		}
		cfg.conditionTol = tol
		return nil
	}
}

// WithWorkers fans the bins of each frame out to n goroutines.
func WithWorkers(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("processor workers must be >= 1: %d", n)
		}
		cfg.workers = n
		return nil
	}
}

// WithReferenceMic selects the microphone mask features are measured
// against and whose energy drives the reset policy.
func WithReferenceMic(m int) Option {
	return func(cfg *config) error {
		if m < 0 {
			return fmt.Errorf("processor reference microphone must be >= 0: %d", m)
		}
		cfg.reference = m
		return nil
	}
}

// WithMaskSource sets the per-frame mask estimator.
func WithMaskSource(src MaskSource) Option {
	return func(cfg *config) error {
		if src == nil {
			return fmt.Errorf("processor mask source must not be nil")
		}
		cfg.mask = src
		return nil
	}
}

// WithMaskSense declares what the mask source's values mean.
func WithMaskSense(s MaskSense) Option {
	return func(cfg *config) error {
		if s != NoisePresence && s != TargetPresence {
			return fmt.Errorf("processor mask sense is unknown: %d", s)
		}
		cfg.sense = s
		return nil
	}
}

// WithResetPolicy sets when the covariance estimate is discarded.
func WithResetPolicy(p ResetPolicy) Option {
	return func(cfg *config) error {
		if p == nil {
			return fmt.Errorf("processor reset policy must not be nil")
		}
		cfg.reset = p
		return nil
	}
}
