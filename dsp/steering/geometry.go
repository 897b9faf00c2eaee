package steering

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
)

const (
	// DefaultSpeedOfSound is the speed of sound in air at ~20 °C (m/s).
	DefaultSpeedOfSound = 343.0

	// minDistance floors source-to-microphone distances.
	minDistance = 1e-6

	unitNormTolerance = 1e-9
)

var (
	// ErrInvalidGeometry reports an unusable microphone layout.
	ErrInvalidGeometry = errors.New("steering: invalid array geometry")
	// ErrInvalidTarget reports an unusable source position or direction.
	ErrInvalidTarget = errors.New("steering: invalid target")
)

// Point is a 3D position or direction in meters.
type Point = r3.Vec

func finite(p Point) bool {
	return core.IsFinite(p.X) && core.IsFinite(p.Y) && core.IsFinite(p.Z)
}

// distance returns |p-q| floored at minDistance.
func distance(p, q Point) float64 {
	return math.Max(r3.Norm(r3.Sub(p, q)), minDistance)
}

// Geometry is an ordered, immutable set of microphone positions.
type Geometry struct {
	mics []Point
}

// NewGeometry validates and copies microphone positions. At least two
// microphones with finite coordinates are required. Coincident microphones
// are allowed; the solvers handle the resulting rank deficiency.
func NewGeometry(mics ...Point) (Geometry, error) {
	if len(mics) < 2 {
		return Geometry{}, fmt.Errorf("%w: need at least 2 microphones, got %d", ErrInvalidGeometry, len(mics))
	}

	for i, p := range mics {
		if !finite(p) {
			return Geometry{}, fmt.Errorf("%w: microphone %d has non-finite position %v", ErrInvalidGeometry, i, p)
		}
	}

	return Geometry{mics: append([]Point(nil), mics...)}, nil
}

// Len returns the microphone count M.
func (g Geometry) Len() int { return len(g.mics) }

// Mic returns the position of microphone i.
func (g Geometry) Mic(i int) Point { return g.mics[i] }

// Centroid returns the mean microphone position.
func (g Geometry) Centroid() Point {
	var c Point
	for _, p := range g.mics {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(g.mics)), c)
}

// Delays returns the propagation delay from source to every microphone
// relative to microphone 0, in seconds. Positive values arrive later than
// microphone 0.
func Delays(g Geometry, source Point, c float64) ([]float64, error) {
	if err := validateSpeed(c); err != nil {
		return nil, err
	}
	if g.Len() == 0 {
		return nil, ErrInvalidGeometry
	}
	if !finite(source) {
		return nil, fmt.Errorf("%w: non-finite source %v", ErrInvalidTarget, source)
	}

	d0 := distance(g.mics[0], source)
	out := make([]float64, g.Len())
	for m, mic := range g.mics {
		out[m] = (distance(mic, source) - d0) / c
	}

	return out, nil
}

func validateSpeed(c float64) error {
	if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return fmt.Errorf("%w: speed of sound must be > 0: %f", ErrInvalidGeometry, c)
	}
	return nil
}
