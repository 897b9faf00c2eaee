package steering

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TargetKind selects the propagation model of a Target.
type TargetKind int

const (
	// TargetNearField is a point source with spherical wavefronts.
	TargetNearField TargetKind = iota
	// TargetFarField is a plane wave from a fixed direction.
	TargetFarField
)

func (k TargetKind) String() string {
	switch k {
	case TargetNearField:
		return "near-field"
	case TargetFarField:
		return "far-field"
	default:
		return "unknown"
	}
}

// Target describes where a source is: a near-field position or a far-field
// direction. Exactly one is active.
type Target struct {
	kind  TargetKind
	value Point
}

// NearFieldTarget returns a point-source target at position p.
func NearFieldTarget(p Point) (Target, error) {
	if !finite(p) {
		return Target{}, fmt.Errorf("%w: non-finite position %v", ErrInvalidTarget, p)
	}
	return Target{kind: TargetNearField, value: p}, nil
}

// FarFieldTarget returns a plane-wave target arriving from direction dir,
// which points from the array toward the source. dir is normalised; a zero
// or non-finite vector is rejected.
func FarFieldTarget(dir Point) (Target, error) {
	n := r3.Norm(dir)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Target{}, fmt.Errorf("%w: direction must be non-zero and finite: %v", ErrInvalidTarget, dir)
	}
	return Target{kind: TargetFarField, value: r3.Unit(dir)}, nil
}

// AzimuthTarget returns a far-field target in the horizontal plane at
// azimuth deg (0° = +x forward, positive = leftward toward +y).
func AzimuthTarget(deg float64) (Target, error) {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return Target{}, fmt.Errorf("%w: azimuth must be finite: %f", ErrInvalidTarget, deg)
	}
	return FarFieldTarget(AzimuthDirection(deg))
}

// AzimuthDirection returns the unit vector toward azimuth deg.
func AzimuthDirection(deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: math.Cos(rad), Y: math.Sin(rad)}
}

// Kind returns the propagation model.
func (t Target) Kind() TargetKind { return t.kind }

// Position returns the source position of a near-field target.
func (t Target) Position() (Point, bool) {
	return t.value, t.kind == TargetNearField
}

// Direction returns the unit source direction of a far-field target.
func (t Target) Direction() (Point, bool) {
	return t.value, t.kind == TargetFarField
}

// Propagation returns the unit vector along which a far-field wave travels
// (source toward array), i.e. the negated direction.
func (t Target) Propagation() (Point, bool) {
	return r3.Scale(-1, t.value), t.kind == TargetFarField
}

func (t Target) String() string {
	return fmt.Sprintf("%s%v", t.kind, t.value)
}
