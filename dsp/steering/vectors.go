package steering

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vectors holds one steering vector per frequency bin.
type Vectors struct {
	Bins int
	Mics int
	// Data holds microphone m of bin k at Data[k*Mics+m].
	Data []complex128
}

// NewVectors allocates a zeroed bins×mics steering matrix.
func NewVectors(bins, mics int) *Vectors {
	return &Vectors{Bins: bins, Mics: mics, Data: make([]complex128, bins*mics)}
}

// Vector returns the steering vector of bin k without copying.
func (v *Vectors) Vector(k int) []complex128 {
	return v.Data[k*v.Mics : (k+1)*v.Mics]
}

// At returns microphone m of bin k.
func (v *Vectors) At(k, m int) complex128 { return v.Data[k*v.Mics+m] }

// Relative returns a copy normalised to microphone ref, a_m/a_ref per bin.
// Beamformers steered with relative vectors reproduce the source as observed
// at the reference microphone.
func (v *Vectors) Relative(ref int) (*Vectors, error) {
	if ref < 0 || ref >= v.Mics {
		return nil, fmt.Errorf("%w: reference microphone %d out of range [0, %d)", ErrInvalidGeometry, ref, v.Mics)
	}

	out := NewVectors(v.Bins, v.Mics)
	for k := range v.Bins {
		src := v.Vector(k)
		dst := out.Vector(k)
		r := src[ref]
		if r == 0 {
			return nil, fmt.Errorf("%w: reference response vanishes at bin %d", ErrInvalidTarget, k)
		}
		for m, a := range src {
			dst[m] = a / r
		}
	}

	return out, nil
}

// BinFrequencies returns the center frequencies k·fs/N of the one-sided
// spectrum of an N-point frame, k = 0..N/2.
func BinFrequencies(frameSize int, sampleRate float64) ([]float64, error) {
	if frameSize < 2 {
		return nil, fmt.Errorf("steering: frame size must be >= 2: %d", frameSize)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("steering: sample rate must be > 0: %f", sampleRate)
	}

	out := make([]float64, frameSize/2+1)
	for k := range out {
		out[k] = float64(k) * sampleRate / float64(frameSize)
	}

	return out, nil
}

// NearField computes spherical-wave steering vectors of a point source.
// Distances are floored at 1e-6 m. With includeAmplitude each element is
// additionally scaled by 1/d_m; otherwise the model is phase-only.
func NearField(g Geometry, source Point, freqs []float64, c float64, includeAmplitude bool) (*Vectors, error) {
	if err := validateInputs(g, freqs, c); err != nil {
		return nil, err
	}
	if !finite(source) {
		return nil, fmt.Errorf("%w: non-finite source %v", ErrInvalidTarget, source)
	}

	dist := make([]float64, g.Len())
	for m, mic := range g.mics {
		dist[m] = distance(mic, source)
	}

	out := NewVectors(len(freqs), g.Len())
	for k, f := range freqs {
		row := out.Vector(k)
		for m, d := range dist {
			a := cmplx.Exp(complex(0, -2*math.Pi*f*d/c))
			if includeAmplitude {
				a *= complex(1/d, 0)
			}
			row[m] = a
		}
	}

	return out, nil
}

// FarField computes plane-wave steering vectors. doa is the unit propagation
// vector of the wave (pointing from the source toward the array); the
// projection p_m = mic_m·doa is the extra distance travelled to microphone m.
// Non-unit vectors are rejected.
func FarField(g Geometry, doa Point, freqs []float64, c float64) (*Vectors, error) {
	if err := validateInputs(g, freqs, c); err != nil {
		return nil, err
	}
	if n := r3.Norm(doa); math.IsNaN(n) || math.Abs(n-1) > unitNormTolerance {
		return nil, fmt.Errorf("%w: direction must be unit-norm, |doa| = %g", ErrInvalidTarget, n)
	}

	proj := make([]float64, g.Len())
	for m, mic := range g.mics {
		proj[m] = r3.Dot(mic, doa)
	}

	out := NewVectors(len(freqs), g.Len())
	for k, f := range freqs {
		row := out.Vector(k)
		for m, p := range proj {
			row[m] = cmplx.Exp(complex(0, -2*math.Pi*f*p/c))
		}
	}

	return out, nil
}

// Compute dispatches on the target kind. includeAmplitude only affects
// near-field targets.
func Compute(g Geometry, t Target, freqs []float64, c float64, includeAmplitude bool) (*Vectors, error) {
	switch t.Kind() {
	case TargetNearField:
		p, _ := t.Position()
		return NearField(g, p, freqs, c, includeAmplitude)
	case TargetFarField:
		u, _ := t.Propagation()
		return FarField(g, u, freqs, c)
	default:
		return nil, fmt.Errorf("%w: unknown target kind %d", ErrInvalidTarget, t.Kind())
	}
}

func validateInputs(g Geometry, freqs []float64, c float64) error {
	if g.Len() < 2 {
		return fmt.Errorf("%w: need at least 2 microphones, got %d", ErrInvalidGeometry, g.Len())
	}
	if err := validateSpeed(c); err != nil {
		return err
	}
	for k, f := range freqs {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("steering: frequency %d must be finite and >= 0: %f", k, f)
		}
	}
	return nil
}
