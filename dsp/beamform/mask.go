package beamform

import (
	"math"
	"math/cmplx"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/steering"
)

const (
	defaultPhaseMaskSigma = 0.5
	silenceFloor          = 1e-12
)

// MaskSense tells what a mask value in [0, 1] measures.
type MaskSense int

const (
	// NoisePresence masks are 1 where a bin is dominated by noise. The
	// covariance tracker consumes this sense.
	NoisePresence MaskSense = iota
	// TargetPresence masks are 1 where a bin is dominated by the target.
	TargetPresence
)

func (s MaskSense) String() string {
	switch s {
	case NoisePresence:
		return "noise-presence"
	case TargetPresence:
		return "target-presence"
	default:
		return "unknown"
	}
}

// ToNoisePresence converts a mask value of sense s to a noise-presence weight
// clamped to [0, 1].
func (s MaskSense) ToNoisePresence(m float64) float64 {
	if math.IsNaN(m) {
		return 0
	}
	if s == TargetPresence {
		m = 1 - m
	}
	return core.Clamp(m, 0, 1)
}

// MaskSource produces one mask value per frequency bin for a frame.
// Implementations may keep state across frames; Processor calls Mask once per
// frame in frame order.
type MaskSource interface {
	Mask(f *Features, dst []float64) error
}

// Features are the per-frame observations handed to a MaskSource: the
// magnitude at the reference microphone and the inter-channel phase
// difference of every other microphone against it.
type Features struct {
	Frame     int
	Bins      int
	Mics      int
	Reference int
	// Magnitude[k] is |x_ref| at bin k.
	Magnitude []float64
	// Others lists the non-reference microphones in PhaseDiff order.
	Others []int
	// PhaseDiff[j][k] is arg(x_Others[j]) - arg(x_ref) at bin k, in (-π, π].
	PhaseDiff [][]float64
	// Spectrum is the raw bins×mics frame for sources that need more.
	Spectrum []complex128

	re []float64
	im []float64
}

// NewFeatures allocates features for frames of bins×mics values measured
// against reference microphone ref.
func NewFeatures(bins, mics, ref int) (*Features, error) {
	if bins < 1 || mics < 2 {
		return nil, invalidf("features need >= 1 bin and >= 2 mics: %d × %d", bins, mics)
	}
	if ref < 0 || ref >= mics {
		return nil, invalidf("reference microphone %d out of range [0, %d)", ref, mics)
	}

	f := &Features{
		Bins:      bins,
		Mics:      mics,
		Reference: ref,
		Magnitude: make([]float64, bins),
		Others:    make([]int, 0, mics-1),
		PhaseDiff: make([][]float64, mics-1),
		re:        make([]float64, bins),
		im:        make([]float64, bins),
	}
	for m := range mics {
		if m != ref {
			f.Others = append(f.Others, m)
		}
	}
	for j := range f.PhaseDiff {
		f.PhaseDiff[j] = make([]float64, bins)
	}

	return f, nil
}

// ExtractFeatures fills f from frame t of a bins×mics spectrum x, laid out
// like stft.MultiSpectrogram.Frame.
func ExtractFeatures(f *Features, t int, x []complex128) error {
	if len(x) != f.Bins*f.Mics {
		return invalidf("frame holds %d values, want %d", len(x), f.Bins*f.Mics)
	}
	f.Frame = t
	f.Spectrum = x

	ref := f.Reference
	for k := range f.Bins {
		v := x[k*f.Mics+ref]
		f.re[k] = real(v)
		f.im[k] = imag(v)
	}
	vecmath.Magnitude(f.Magnitude, f.re, f.im)

	for j, m := range f.Others {
		pd := f.PhaseDiff[j]
		for k := range f.Bins {
			row := x[k*f.Mics : (k+1)*f.Mics]
			pd[k] = cmplx.Phase(row[m] * cmplx.Conj(row[ref]))
		}
	}

	return nil
}

// ConstantMask returns the same value for every bin. ConstantMask(1) as a
// noise-presence mask makes the covariance the plain input covariance.
type ConstantMask float64

// Mask implements MaskSource.
func (c ConstantMask) Mask(_ *Features, dst []float64) error {
	for i := range dst {
		dst[i] = float64(c)
	}
	return nil
}

// OracleMask replays precomputed values, Values[t][k] for frame t and bin k.
type OracleMask struct {
	Values [][]float64
}

// Mask implements MaskSource.
func (o OracleMask) Mask(f *Features, dst []float64) error {
	if f.Frame < 0 || f.Frame >= len(o.Values) {
		return invalidf("oracle mask has no frame %d (%d frames)", f.Frame, len(o.Values))
	}
	row := o.Values[f.Frame]
	if len(row) != len(dst) {
		return invalidf("oracle mask frame %d has %d bins, want %d", f.Frame, len(row), len(dst))
	}
	copy(dst, row)
	return nil
}

// PhaseMask scores how well the observed inter-channel phase differences
// match the target's, under a Gaussian phase-error model of width Sigma,
// and reports the complement as noise presence. Bins that are silent at the
// reference microphone count as noise.
type PhaseMask struct {
	sigma    float64
	expected [][]float64
	ref      int
}

// NewPhaseMask builds a phase mask for target steering vectors measured
// against reference microphone ref. sigma <= 0 selects 0.5 rad.
func NewPhaseMask(target *steering.Vectors, ref int, sigma float64) (*PhaseMask, error) {
	if target == nil || target.Mics < 2 || len(target.Data) != target.Bins*target.Mics {
		return nil, invalidf("phase mask needs a steering matrix with >= 2 mics")
	}
	if ref < 0 || ref >= target.Mics {
		return nil, invalidf("reference microphone %d out of range [0, %d)", ref, target.Mics)
	}
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, invalidf("phase mask sigma must be finite: %g", sigma)
	}
	if sigma <= 0 {
		sigma = defaultPhaseMaskSigma
	}

	p := &PhaseMask{sigma: sigma, ref: ref, expected: make([][]float64, 0, target.Mics-1)}
	for m := range target.Mics {
		if m == ref {
			continue
		}
		exp := make([]float64, target.Bins)
		for k := range exp {
			exp[k] = cmplx.Phase(target.At(k, m) * cmplx.Conj(target.At(k, ref)))
		}
		p.expected = append(p.expected, exp)
	}

	return p, nil
}

// Mask implements MaskSource.
func (p *PhaseMask) Mask(f *Features, dst []float64) error {
	if f.Reference != p.ref || len(f.PhaseDiff) != len(p.expected) {
		return invalidf("phase mask built for reference %d with %d pairs, features have reference %d with %d",
			p.ref, len(p.expected), f.Reference, len(f.PhaseDiff))
	}
	if len(dst) != f.Bins || len(p.expected[0]) != f.Bins {
		return invalidf("phase mask has %d bins, frame has %d", len(p.expected[0]), f.Bins)
	}

	scale := 1 / (2 * p.sigma * p.sigma)
	pairs := float64(len(p.expected))
	for k := range dst {
		if f.Magnitude[k] < silenceFloor {
			dst[k] = 1
			continue
		}
		var msd float64
		for j, exp := range p.expected {
			d := wrapPhase(f.PhaseDiff[j][k] - exp[k])
			msd += d * d
		}
		msd /= pairs
		dst[k] = 1 - math.Exp(-msd*scale)
	}

	return nil
}

// wrapPhase maps x to (-π, π].
func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x <= 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}
