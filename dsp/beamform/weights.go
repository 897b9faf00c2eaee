package beamform

import (
	"gonum.org/v1/gonum/cmplxs"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/steering"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/stft"
)

// Weights holds one complex weight vector per frequency bin.
type Weights struct {
	Bins int
	Mics int
	// Data holds microphone m of bin k at Data[k*Mics+m].
	Data []complex128
}

// NewWeights allocates zeroed weights.
func NewWeights(bins, mics int) *Weights {
	return &Weights{Bins: bins, Mics: mics, Data: make([]complex128, bins*mics)}
}

// Vector returns the weights of bin k without copying.
func (w *Weights) Vector(k int) []complex128 {
	return w.Data[k*w.Mics : (k+1)*w.Mics]
}

// Response returns wᴴa for every bin of a steering matrix with the same shape.
func (w *Weights) Response(a *steering.Vectors) []complex128 {
	out := make([]complex128, w.Bins)
	for k := range out {
		out[k] = Apply(w.Vector(k), a.Vector(k))
	}
	return out
}

// Apply returns the beamformer output y = Σ conj(w_m)·x_m. w and x must have
// the same length.
func Apply(w, x []complex128) complex128 {
	return cmplxs.Dot(w, x)
}

// ApplyStatic applies the same per-bin weights to every frame of in.
func ApplyStatic(w *Weights, in *stft.MultiSpectrogram) (*stft.Spectrogram, error) {
	if in == nil || w == nil {
		return nil, invalidf("nil weights or spectrogram")
	}
	if in.Bins != w.Bins || in.Channels != w.Mics {
		return nil, invalidf("spectrogram is %d bins × %d channels, weights are %d × %d",
			in.Bins, in.Channels, w.Bins, w.Mics)
	}

	out := stft.NewSpectrogram(in.Bins, in.Frames)
	for t := range in.Frames {
		frame := out.Frame(t)
		for k := range frame {
			frame[k] = Apply(w.Vector(k), in.Vector(k, t))
		}
	}

	return out, nil
}
