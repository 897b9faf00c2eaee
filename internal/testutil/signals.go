package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// ToneMixture sums sines at the given frequencies, each with the given
// amplitude, and slowly amplitude-modulates the result so that frames differ.
func ToneMixture(freqs []float64, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	for j, f := range freqs {
		step := 2 * math.Pi * f / sampleRate
		phase := 0.7 * float64(j)
		for i := range out {
			out[i] += amplitude * math.Sin(step*float64(i)+phase)
		}
	}

	env := 2 * math.Pi * 3 / sampleRate
	for i := range out {
		out[i] *= 0.6 + 0.4*math.Sin(env*float64(i))
	}

	return out
}

// ComplexGaussian returns n circularly-symmetric complex Gaussian samples of
// unit variance from a fixed seed.
func ComplexGaussian(seed int64, n int) []complex128 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(rng.NormFloat64(), rng.NormFloat64()) * complex(math.Sqrt2/2, 0)
	}
	return out
}
