package signal

import (
	"fmt"
	"math"
	"math/rand"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator with processor settings and
// signal-specific options.
func NewGenerator(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Voiced generates a harmonic source at fundamental f0 with the given number
// of partials (amplitude 1/h) under a syllable-rate envelope swinging
// between 0.1 and 1. The result is normalised to unit peak. Partials above
// Nyquist are dropped.
func (g *Generator) Voiced(f0 float64, partials int, syllableHz float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("voiced samples must be > 0: %d", samples)
	}
	if f0 <= 0 || partials < 1 {
		return nil, fmt.Errorf("voiced fundamental and partials must be positive: %f, %d", f0, partials)
	}
	if syllableHz < 0 {
		return nil, fmt.Errorf("voiced syllable rate must be >= 0: %f", syllableHz)
	}

	fs := g.cfg.SampleRate
	out := make([]float64, samples)
	for h := 1; h <= partials; h++ {
		f := f0 * float64(h)
		if f >= fs/2 {
			break
		}
		step := 2 * math.Pi * f / fs
		amp := 1 / float64(h)
		for i := range out {
			out[i] += amp * math.Sin(step*float64(i))
		}
	}

	env := make([]float64, samples)
	step := 2 * math.Pi * syllableHz / fs
	for i := range env {
		env[i] = 0.55 + 0.45*math.Sin(step*float64(i))
	}
	vecmath.MulBlockInPlace(out, env)
	core.NormalizePeak(out)

	return out, nil
}

// GaussianNoise generates zero-mean Gaussian noise with standard deviation
// std.
func (g *Generator) GaussianNoise(std float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if std < 0 {
		return nil, fmt.Errorf("noise standard deviation must be >= 0: %f", std)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = rng.NormFloat64() * std
	}
	return out, nil
}

// ScaleToSNR scales noise in place so that the power ratio of signal to
// noise equals snrDB, and returns the applied gain.
func ScaleToSNR(signal, noise []float64, snrDB float64) (float64, error) {
	if len(signal) == 0 || len(noise) == 0 {
		return 0, fmt.Errorf("snr scaling input must not be empty")
	}
	if !core.IsFinite(snrDB) {
		return 0, fmt.Errorf("snr must be finite: %f", snrDB)
	}

	ps := energy(signal) / float64(len(signal))
	pn := energy(noise) / float64(len(noise))
	if ps == 0 || pn == 0 {
		return 0, fmt.Errorf("snr scaling needs non-silent signal and noise")
	}

	gain := math.Sqrt(ps / (pn * core.DBPowerToLinear(snrDB)))
	vecmath.ScaleBlock(noise, noise, gain)
	return gain, nil
}

func energy(x []float64) float64 {
	sq := make([]float64, len(x))
	vecmath.MulBlock(sq, x, x)
	e := 0.0
	for _, v := range sq {
		e += v
	}
	return e
}
