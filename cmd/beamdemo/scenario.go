package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/beamform"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/signal"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/steering"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/stft"
	"github.com/AshwinBarnwal/Beamforming-via-ML/measure/snr"
)

type scenarioConfig struct {
	proc     core.ProcessorConfig
	seconds  float64
	target   steering.Point
	noiseAz  float64
	inputSNR float64
	alpha    float64
	workers  int
	mask     string
	seed     int64
}

type methodResult struct {
	name string
	snr  snr.Result
	diag beamform.Diagnostics
}

// arrayGeometry is a 4-mic head-worn layout: a front pair on the x axis and
// a rear pair slightly above and behind.
func arrayGeometry() (steering.Geometry, error) {
	return steering.NewGeometry(
		steering.Point{X: -0.05},
		steering.Point{X: 0.05},
		steering.Point{X: -0.08, Y: 0.045, Z: -0.04},
		steering.Point{X: 0.08, Y: 0.045, Z: -0.04},
	)
}

// scene holds the simulated STFT-domain images of the target and noise at
// every microphone, kept apart so each method can be scored exactly.
type scene struct {
	tr      *stft.Transform
	length  int
	steer   *steering.Vectors
	noise   *steering.Vectors
	tImage  *stft.MultiSpectrogram
	nImage  *stft.MultiSpectrogram
	mix     *stft.MultiSpectrogram
	refT    []float64
	refN    []float64
	inputDB float64
}

func buildScene(cfg scenarioConfig, logger *slog.Logger) (*scene, error) {
	fs := cfg.proc.SampleRate
	n := int(cfg.seconds * fs)
	if n < cfg.proc.FrameSize {
		return nil, fmt.Errorf("beamdemo: %.3f s is shorter than one frame", cfg.seconds)
	}

	g, err := arrayGeometry()
	if err != nil {
		return nil, err
	}
	tr, err := stft.New(cfg.proc.FrameSize, stft.WithHopSize(cfg.proc.HopSize()))
	if err != nil {
		return nil, err
	}
	freqs, err := steering.BinFrequencies(cfg.proc.FrameSize, fs)
	if err != nil {
		return nil, err
	}

	target, err := steering.NearField(g, cfg.target, freqs, cfg.proc.SpeedOfSound, false)
	if err != nil {
		return nil, err
	}
	steer, err := target.Relative(0)
	if err != nil {
		return nil, err
	}
	interferer, err := steering.AzimuthTarget(cfg.noiseAz)
	if err != nil {
		return nil, err
	}
	noise, err := steering.Compute(g, interferer, freqs, cfg.proc.SpeedOfSound, false)
	if err != nil {
		return nil, err
	}

	gen := signal.NewGenerator(
		[]core.ProcessorOption{core.WithSampleRate(fs)},
		signal.WithSeed(cfg.seed),
	)
	s, err := gen.Voiced(140, 10, 4, n)
	if err != nil {
		return nil, err
	}
	v, err := gen.GaussianNoise(1, n)
	if err != nil {
		return nil, err
	}
	noiseGain, err := signal.ScaleToSNR(s, v, cfg.inputSNR)
	if err != nil {
		return nil, err
	}

	sSpec, err := tr.Analyze(s)
	if err != nil {
		return nil, err
	}
	nSpec, err := tr.Analyze(v)
	if err != nil {
		return nil, err
	}

	sc := &scene{
		tr:     tr,
		length: n,
		steer:  steer,
		noise:  noise,
		tImage: image(sSpec, target),
		nImage: image(nSpec, noise),
		mix:    image(sSpec, target),
	}
	if err := sc.mix.Add(sc.nImage); err != nil {
		return nil, err
	}

	if sc.refT, err = tr.Synthesize(sc.tImage.Channel(0), n); err != nil {
		return nil, err
	}
	if sc.refN, err = tr.Synthesize(sc.nImage.Channel(0), n); err != nil {
		return nil, err
	}
	if sc.inputDB, err = snr.Ratio(sc.refT, sc.refN); err != nil {
		return nil, err
	}

	logger.Info("scene",
		"mics", g.Len(),
		"array_centre", g.Centroid(),
		"bins", tr.Bins(),
		"frames", sc.mix.Frames,
		"target", cfg.target,
		"c", cfg.proc.SpeedOfSound,
		"noise_az", cfg.noiseAz,
		"noise_gain_db", core.LinearToDB(noiseGain),
		"input_snr_db", sc.inputDB)

	return sc, nil
}

// image renders the per-mic STFT of a source with steering a.
func image(s *stft.Spectrogram, a *steering.Vectors) *stft.MultiSpectrogram {
	out := stft.NewMultiSpectrogram(s.Bins, s.Frames, a.Mics)
	for t := range s.Frames {
		for k := range s.Bins {
			v := s.At(k, t)
			x := out.Vector(k, t)
			for m, am := range a.Vector(k) {
				x[m] = am * v
			}
		}
	}
	return out
}

// score synthesizes the target and noise outputs and compares them with the
// reference microphone.
func (sc *scene) score(outT, outN *stft.Spectrogram) (snr.Result, error) {
	yT, err := sc.tr.Synthesize(outT, sc.length)
	if err != nil {
		return snr.Result{}, err
	}
	yN, err := sc.tr.Synthesize(outN, sc.length)
	if err != nil {
		return snr.Result{}, err
	}
	return snr.Improvement(sc.refT, sc.refN, yT, yN)
}

func (sc *scene) static(name string, w *beamform.Weights, diag beamform.Diagnostics) (methodResult, error) {
	outT, err := beamform.ApplyStatic(w, sc.tImage)
	if err != nil {
		return methodResult{}, err
	}
	outN, err := beamform.ApplyStatic(w, sc.nImage)
	if err != nil {
		return methodResult{}, err
	}
	res, err := sc.score(outT, outN)
	if err != nil {
		return methodResult{}, err
	}
	return methodResult{name: name, snr: res, diag: diag}, nil
}

func (sc *scene) maskSource(kind string) (beamform.MaskSource, error) {
	switch kind {
	case "constant":
		return beamform.ConstantMask(1), nil
	case "phase":
		return beamform.NewPhaseMask(sc.steer, 0, 0)
	case "oracle":
		values := make([][]float64, sc.mix.Frames)
		for t := range values {
			values[t] = make([]float64, sc.mix.Bins)
			for k := range values[t] {
				pt := cabs2(sc.tImage.At(k, t, 0))
				pn := cabs2(sc.nImage.At(k, t, 0))
				if pt+pn > 0 {
					values[t][k] = pn / (pt + pn)
				}
			}
		}
		return beamform.OracleMask{Values: values}, nil
	default:
		return nil, fmt.Errorf("beamdemo: unknown mask %q (constant, oracle, phase)", kind)
	}
}

func (sc *scene) adaptive(ctx context.Context, cfg scenarioConfig) (methodResult, error) {
	src, err := sc.maskSource(cfg.mask)
	if err != nil {
		return methodResult{}, err
	}
	p, err := beamform.NewProcessor(sc.steer,
		beamform.WithForgettingFactor(cfg.alpha),
		beamform.WithWorkers(cfg.workers),
		beamform.WithMaskSource(src),
	)
	if err != nil {
		return methodResult{}, err
	}

	bins, frames := sc.mix.Bins, sc.mix.Frames
	out := make([]complex128, bins)
	outT := stft.NewSpectrogram(bins, frames)
	outN := stft.NewSpectrogram(bins, frames)
	for t := range frames {
		if err := ctx.Err(); err != nil {
			return methodResult{}, err
		}
		if err := p.ProcessFrame(sc.mix.Frame(t), nil, out); err != nil {
			return methodResult{}, err
		}
		for k := range bins {
			w := p.Weights(k)
			outT.Set(k, t, beamform.Apply(w, sc.tImage.Vector(k, t)))
			outN.Set(k, t, beamform.Apply(w, sc.nImage.Vector(k, t)))
		}
	}

	res, err := sc.score(outT, outN)
	if err != nil {
		return methodResult{}, err
	}
	return methodResult{name: "mvdr (" + cfg.mask + " mask)", snr: res, diag: p.Diagnostics()}, nil
}

func runScenario(ctx context.Context, cfg scenarioConfig, logger *slog.Logger) ([]methodResult, error) {
	sc, err := buildScene(cfg, logger)
	if err != nil {
		return nil, err
	}

	results := []methodResult{{
		name: "reference mic",
		snr:  snr.Result{InputDB: sc.inputDB, OutputDB: sc.inputDB},
	}}

	ds, err := beamform.DelayAndSum(sc.steer)
	if err != nil {
		return nil, err
	}
	r, err := sc.static("delay-and-sum", ds, beamform.Diagnostics{Bins: ds.Bins})
	if err != nil {
		return nil, err
	}
	results = append(results, r)

	cs, err := beamform.NewConstraintSet(sc.steer, sc.noise)
	if err != nil {
		return nil, err
	}
	lw, diag, err := beamform.SolveLCMV(cs, beamform.WithLCMVWorkers(cfg.workers))
	if err != nil {
		return nil, err
	}
	if r, err = sc.static("lcmv", lw, diag); err != nil {
		return nil, err
	}
	results = append(results, r)

	if r, err = sc.adaptive(ctx, cfg); err != nil {
		return nil, err
	}
	results = append(results, r)

	for _, r := range results {
		logger.Debug("method", "name", r.name, "gain_db", r.snr.ImprovementDB,
			"pinv_bins", r.diag.PseudoInverseBins, "vanishing_bins", r.diag.VanishingBins)
	}

	return results, nil
}

func cabs2(v complex128) float64 {
	return real(v)*real(v) + imag(v)*imag(v)
}
