package beamform

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/cmplxs"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/steering"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/stft"
)

// Processor is a mask-driven adaptive MVDR beamformer. For each frame it
// asks its MaskSource for a mask, folds the frame into the per-bin
// covariance, re-solves the MVDR weights of every bin and applies them to
// the same frame.
//
// A Processor is not safe for concurrent use; frames must be fed in order.
type Processor struct {
	cfg    config
	target *steering.Vectors
	bins   int
	mics   int

	tracker  *CovarianceTracker
	solver   MVDR
	weights  *Weights
	features *Features
	mask     []float64

	chunks  []binRange
	scratch []*MVDRWorkspace
	diags   []Diagnostics

	frame int
	diag  Diagnostics
}

// NewProcessor returns a processor steered by target, one vector per bin.
// Relative steering vectors (see steering.Vectors.Relative) make the output
// reproduce the target as heard at the reference microphone.
func NewProcessor(target *steering.Vectors, opts ...Option) (*Processor, error) {
	if target == nil || target.Bins < 1 || target.Mics < 2 || len(target.Data) != target.Bins*target.Mics {
		return nil, invalidf("processor needs a steering matrix with >= 1 bin and >= 2 mics")
	}
	if !core.AllFiniteComplex(target.Data) {
		return nil, invalidf("steering matrix has non-finite elements")
	}

	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if cfg.reference >= target.Mics {
		return nil, fmt.Errorf("processor reference microphone must be < %d: %d", target.Mics, cfg.reference)
	}

	p := &Processor{
		cfg:     cfg,
		target:  target,
		bins:    target.Bins,
		mics:    target.Mics,
		solver:  MVDR{Epsilon: cfg.epsilon, ConditionTolerance: cfg.conditionTol},
		weights: NewWeights(target.Bins, target.Mics),
		mask:    make([]float64, target.Bins),
		chunks:  splitBins(target.Bins, cfg.workers),
	}

	p.tracker, err = NewCovarianceTracker(p.bins, p.mics, opts...)
	if err != nil {
		return nil, err
	}
	p.features, err = NewFeatures(p.bins, p.mics, cfg.reference)
	if err != nil {
		return nil, err
	}

	p.scratch = make([]*MVDRWorkspace, len(p.chunks))
	for i := range p.scratch {
		p.scratch[i] = NewMVDRWorkspace(p.mics)
	}
	p.diags = make([]Diagnostics, len(p.chunks))

	return p, nil
}

// Bins returns the number of frequency bins per frame.
func (p *Processor) Bins() int { return p.bins }

// Mics returns the number of channels per bin.
func (p *Processor) Mics() int { return p.mics }

// Frames returns the number of frames processed since the last Reset.
func (p *Processor) Frames() int { return p.frame }

// Diagnostics returns the counters accumulated since the last Reset.
func (p *Processor) Diagnostics() Diagnostics { return p.diag }

// Tracker exposes the covariance state for inspection.
func (p *Processor) Tracker() *CovarianceTracker { return p.tracker }

// Weights returns a copy of the weights last applied to bin k.
func (p *Processor) Weights(k int) []complex128 {
	return append([]complex128(nil), p.weights.Vector(k)...)
}

// Reset clears the covariance, weights, frame counter and diagnostics, and
// resets the reset policy if it keeps state.
func (p *Processor) Reset() {
	if r, ok := p.cfg.reset.(interface{ Reset() }); ok {
		r.Reset()
	}
	p.tracker.Reset()
	for i := range p.weights.Data {
		p.weights.Data[i] = 0
	}
	p.frame = 0
	p.diag = Diagnostics{}
}

// ProcessFrame beamforms one frame x (bins×mics, laid out like
// stft.MultiSpectrogram.Frame) into out (bins values).
//
// mask, when non-nil, supplies this frame's mask values in the configured
// MaskSense and bypasses the MaskSource.
//
// Malformed frames, including samples whose power overflows, are rejected
// before any state changes. Errors from the mask source or the solver can
// leave the covariance partly updated; after such an error the processor
// must be Reset before it is fed again.
func (p *Processor) ProcessFrame(x []complex128, mask []float64, out []complex128) error {
	if len(x) != p.bins*p.mics {
		return invalidf("frame holds %d values, want %d", len(x), p.bins*p.mics)
	}
	if len(out) != p.bins {
		return invalidf("output holds %d bins, want %d", len(out), p.bins)
	}
	if mask != nil && len(mask) != p.bins {
		return invalidf("mask holds %d bins, want %d", len(mask), p.bins)
	}
	if !core.AllFiniteComplex(x) {
		return invalidf("frame %d has non-finite samples", p.frame)
	}
	for k := range p.bins {
		xk := x[k*p.mics : (k+1)*p.mics]
		if e := real(cmplxs.Dot(xk, xk)); !core.IsFinite(e) {
			return invalidf("frame %d bin %d: observation power overflows", p.frame, k)
		}
	}

	if mask != nil {
		copy(p.mask, mask)
	} else {
		if err := ExtractFeatures(p.features, p.frame, x); err != nil {
			return err
		}
		if err := p.cfg.mask.Mask(p.features, p.mask); err != nil {
			return fmt.Errorf("mask frame %d: %w", p.frame, err)
		}
	}
	for k, m := range p.mask {
		p.mask[k] = p.cfg.sense.ToNoisePresence(m)
	}

	if p.cfg.reset.ShouldReset(p.frame, p.referenceEnergy(x)) {
		p.tracker.Reset()
		p.diag.Resets++
	}

	if err := p.solveFrame(x, out); err != nil {
		return fmt.Errorf("frame %d: %w", p.frame, err)
	}

	p.frame++
	p.diag.Frames++

	return nil
}

// Process beamforms every frame of in, in order. Cancellation is checked
// between frames; on any error no output is returned.
func (p *Processor) Process(ctx context.Context, in *stft.MultiSpectrogram) (*stft.Spectrogram, error) {
	if in == nil || in.Bins != p.bins || in.Channels != p.mics {
		return nil, invalidf("spectrogram shape does not match %d bins × %d mics", p.bins, p.mics)
	}

	out := stft.NewSpectrogram(in.Bins, in.Frames)
	for t := range in.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.ProcessFrame(in.Frame(t), nil, out.Frame(t)); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (p *Processor) solveFrame(x, out []complex128) error {
	for i := range p.diags {
		p.diags[i] = Diagnostics{}
	}

	if len(p.chunks) == 1 {
		if err := p.solveRange(0, x, out); err != nil {
			return err
		}
	} else {
		var g errgroup.Group
		for i := range p.chunks {
			g.Go(func() error { return p.solveRange(i, x, out) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	for _, d := range p.diags {
		p.diag.add(d)
	}

	return nil
}

// solveRange runs update, solve and apply for the bins of chunk i. Chunks
// touch disjoint bins and scratch, so they run concurrently.
func (p *Processor) solveRange(i int, x, out []complex128) error {
	c := p.chunks[i]
	ws := p.scratch[i]
	for k := c.lo; k < c.hi; k++ {
		xk := x[k*p.mics : (k+1)*p.mics]
		p.tracker.update(k, xk, p.mask[k])

		r := p.tracker.matrix(k)
		w := p.weights.Vector(k)
		res, err := p.solver.solve(&r, p.target.Vector(k), w, ws)
		if err != nil {
			return fmt.Errorf("bin %d: %w", k, err)
		}
		p.diags[i].record(res)

		out[k] = Apply(w, xk)
	}
	return nil
}

func (p *Processor) referenceEnergy(x []complex128) float64 {
	var sum float64
	for k := range p.bins {
		v := x[k*p.mics+p.cfg.reference]
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return sum / float64(p.bins)
}
