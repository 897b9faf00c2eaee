package stft

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/window"
)

const (
	minFrameSize = 16
	normFloor    = 1e-12
)

var (
	errShapeMismatch = errors.New("stft: spectrogram shapes differ")
	errNoChannels    = errors.New("stft: at least one channel is required")
)

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	hopSize    int
	windowType window.Type
}

// WithHopSize sets the hop between frames in samples.
func WithHopSize(hop int) Option {
	return func(cfg *config) error {
		if hop <= 0 {
			return fmt.Errorf("stft hop size must be > 0: %d", hop)
		}
		cfg.hopSize = hop
		return nil
	}
}

// WithWindow sets the analysis/synthesis window type.
func WithWindow(t window.Type) Option {
	return func(cfg *config) error {
		cfg.windowType = t
		return nil
	}
}

// Transform performs STFT analysis and overlap-add synthesis.
//
// A Transform keeps internal scratch buffers and is not safe for concurrent use.
type Transform struct {
	frameSize  int
	hopSize    int
	windowType window.Type

	plan   *algofft.Plan[complex128]
	coeffs []float64

	frame     []float64
	spectrum  []complex128
	timeFrame []complex128
}

// New creates a transform for power-of-two frame sizes >= 16. The default
// hop is half the frame size and the default window is a periodic Hann.
func New(frameSize int, opts ...Option) (*Transform, error) {
	if frameSize < minFrameSize || frameSize&(frameSize-1) != 0 {
		return nil, fmt.Errorf("stft frame size must be power-of-two and >= %d: %d", minFrameSize, frameSize)
	}

	cfg := config{
		hopSize:    frameSize / 2,
		windowType: window.TypeHann,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.hopSize >= frameSize {
		return nil, fmt.Errorf("stft hop size must be in [1, %d): %d", frameSize, cfg.hopSize)
	}

	plan, err := algofft.NewPlan64(frameSize)
	if err != nil {
		return nil, fmt.Errorf("stft: failed to create FFT plan: %w", err)
	}

	return &Transform{
		frameSize:  frameSize,
		hopSize:    cfg.hopSize,
		windowType: cfg.windowType,
		plan:       plan,
		coeffs:     window.Generate(cfg.windowType, frameSize, window.WithPeriodic()),
		frame:      make([]float64, frameSize),
		spectrum:   make([]complex128, frameSize),
		timeFrame:  make([]complex128, frameSize),
	}, nil
}

// FrameSize returns the FFT length.
func (t *Transform) FrameSize() int { return t.frameSize }

// HopSize returns the hop in samples.
func (t *Transform) HopSize() int { return t.hopSize }

// Bins returns the number of one-sided frequency bins.
func (t *Transform) Bins() int { return t.frameSize/2 + 1 }

// Window returns the window type.
func (t *Transform) Window() window.Type { return t.windowType }

// FrameCount returns the number of frames Analyze produces for n samples.
func (t *Transform) FrameCount(n int) int {
	if n <= 0 {
		return 0
	}
	return 1 + (n-1)/t.hopSize
}

// Analyze returns the one-sided STFT of x.
func (t *Transform) Analyze(x []float64) (*Spectrogram, error) {
	frames := t.FrameCount(len(x))
	out := NewSpectrogram(t.Bins(), frames)

	for f := range frames {
		if err := t.analyzeFrame(x, f*t.hopSize); err != nil {
			return nil, err
		}
		copy(out.Frame(f), t.spectrum[:out.Bins])
	}

	return out, nil
}

// AnalyzeChannels returns the multichannel STFT of equally long channels.
func (t *Transform) AnalyzeChannels(channels [][]float64) (*MultiSpectrogram, error) {
	if len(channels) == 0 {
		return nil, errNoChannels
	}

	n := len(channels[0])
	for m, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("stft: channel %d has %d samples, want %d", m, len(ch), n)
		}
	}

	bins := t.Bins()
	frames := t.FrameCount(n)
	out := NewMultiSpectrogram(bins, frames, len(channels))

	for m, ch := range channels {
		for f := range frames {
			if err := t.analyzeFrame(ch, f*t.hopSize); err != nil {
				return nil, err
			}
			for k := range bins {
				out.Set(k, f, m, t.spectrum[k])
			}
		}
	}

	return out, nil
}

// Synthesize reconstructs length samples from a one-sided spectrogram by
// weighted overlap-add. A length <= 0 returns the full overlap-add span.
func (t *Transform) Synthesize(s *Spectrogram, length int) ([]float64, error) {
	if s.Bins != t.Bins() {
		return nil, fmt.Errorf("stft: spectrogram has %d bins, want %d", s.Bins, t.Bins())
	}
	if s.Frames == 0 {
		return nil, nil
	}

	span := (s.Frames-1)*t.hopSize + t.frameSize
	wet := make([]float64, span)
	norm := make([]float64, span)
	half := t.frameSize / 2

	for f := range s.Frames {
		bins := s.Frame(f)

		t.spectrum[0] = complex(real(bins[0]), 0)
		t.spectrum[half] = complex(real(bins[half]), 0)
		for k := 1; k < half; k++ {
			v := bins[k]
			t.spectrum[k] = v
			t.spectrum[t.frameSize-k] = complex(real(v), -imag(v))
		}

		if err := t.plan.Inverse(t.timeFrame, t.spectrum); err != nil {
			return nil, fmt.Errorf("stft: inverse FFT failed: %w", err)
		}

		pos := f * t.hopSize
		for i, w := range t.coeffs {
			wet[pos+i] += real(t.timeFrame[i]) * w
			norm[pos+i] += w * w
		}
	}

	if length <= 0 || length > span {
		length = span
	}

	out := make([]float64, length)
	for i := range out {
		if norm[i] > normFloor {
			out[i] = wet[i] / norm[i]
		}
	}

	return out, nil
}

func (t *Transform) analyzeFrame(x []float64, pos int) error {
	for i := range t.frame {
		t.frame[i] = 0
	}
	if pos < len(x) {
		copy(t.frame, x[pos:min(pos+t.frameSize, len(x))])
	}

	if err := window.ApplyCoefficients(t.frame, t.frame, t.coeffs); err != nil {
		return fmt.Errorf("stft: %w", err)
	}

	for i, v := range t.frame {
		t.spectrum[i] = complex(v, 0)
	}

	if err := t.plan.Forward(t.spectrum, t.spectrum); err != nil {
		return fmt.Errorf("stft: forward FFT failed: %w", err)
	}

	return nil
}

// BinFrequency returns the center frequency of bin k in Hz.
func (t *Transform) BinFrequency(k int, sampleRate float64) float64 {
	if sampleRate <= 0 || math.IsInf(sampleRate, 0) {
		return 0
	}
	return float64(k) * sampleRate / float64(t.frameSize)
}
