package snr

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/stft"
)

const (
	// Segmental SNR clamps each frame to this range, the usual convention
	// for speech enhancement scores.
	segmentalFloorDB   = -10.0
	segmentalCeilingDB = 35.0
)

var (
	// ErrLengthMismatch reports signal and noise buffers of different sizes.
	ErrLengthMismatch = errors.New("snr: signal and noise lengths differ")
	// ErrEmpty reports an empty measurement.
	ErrEmpty = errors.New("snr: empty input")
)

// Result holds an input/output SNR comparison.
type Result struct {
	InputDB       float64
	OutputDB      float64
	ImprovementDB float64
}

func (r Result) String() string {
	return fmt.Sprintf("in %.2f dB, out %.2f dB, gain %+.2f dB", r.InputDB, r.OutputDB, r.ImprovementDB)
}

// Power returns the sum of squares of x.
func Power(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sq := make([]float64, len(x))
	vecmath.MulBlock(sq, x, x)
	return sum(sq)
}

// SpectralPower returns Σ|x|².
func SpectralPower(x []complex128) float64 {
	if len(x) == 0 {
		return 0
	}
	re := make([]float64, len(x))
	im := make([]float64, len(x))
	for i, v := range x {
		re[i] = real(v)
		im[i] = imag(v)
	}
	p := make([]float64, len(x))
	vecmath.Power(p, re, im)
	return sum(p)
}

// Ratio returns the SNR in dB of a time-domain signal and noise pair. Silent
// noise yields +Inf, silent signal -Inf.
func Ratio(signal, noise []float64) (float64, error) {
	if err := validate(len(signal), len(noise)); err != nil {
		return 0, err
	}
	return ratioDB(Power(signal), Power(noise)), nil
}

// SpectralRatio returns the SNR in dB of a pair of equally-shaped
// spectrograms, optionally restricted to bins [loBin, hiBin). hiBin <= 0
// selects every bin from loBin up.
func SpectralRatio(signal, noise *stft.Spectrogram, loBin, hiBin int) (float64, error) {
	ps, pn, err := bandPower(signal, noise, loBin, hiBin)
	if err != nil {
		return 0, err
	}
	return ratioDB(ps, pn), nil
}

// Improvement compares input and output SNR in the time domain.
func Improvement(inSignal, inNoise, outSignal, outNoise []float64) (Result, error) {
	in, err := Ratio(inSignal, inNoise)
	if err != nil {
		return Result{}, fmt.Errorf("input: %w", err)
	}
	out, err := Ratio(outSignal, outNoise)
	if err != nil {
		return Result{}, fmt.Errorf("output: %w", err)
	}
	return newResult(in, out), nil
}

// SpectralImprovement compares input and output SNR over bins
// [loBin, hiBin) of the given spectrograms.
func SpectralImprovement(inSignal, inNoise, outSignal, outNoise *stft.Spectrogram, loBin, hiBin int) (Result, error) {
	in, err := SpectralRatio(inSignal, inNoise, loBin, hiBin)
	if err != nil {
		return Result{}, fmt.Errorf("input: %w", err)
	}
	out, err := SpectralRatio(outSignal, outNoise, loBin, hiBin)
	if err != nil {
		return Result{}, fmt.Errorf("output: %w", err)
	}
	return newResult(in, out), nil
}

// Segmental returns the mean per-frame SNR over non-overlapping frames of
// frameSize samples, each clamped to [-10, 35] dB. A trailing partial frame
// is ignored.
func Segmental(signal, noise []float64, frameSize int) (float64, error) {
	if err := validate(len(signal), len(noise)); err != nil {
		return 0, err
	}
	if frameSize < 1 {
		return 0, fmt.Errorf("snr frame size must be >= 1: %d", frameSize)
	}

	frames := len(signal) / frameSize
	if frames == 0 {
		return 0, fmt.Errorf("%w: %d samples is shorter than one frame of %d", ErrEmpty, len(signal), frameSize)
	}

	total := 0.0
	for i := range frames {
		lo, hi := i*frameSize, (i+1)*frameSize
		db := ratioDB(Power(signal[lo:hi]), Power(noise[lo:hi]))
		if math.IsNaN(db) {
			db = segmentalFloorDB
		}
		total += core.Clamp(db, segmentalFloorDB, segmentalCeilingDB)
	}

	return total / float64(frames), nil
}

func newResult(in, out float64) Result {
	return Result{InputDB: in, OutputDB: out, ImprovementDB: out - in}
}

func ratioDB(ps, pn float64) float64 {
	if pn == 0 {
		if ps == 0 {
			return math.NaN()
		}
		return math.Inf(1)
	}
	return core.LinearPowerToDB(ps / pn)
}

func bandPower(signal, noise *stft.Spectrogram, lo, hi int) (float64, float64, error) {
	if signal == nil || noise == nil {
		return 0, 0, ErrEmpty
	}
	if signal.Bins != noise.Bins || signal.Frames != noise.Frames {
		return 0, 0, fmt.Errorf("%w: %d×%d vs %d×%d", ErrLengthMismatch,
			signal.Bins, signal.Frames, noise.Bins, noise.Frames)
	}
	if hi <= 0 || hi > signal.Bins {
		hi = signal.Bins
	}
	if lo < 0 || lo >= hi {
		return 0, 0, fmt.Errorf("snr bin range must satisfy 0 <= lo < hi: [%d, %d)", lo, hi)
	}
	if signal.Frames == 0 {
		return 0, 0, ErrEmpty
	}

	var ps, pn float64
	for t := range signal.Frames {
		ps += SpectralPower(signal.Frame(t)[lo:hi])
		pn += SpectralPower(noise.Frame(t)[lo:hi])
	}
	return ps, pn, nil
}

func validate(ns, nn int) error {
	if ns != nn {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, ns, nn)
	}
	if ns == 0 {
		return ErrEmpty
	}
	return nil
}

func sum(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v
	}
	return s
}
