package snr

import (
	"errors"
	"math"
	"testing"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/stft"
)

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRatio(t *testing.T) {
	got, err := Ratio(constant(2, 64), constant(-0.2, 64))
	if err != nil {
		t.Fatalf("Ratio() error = %v", err)
	}
	if math.Abs(got-20) > 1e-9 {
		t.Fatalf("Ratio() = %v, want 20", got)
	}

	if got, _ := Ratio(constant(1, 4), constant(0, 4)); !math.IsInf(got, 1) {
		t.Fatalf("silent noise: Ratio() = %v, want +Inf", got)
	}
	if got, _ := Ratio(constant(0, 4), constant(1, 4)); !math.IsInf(got, -1) {
		t.Fatalf("silent signal: Ratio() = %v, want -Inf", got)
	}
}

func TestRatioErrors(t *testing.T) {
	if _, err := Ratio(constant(1, 3), constant(1, 4)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want ErrLengthMismatch", err)
	}
	if _, err := Ratio(nil, nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("error = %v, want ErrEmpty", err)
	}
}

func TestImprovement(t *testing.T) {
	in := constant(1, 32)
	res, err := Improvement(in, constant(1, 32), constant(0.5, 32), constant(0.05, 32))
	if err != nil {
		t.Fatalf("Improvement() error = %v", err)
	}
	if math.Abs(res.InputDB) > 1e-12 || math.Abs(res.OutputDB-20) > 1e-9 || math.Abs(res.ImprovementDB-20) > 1e-9 {
		t.Fatalf("Improvement() = %+v", res)
	}
	if res.String() != "in 0.00 dB, out 20.00 dB, gain +20.00 dB" {
		t.Fatalf("String() = %q", res.String())
	}

	if _, err := Improvement(in, in[:3], in, in); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want ErrLengthMismatch", err)
	}
}

func TestSpectralRatioBand(t *testing.T) {
	sig := stft.NewSpectrogram(4, 2)
	noise := stft.NewSpectrogram(4, 2)
	for frame := range 2 {
		for k := range 4 {
			sig.Set(k, frame, complex(1, 1))
			noise.Set(k, frame, complex(0.1, 0))
		}
		// Bin 0 is noise-dominated.
		noise.Set(0, frame, 10)
	}

	full, err := SpectralRatio(sig, noise, 0, 0)
	if err != nil {
		t.Fatalf("SpectralRatio() error = %v", err)
	}
	band, err := SpectralRatio(sig, noise, 1, 4)
	if err != nil {
		t.Fatalf("SpectralRatio() error = %v", err)
	}

	// |1+i|² = 2 against 0.01 per bin.
	if want := 10 * math.Log10(200); math.Abs(band-want) > 1e-9 {
		t.Fatalf("band SNR = %v, want %v", band, want)
	}
	if full >= band {
		t.Fatalf("full-band SNR %v should be below in-band %v", full, band)
	}

	if _, err := SpectralRatio(sig, stft.NewSpectrogram(3, 2), 0, 0); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want ErrLengthMismatch", err)
	}
	if _, err := SpectralRatio(sig, noise, 3, 2); err == nil {
		t.Fatal("expected bin range error")
	}
}

func TestSpectralImprovement(t *testing.T) {
	sig := stft.NewSpectrogram(2, 1)
	noise := stft.NewSpectrogram(2, 1)
	outNoise := stft.NewSpectrogram(2, 1)
	for k := range 2 {
		sig.Set(k, 0, 1)
		noise.Set(k, 0, 1)
		outNoise.Set(k, 0, 0.1i)
	}

	res, err := SpectralImprovement(sig, noise, sig, outNoise, 0, 0)
	if err != nil {
		t.Fatalf("SpectralImprovement() error = %v", err)
	}
	if math.Abs(res.ImprovementDB-20) > 1e-9 {
		t.Fatalf("ImprovementDB = %v, want 20", res.ImprovementDB)
	}
}

func TestSegmentalClampsFrames(t *testing.T) {
	signal := append(constant(1, 8), constant(0, 8)...)
	noise := append(constant(0, 8), constant(1, 8)...)

	// Frame 1 is +Inf dB and frame 2 is -Inf dB, clamped to 35 and -10.
	got, err := Segmental(signal, noise, 8)
	if err != nil {
		t.Fatalf("Segmental() error = %v", err)
	}
	if math.Abs(got-12.5) > 1e-12 {
		t.Fatalf("Segmental() = %v, want 12.5", got)
	}

	if _, err := Segmental(signal, noise, 0); err == nil {
		t.Fatal("expected frame size error")
	}
	if _, err := Segmental(signal[:4], noise[:4], 8); !errors.Is(err, ErrEmpty) {
		t.Fatalf("error = %v, want ErrEmpty", err)
	}
}

func TestPower(t *testing.T) {
	if got := Power([]float64{3, -4}); got != 25 {
		t.Fatalf("Power() = %v, want 25", got)
	}
	if got := SpectralPower([]complex128{3 + 4i, 1i}); got != 26 {
		t.Fatalf("SpectralPower() = %v, want 26", got)
	}
	if Power(nil) != 0 || SpectralPower(nil) != 0 {
		t.Fatal("empty power must be 0")
	}
}
