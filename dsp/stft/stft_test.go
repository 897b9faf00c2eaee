package stft

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/window"
	"github.com/AshwinBarnwal/Beamforming-via-ML/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(100); err == nil {
		t.Fatal("expected error for non power-of-two frame size")
	}
	if _, err := New(8); err == nil {
		t.Fatal("expected error for tiny frame size")
	}
	if _, err := New(64, WithHopSize(64)); err == nil {
		t.Fatal("expected error for hop >= frame size")
	}
	if _, err := New(64, WithHopSize(0)); err == nil {
		t.Fatal("expected error for zero hop")
	}

	tr, err := New(512)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.HopSize() != 256 || tr.Bins() != 257 || tr.Window() != window.TypeHann {
		t.Fatalf("hop=%d bins=%d window=%v", tr.HopSize(), tr.Bins(), tr.Window())
	}
}

func TestAnalyzeSynthesizeRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
	}{
		{name: "hann-half", opts: nil},
		{name: "sqrt-hann-half", opts: []Option{WithWindow(window.TypeSqrtHann)}},
		{name: "hann-quarter", opts: []Option{WithHopSize(64)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := New(256, tc.opts...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			x := testutil.DeterministicNoise(3, 0.8, 4000)

			spec, err := tr.Analyze(x)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			y, err := tr.Synthesize(spec, len(x))
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}

			if len(y) != len(x) {
				t.Fatalf("len = %d, want %d", len(y), len(x))
			}

			testutil.RequireSliceNearlyEqual(t, y[tr.HopSize():], x[tr.HopSize():], 1e-9)
		})
	}
}

func TestAnalyzeSinePeaksAtExpectedBin(t *testing.T) {
	const (
		fs   = 16000.0
		size = 512
	)

	tr, err := New(size)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	bin := 32
	freq := tr.BinFrequency(bin, fs)

	spec, err := tr.Analyze(testutil.DeterministicSine(freq, fs, 1, 4*size))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	frame := spec.Frame(2)
	peak := 0
	for k := range frame {
		if cmplx.Abs(frame[k]) > cmplx.Abs(frame[peak]) {
			peak = k
		}
	}

	if peak != bin {
		t.Fatalf("peak bin = %d, want %d", peak, bin)
	}
}

func TestAnalyzeChannelsLayout(t *testing.T) {
	tr, err := New(64)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	a := testutil.DeterministicNoise(1, 1, 300)
	b := testutil.DeterministicNoise(2, 1, 300)

	multi, err := tr.AnalyzeChannels([][]float64{a, b})
	if err != nil {
		t.Fatalf("AnalyzeChannels() error = %v", err)
	}

	single, err := tr.Analyze(b)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	ch := multi.Channel(1)
	for i := range ch.Data {
		if ch.Data[i] != single.Data[i] {
			t.Fatalf("channel 1 differs at %d: %v vs %v", i, ch.Data[i], single.Data[i])
		}
	}

	v := multi.Vector(5, 3)
	if len(v) != 2 || v[0] != multi.At(5, 3, 0) || v[1] != multi.At(5, 3, 1) {
		t.Fatalf("Vector() does not view the (bin, frame) channels: %v", v)
	}

	if _, err := tr.AnalyzeChannels([][]float64{a, b[:10]}); err == nil {
		t.Fatal("expected error for unequal channel lengths")
	}
	if _, err := tr.AnalyzeChannels(nil); err == nil {
		t.Fatal("expected error for no channels")
	}
}

func TestSynthesizeLinearInSpectrogram(t *testing.T) {
	tr, err := New(128)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	a := testutil.DeterministicNoise(5, 1, 1000)
	b := testutil.DeterministicNoise(6, 1, 1000)

	multi, err := tr.AnalyzeChannels([][]float64{a, b})
	if err != nil {
		t.Fatalf("AnalyzeChannels() error = %v", err)
	}

	sum := NewSpectrogram(multi.Bins, multi.Frames)
	for f := range multi.Frames {
		for k := range multi.Bins {
			sum.Set(k, f, multi.At(k, f, 0)+multi.At(k, f, 1))
		}
	}

	y, err := tr.Synthesize(sum, len(a))
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	for i := tr.HopSize(); i < len(y); i++ {
		if want := a[i] + b[i]; math.Abs(y[i]-want) > 1e-9 {
			t.Fatalf("y[%d] = %v, want %v", i, y[i], want)
		}
	}
}

func TestSynthesizeBinMismatch(t *testing.T) {
	tr, err := New(64)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := tr.Synthesize(NewSpectrogram(10, 2), 0); err == nil {
		t.Fatal("expected bin count error")
	}
}

func TestMultiSpectrogramAdd(t *testing.T) {
	a := NewMultiSpectrogram(2, 2, 2)
	b := NewMultiSpectrogram(2, 2, 2)
	b.Set(1, 1, 1, 3+4i)

	if err := a.Add(b); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if a.At(1, 1, 1) != 3+4i {
		t.Fatalf("At() = %v, want 3+4i", a.At(1, 1, 1))
	}
	if err := a.Add(NewMultiSpectrogram(3, 2, 2)); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}
