package signal

import (
	"math"
	"testing"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
)

func TestVoicedIsNormalisedAndDeterministic(t *testing.T) {
	g := NewGenerator(nil)
	a, err := g.Voiced(140, 10, 4, 8000)
	if err != nil {
		t.Fatalf("Voiced() error = %v", err)
	}
	b, _ := g.Voiced(140, 10, 4, 8000)

	peak := 0.0
	for i, v := range a {
		if v != b[i] {
			t.Fatalf("index %d differs between runs", i)
		}
		peak = math.Max(peak, math.Abs(v))
	}
	if math.Abs(peak-1) > 1e-12 {
		t.Fatalf("peak = %v, want 1", peak)
	}
}

func TestVoicedDropsPartialsAboveNyquist(t *testing.T) {
	g := NewGenerator([]core.ProcessorOption{core.WithSampleRate(1000)})
	// Only the 200 Hz and 400 Hz partials fit below 500 Hz.
	x, err := g.Voiced(200, 5, 0, 1000)
	if err != nil {
		t.Fatalf("Voiced() error = %v", err)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d not finite", i)
		}
	}
}

func TestVoicedValidation(t *testing.T) {
	g := NewGenerator(nil)
	for _, tc := range []struct {
		f0       float64
		partials int
		syl      float64
		n        int
	}{
		{140, 10, 4, 0},
		{0, 10, 4, 100},
		{140, 0, 4, 100},
		{140, 10, -1, 100},
	} {
		if _, err := g.Voiced(tc.f0, tc.partials, tc.syl, tc.n); err == nil {
			t.Fatalf("Voiced(%v, %d, %v, %d): expected error", tc.f0, tc.partials, tc.syl, tc.n)
		}
	}
}

func TestGaussianNoiseSeed(t *testing.T) {
	a, _ := NewGenerator(nil, WithSeed(3)).GaussianNoise(1, 64)
	b, _ := NewGenerator(nil, WithSeed(3)).GaussianNoise(1, 64)
	c, _ := NewGenerator(nil, WithSeed(4)).GaussianNoise(1, 64)

	same, diff := true, false
	for i := range a {
		same = same && a[i] == b[i]
		diff = diff || a[i] != c[i]
	}
	if !same || !diff {
		t.Fatalf("seeding: same=%v diff=%v", same, diff)
	}

	if _, err := NewGenerator(nil).GaussianNoise(-1, 4); err == nil {
		t.Fatal("expected error for negative std")
	}
}

func TestGaussianNoiseVariance(t *testing.T) {
	x, err := NewGenerator(nil, WithSeed(9)).GaussianNoise(0.5, 40000)
	if err != nil {
		t.Fatalf("GaussianNoise() error = %v", err)
	}
	v := energy(x) / float64(len(x))
	if math.Abs(v-0.25) > 0.01 {
		t.Fatalf("variance = %v, want 0.25", v)
	}
}

func TestScaleToSNR(t *testing.T) {
	g := NewGenerator(nil)
	s, _ := g.Voiced(140, 10, 4, 16000)
	n, _ := g.GaussianNoise(1, 16000)

	if _, err := ScaleToSNR(s, n, -5); err != nil {
		t.Fatalf("ScaleToSNR() error = %v", err)
	}
	got := core.LinearPowerToDB(energy(s) / energy(n))
	if math.Abs(got+5) > 1e-9 {
		t.Fatalf("SNR after scaling = %v dB, want -5", got)
	}

	if _, err := ScaleToSNR(s, make([]float64, 4), 0); err == nil {
		t.Fatal("expected error for silent noise")
	}
	if _, err := ScaleToSNR(s, n, math.Inf(1)); err == nil {
		t.Fatal("expected error for infinite SNR")
	}
}
