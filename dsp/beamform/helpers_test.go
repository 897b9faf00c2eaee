package beamform

import (
	"math/cmplx"
	"testing"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/steering"
)

const (
	testFrameSize  = 256
	testSampleRate = 16000.0
)

func testGeometry(t *testing.T) steering.Geometry {
	t.Helper()
	g, err := steering.NewGeometry(
		steering.Point{X: -0.05},
		steering.Point{X: 0.05},
		steering.Point{X: -0.08, Y: 0.045, Z: -0.04},
		steering.Point{X: 0.08, Y: 0.045, Z: -0.04},
	)
	if err != nil {
		t.Fatalf("NewGeometry() error = %v", err)
	}
	return g
}

func testFreqs(t *testing.T, frameSize int) []float64 {
	t.Helper()
	freqs, err := steering.BinFrequencies(frameSize, testSampleRate)
	if err != nil {
		t.Fatalf("BinFrequencies() error = %v", err)
	}
	return freqs
}

func nearFieldVectors(t *testing.T, g steering.Geometry, src steering.Point, freqs []float64) *steering.Vectors {
	t.Helper()
	v, err := steering.NearField(g, src, freqs, steering.DefaultSpeedOfSound, false)
	if err != nil {
		t.Fatalf("NearField() error = %v", err)
	}
	return v
}

func azimuthVectors(t *testing.T, g steering.Geometry, deg float64, freqs []float64) *steering.Vectors {
	t.Helper()
	target, err := steering.AzimuthTarget(deg)
	if err != nil {
		t.Fatalf("AzimuthTarget() error = %v", err)
	}
	v, err := steering.Compute(g, target, freqs, steering.DefaultSpeedOfSound, false)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return v
}

func powerSum(x []complex128) float64 {
	var sum float64
	for _, v := range x {
		a := cmplx.Abs(v)
		sum += a * a
	}
	return sum
}
