package signal_test

import (
	"fmt"
	"math"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/core"
	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/signal"
)

func ExampleScaleToSNR() {
	s := []float64{1, -1, 1, -1}
	n := []float64{1, 1, -1, -1}

	gain, err := signal.ScaleToSNR(s, n, 20)
	if err != nil {
		panic(err)
	}
	fmt.Printf("gain %.2f, noise %.2f\n", gain, n[0])

	// Output:
	// gain 0.10, noise 0.10
}

func ExampleGenerator_Voiced() {
	g := signal.NewGenerator([]core.ProcessorOption{core.WithSampleRate(8000)})
	x, err := g.Voiced(100, 3, 0, 800)
	if err != nil {
		panic(err)
	}

	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	fmt.Printf("%d samples, peak %.1f\n", len(x), peak)

	// Output:
	// 800 samples, peak 1.0
}
