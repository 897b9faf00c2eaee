package steering_test

import (
	"fmt"
	"math/cmplx"

	"github.com/AshwinBarnwal/Beamforming-via-ML/dsp/steering"
)

func ExampleCompute() {
	g, _ := steering.NewGeometry(
		steering.Point{X: -0.05},
		steering.Point{X: 0.05},
	)
	target, _ := steering.AzimuthTarget(0)

	v, _ := steering.Compute(g, target, []float64{0, 857.5}, steering.DefaultSpeedOfSound, false)

	// A wave from +x reaches the +x microphone first, 0.1 m / 343 m/s earlier.
	fmt.Printf("DC: %.2f %.2f\n", real(v.At(0, 0)), real(v.At(0, 1)))
	fmt.Printf("phase difference at 857.5 Hz: %.4f rad\n", cmplx.Phase(v.At(1, 1)/v.At(1, 0)))

	// Output:
	// DC: 1.00 1.00
	// phase difference at 857.5 Hz: 1.5708 rad
}
