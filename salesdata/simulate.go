package salesdata

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	// SyntheticBase is the mean daily sales level of a generated series.
	SyntheticBase = 1000.0

	syntheticTrendPerDay = 2.5
	syntheticWeeklyAmp   = 150.0
	syntheticNoiseScale  = 50.0
)

// Synthetic generates a deterministic daily sales series for development and
// testing when no real transaction log exists. The series is a linear trend
// plus a weekly sinusoidal component plus seeded gaussian noise, floored at
// zero. The same seed, length, and end day always produce the same series.
func Synthetic(seed uint64, n int, end time.Time) *Series {
	t := TrailingDays(end, n)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		dow := float64((int(t[i].Weekday()) + 6) % 7)
		val := SyntheticBase +
			syntheticTrendPerDay*float64(i) +
			syntheticWeeklyAmp*math.Sin(2.0*math.Pi*dow/7.0) +
			rng.NormFloat64()*syntheticNoiseScale
		y = append(y, math.Max(0.0, val))
	}
	return &Series{T: t, Y: y}
}

// SyntheticConst generates a daily series holding a constant value. Used to
// exercise the near-zero uncertainty band behavior.
func SyntheticConst(n int, val float64, end time.Time) *Series {
	t := TrailingDays(end, n)
	y := make([]float64, n)
	for i := range y {
		y[i] = val
	}
	return &Series{T: t, Y: y}
}
