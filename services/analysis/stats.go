package analysis

import (
	"errors"
	"math"
)

// ErrInsufficientData indicates a statistic was requested over an empty
// sample set.
var ErrInsufficientData = errors.New("insufficient data: at least one sample is required")

// PopulationStdDev calculates the population standard deviation (divisor N,
// not N-1) of the given samples. A single sample yields 0.
func PopulationStdDev(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrInsufficientData
	}

	n := float64(len(samples))

	sum := 0.0
	for _, sample := range samples {
		sum += sample
	}
	mean := sum / n

	sumSquaredDiff := 0.0
	for _, sample := range samples {
		diff := sample - mean
		sumSquaredDiff += diff * diff
	}

	return math.Sqrt(sumSquaredDiff / n), nil
}

// Round2 rounds to 2 decimal places. Rounding is a presentation concern;
// callers keep full precision until the response boundary.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
