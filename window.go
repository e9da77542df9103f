package caravel

import (
	"fmt"
	"math"
)

// LagF64 shifts data forward by offset positions, filling the gap with fill.
// out must have the same length as data.
func LagF64(data []float64, offset int, fill float64, out []float64) {
	for i := range data {
		if i < offset {
			out[i] = fill
		} else {
			out[i] = data[i-offset]
		}
	}
}

// RollingSumF64 computes a trailing windowed sum over data.
// Positions with fewer than minPeriods observations are set to NaN.
// out must have the same length as data.
func RollingSumF64(data []float64, window, minPeriods int, out []float64) {
	var sum float64
	for i := range data {
		sum += data[i]
		if i >= window {
			sum -= data[i-window]
		}
		count := i + 1
		if count > window {
			count = window
		}
		if count < minPeriods {
			out[i] = math.NaN()
		} else {
			out[i] = sum
		}
	}
}

// RollingMeanF64 computes a trailing windowed mean over data.
// Positions with fewer than minPeriods observations are set to NaN.
// out must have the same length as data.
func RollingMeanF64(data []float64, window, minPeriods int, out []float64) {
	var sum float64
	for i := range data {
		sum += data[i]
		if i >= window {
			sum -= data[i-window]
		}
		count := i + 1
		if count > window {
			count = window
		}
		if count < minPeriods {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
}

// DiffF64 computes first differences, with fill for the first position.
// out must have the same length as data.
func DiffF64(data []float64, fill float64, out []float64) {
	for i := range data {
		if i == 0 {
			out[i] = fill
		} else {
			out[i] = data[i] - data[i-1]
		}
	}
}

// RollingMean returns a new Float64 series holding the trailing moving
// average of s over the given window. The first window-1 positions have
// no full window and are null. Null input rows propagate to the output.
func (s *Series) RollingMean(window int) (*Series, error) {
	if s.DType() != Float64 {
		return nil, fmt.Errorf("rolling mean requires Float64 series, got %s", s.DType())
	}
	if window <= 0 {
		return nil, fmt.Errorf("rolling window must be positive, got %d", window)
	}

	n := s.Len()
	out := make([]float64, n)
	valid := make([]bool, n)
	data := s.Float64()

	var sum float64
	nullsInWindow := 0
	for i := 0; i < n; i++ {
		if s.IsValid(i) {
			sum += data[i]
		} else {
			nullsInWindow++
		}
		if i >= window {
			if s.IsValid(i - window) {
				sum -= data[i-window]
			} else {
				nullsInWindow--
			}
		}
		if i+1 < window || nullsInWindow > 0 {
			valid[i] = false
			out[i] = math.NaN()
		} else {
			valid[i] = true
			out[i] = sum / float64(window)
		}
	}

	result := NewSeriesFloat64WithNulls(s.Name(), out, valid)
	if result == nil {
		return nil, fmt.Errorf("failed to build rolling mean series")
	}
	return result, nil
}
