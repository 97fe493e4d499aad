package analyze

import "math"

// mean returns the arithmetic mean of values. Returns 0 for an empty slice;
// callers guard against that before classification.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (dividing by n-1).
// The second return is false when fewer than two values are given, in
// which case the estimator is undefined.
func sampleStdDev(values []float64) (float64, bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), true
}
