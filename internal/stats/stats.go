// Package stats holds the shared numeric helpers used by the pattern
// detectors and the scoring engine. Degenerate inputs (empty samples, zero
// variance, inverted ranges) return defined fallback values instead of
// failing.
package stats

import (
	"math"
	"time"
)

// Mean returns the arithmetic mean, or 0 for an empty sample.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation, or 0 for an empty sample.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// ZScore returns how many standard deviations x lies from mean. A zero
// deviation yields 0 rather than dividing by zero.
func ZScore(x, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (x - mean) / stdDev
}

// NormalizeRange maps value linearly from [min,max] onto [0,100], clamping
// values outside the range. A degenerate range (max <= min) yields 0.
func NormalizeRange(value, min, max float64) float64 {
	if max <= min {
		return 0
	}
	r := (value - min) / (max - min)
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	return r * 100
}

// Decay returns the exponential half-life factor 0.5^(ageDays/halfLifeDays)
// in [0,1]. Future timestamps and non-positive half-lives decay nothing.
func Decay(age time.Duration, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 || age <= 0 {
		return 1
	}
	ageDays := age.Hours() / 24
	return math.Pow(0.5, ageDays/halfLifeDays)
}
