// Package stats holds the statistics used to rank groups of ratings.
// Every function fails with a domain error on empty input instead of
// returning zero or NaN.
package stats

import (
	"fmt"
	"math"
	"slices"

	"movielens/internal/errs"
)

// Metric reduces a group of values to one number.
type Metric func(values []float64) (float64, error)

// Average is the arithmetic mean.
func Average(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errs.Empty("average")
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Median is the middle value of the sorted input, or the mean of the two
// middle values for an even count. values is not modified.
func Median(values []float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, errs.Empty("median")
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// Variance is the population variance: the mean squared deviation from the
// mean.
func Variance(values []float64) (float64, error) {
	mean, err := Average(values)
	if err != nil {
		return 0, errs.Empty("variance")
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(values)), nil
}

// MetricByName resolves "average", "median" or "variance". An empty name
// means average.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", "average", "mean":
		return Average, nil
	case "median":
		return Median, nil
	case "variance":
		return Variance, nil
	}
	return nil, fmt.Errorf("stats: unknown metric %q (want average, median or variance)", name)
}

// Round rounds v half away from zero to places decimals. NaN and infinities
// pass through.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
