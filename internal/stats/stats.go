// Package stats provides the descriptive statistics shared by both analyzers.
//
// Degenerate inputs (empty slices, single samples, zero means) resolve to an
// explicit nil instead of NaN or a panic, so callers can skip or special-case
// them without inspecting float bit patterns.
package stats

import (
	"math"
	"sort"
)

// Mean calculates the arithmetic mean. Returns 0 for an empty slice;
// callers that need to distinguish emptiness check the length themselves.
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

// Stddev calculates the sample standard deviation (n-1 denominator).
// Returns nil for fewer than 2 samples: a single observation has no variance.
func Stddev(xs []float64) *float64 {
	n := len(xs)
	if n < 2 {
		return nil
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSq += diff * diff
	}
	sd := math.Sqrt(sumSq / float64(n-1))
	return &sd
}

// CoefficientOfVariation calculates stddev/mean, a dimensionless spread
// measure. Returns nil when the stddev is undefined or the mean is zero.
func CoefficientOfVariation(xs []float64) *float64 {
	sd := Stddev(xs)
	if sd == nil {
		return nil
	}
	mean := Mean(xs)
	if mean == 0 {
		return nil
	}
	cv := *sd / mean
	return &cv
}

// Quantile returns the p-quantile of sorted using linear interpolation.
// sorted must be pre-sorted ASC; p in [0, 1].
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Buckets is an equal-frequency partition of a value slice.
// Edges has Count()+1 entries; interval j is (Edges[j], Edges[j+1]], with the
// lowest interval additionally including its left edge.
type Buckets struct {
	Edges []float64
	Index []int // bucket index per input value, parallel to the input slice
}

// Count returns the number of buckets actually produced.
func (b Buckets) Count() int {
	if len(b.Edges) < 2 {
		return 0
	}
	return len(b.Edges) - 1
}

// QuantileBuckets partitions values into at most k equal-frequency buckets.
//
// Small-sample policy: the target bucket count is min(k, len(values)), and
// duplicate quantile boundaries are dropped, yielding fewer, wider buckets
// rather than failing. All-equal input collapses to a single bucket. The
// bucket count therefore never exceeds the number of rows.
func QuantileBuckets(values []float64, k int) Buckets {
	n := len(values)
	if n == 0 {
		return Buckets{}
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	edges := make([]float64, 0, k+1)
	for i := 0; i <= k; i++ {
		q := Quantile(sorted, float64(i)/float64(k))
		if len(edges) == 0 || q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}
	if len(edges) < 2 {
		// Every value identical: one bucket spanning the single point.
		edges = []float64{sorted[0], sorted[n-1]}
	}

	index := make([]int, n)
	for i, v := range values {
		index[i] = bucketIndex(edges, v)
	}
	return Buckets{Edges: edges, Index: index}
}

// bucketIndex locates v in the half-open intervals defined by edges.
func bucketIndex(edges []float64, v float64) int {
	for j := len(edges) - 2; j > 0; j-- {
		if v > edges[j] {
			return j
		}
	}
	return 0
}

// Round4 rounds to 4 decimal places, the precision reported for all
// aggregated pattern metrics.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
