// Package pattern discovers performance patterns in a derived trade table:
// position-size buckets, pair/direction bias and risk/reward effectiveness.
package pattern

import (
	"errors"
	"fmt"
	"sort"

	"trade-analytics/internal/domain"
	"trade-analytics/internal/stats"
)

// ErrEmptyTable is returned when an analyzer is constructed over no rows.
var ErrEmptyTable = errors.New("empty derived table")

// sizeLabels are the nominal position-size bucket names, smallest first.
// When fewer buckets are produced the list is truncated, never indexed past.
var sizeLabels = []string{"Small", "Medium", "Large", "Very Large"}

const targetBuckets = 4

// Analyzer runs read-only pattern queries over one derived trade table.
// Each instance owns its own copy of the table, so concurrent analysis
// calls never share state.
type Analyzer struct {
	table []domain.DerivedTrade
}

// NewAnalyzer creates an analyzer over a copy of table.
func NewAnalyzer(table []domain.DerivedTrade) *Analyzer {
	rows := make([]domain.DerivedTrade, len(table))
	copy(rows, table)
	return &Analyzer{table: rows}
}

// DistStats is the mean and sample standard deviation of a metric within a
// bucket. Std is nil for single-row buckets, which have no variance.
type DistStats struct {
	Mean float64  `json:"mean"`
	Std  *float64 `json:"std"`
}

// SizeBucketMetrics is the per-bucket result of the position-size analysis.
type SizeBucketMetrics struct {
	WinRate       float64   `json:"win_rate"`
	NetPNL        DistStats `json:"netPNL"`
	AccountChange DistStats `json:"accountChange"`
}

// sizeBucket pairs a label with its metrics, preserving bucket order
// (smallest position sizes first) for insight generation.
type sizeBucket struct {
	Label   string
	Metrics SizeBucketMetrics
}

// AnalyzePositionSizeImpact partitions trades into quantile buckets of
// position size and reports win rate plus netPNL/accountChange distribution
// per bucket, keyed by bucket label.
func (a *Analyzer) AnalyzePositionSizeImpact() (map[string]SizeBucketMetrics, error) {
	buckets, err := a.positionSizeBuckets()
	if err != nil {
		return nil, err
	}
	result := make(map[string]SizeBucketMetrics, len(buckets))
	for _, b := range buckets {
		result[b.Label] = b.Metrics
	}
	return result, nil
}

func (a *Analyzer) positionSizeBuckets() ([]sizeBucket, error) {
	if len(a.table) == 0 {
		return nil, fmt.Errorf("position size impact: %w", ErrEmptyTable)
	}

	sizes := make([]float64, len(a.table))
	for i, t := range a.table {
		sizes[i] = t.Size
	}
	partition := stats.QuantileBuckets(sizes, targetBuckets)
	labels := sizeLabels[:partition.Count()]

	grouped := make([][]domain.DerivedTrade, partition.Count())
	for i, t := range a.table {
		j := partition.Index[i]
		grouped[j] = append(grouped[j], t)
	}

	out := make([]sizeBucket, 0, len(grouped))
	for j, rows := range grouped {
		if len(rows) == 0 {
			continue
		}
		pnl := collect(rows, func(t domain.DerivedTrade) float64 { return t.NetPNL })
		change := collect(rows, func(t domain.DerivedTrade) float64 { return t.AccountChange })
		out = append(out, sizeBucket{
			Label: labels[j],
			Metrics: SizeBucketMetrics{
				WinRate:       stats.Round4(winRate(rows)),
				NetPNL:        distStats(pnl),
				AccountChange: distStats(change),
			},
		})
	}
	return out, nil
}

// DirectionMetrics is the per-(pair, direction) result of the bias analysis.
type DirectionMetrics struct {
	WinRate          float64 `json:"win_rate"`
	AvgNetPNL        float64 `json:"avg_netPNL"`
	AvgAccountChange float64 `json:"avg_accountChange"`
}

// AnalyzePairDirectionBias groups trades by (pair, direction) and reports
// win rate and mean profitability per group. Directions with no trades for
// a pair are absent, not zero-filled.
func (a *Analyzer) AnalyzePairDirectionBias() (map[string]map[string]DirectionMetrics, error) {
	if len(a.table) == 0 {
		return nil, fmt.Errorf("pair direction bias: %w", ErrEmptyTable)
	}

	groups := make(map[string]map[string][]domain.DerivedTrade)
	for _, t := range a.table {
		byDir, ok := groups[t.Pair]
		if !ok {
			byDir = make(map[string][]domain.DerivedTrade)
			groups[t.Pair] = byDir
		}
		dir := string(t.Direction)
		byDir[dir] = append(byDir[dir], t)
	}

	result := make(map[string]map[string]DirectionMetrics, len(groups))
	for pair, byDir := range groups {
		result[pair] = make(map[string]DirectionMetrics, len(byDir))
		for dir, rows := range byDir {
			pnl := collect(rows, func(t domain.DerivedTrade) float64 { return t.NetPNL })
			change := collect(rows, func(t domain.DerivedTrade) float64 { return t.AccountChange })
			result[pair][dir] = DirectionMetrics{
				WinRate:          stats.Round4(winRate(rows)),
				AvgNetPNL:        stats.Round4(stats.Mean(pnl)),
				AvgAccountChange: stats.Round4(stats.Mean(change)),
			}
		}
	}
	return result, nil
}

// RRBucketMetrics is the per-bucket result of the risk/reward analysis.
type RRBucketMetrics struct {
	WinRate   float64 `json:"win_rate"`
	AvgNetPNL float64 `json:"avg_netPNL"`
}

// rrBucket pairs a formatted interval key with its metrics, ordered by the
// interval's lower edge.
type rrBucket struct {
	Key     string
	Metrics RRBucketMetrics
}

// AnalyzeRiskRewardPatterns partitions trades into quantile buckets of
// risk/reward ratio and reports win rate and mean netPNL per bucket. Bucket
// keys are the numeric interval formatted as "lower-upper" with 2 decimals.
//
// Rows whose ratio is undefined (zero risk) are excluded from the partition.
func (a *Analyzer) AnalyzeRiskRewardPatterns() (map[string]RRBucketMetrics, error) {
	buckets, err := a.riskRewardBuckets()
	if err != nil {
		return nil, err
	}
	result := make(map[string]RRBucketMetrics, len(buckets))
	for _, b := range buckets {
		result[b.Key] = b.Metrics
	}
	return result, nil
}

func (a *Analyzer) riskRewardBuckets() ([]rrBucket, error) {
	if len(a.table) == 0 {
		return nil, fmt.Errorf("risk reward patterns: %w", ErrEmptyTable)
	}

	var rows []domain.DerivedTrade
	var ratios []float64
	for _, t := range a.table {
		if t.RRRatio == nil {
			continue
		}
		rows = append(rows, t)
		ratios = append(ratios, *t.RRRatio)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	partition := stats.QuantileBuckets(ratios, targetBuckets)
	grouped := make([][]domain.DerivedTrade, partition.Count())
	for i, t := range rows {
		j := partition.Index[i]
		grouped[j] = append(grouped[j], t)
	}

	out := make([]rrBucket, 0, len(grouped))
	for j, group := range grouped {
		if len(group) == 0 {
			continue
		}
		pnl := collect(group, func(t domain.DerivedTrade) float64 { return t.NetPNL })
		out = append(out, rrBucket{
			Key: fmt.Sprintf("%.2f-%.2f", partition.Edges[j], partition.Edges[j+1]),
			Metrics: RRBucketMetrics{
				WinRate:   stats.Round4(winRate(group)),
				AvgNetPNL: stats.Round4(stats.Mean(pnl)),
			},
		})
	}
	return out, nil
}

// winRate is the fraction of rows with status = win.
func winRate(rows []domain.DerivedTrade) float64 {
	if len(rows) == 0 {
		return 0
	}
	wins := 0
	for _, t := range rows {
		if t.IsWin() {
			wins++
		}
	}
	return float64(wins) / float64(len(rows))
}

func distStats(xs []float64) DistStats {
	ds := DistStats{Mean: stats.Round4(stats.Mean(xs))}
	if sd := stats.Stddev(xs); sd != nil {
		rounded := stats.Round4(*sd)
		ds.Std = &rounded
	}
	return ds
}

func collect(rows []domain.DerivedTrade, f func(domain.DerivedTrade) float64) []float64 {
	xs := make([]float64, len(rows))
	for i, t := range rows {
		xs[i] = f(t)
	}
	return xs
}

// sortedPairs returns pair keys in lexical order for deterministic output.
func sortedPairs(m map[string]map[string]DirectionMetrics) []string {
	pairs := make([]string, 0, len(m))
	for p := range m {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)
	return pairs
}
