// Package derive builds the derived trade table consumed by both analyzers.
package derive

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"trade-analytics/internal/domain"
)

// ErrNoTrades is returned when the input batch is empty. Every analysis
// requires at least one trade.
var ErrNoTrades = errors.New("no trades to analyze")

// DataError reports a numeric field that is not finite after parsing.
// Schema validation upstream guarantees presence and type; this is the
// fail-fast guard against silently wrong statistics.
type DataError struct {
	Index int
	Field string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("trade %d: field %q is not finite", e.Index, e.Field)
}

// Table computes per-trade risk, reward and risk/reward ratio and returns
// the rows sorted ascending by date. The sort is stable: ties keep the
// original input order. Row count is always preserved.
//
// A row with zero risk has an undefined ratio (nil RRRatio) rather than an
// infinity, so bucketing can apply an explicit policy.
func Table(records []domain.TradeRecord) ([]domain.DerivedTrade, error) {
	if len(records) == 0 {
		return nil, ErrNoTrades
	}

	rows := make([]domain.DerivedTrade, len(records))
	for i, rec := range records {
		if field, ok := nonFiniteField(rec); ok {
			return nil, &DataError{Index: i, Field: field}
		}

		row := domain.DerivedTrade{TradeRecord: rec}
		row.Risk = math.Abs(rec.EntryPrice - rec.StopLoss)
		row.Reward = math.Abs(rec.Target - rec.EntryPrice)
		if row.Risk > 0 {
			rr := row.Reward / row.Risk
			row.RRRatio = &rr
		}
		rows[i] = row
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows, nil
}

// nonFiniteField returns the name of the first NaN or infinite numeric
// field, if any.
func nonFiniteField(rec domain.TradeRecord) (string, bool) {
	fields := []struct {
		name  string
		value float64
	}{
		{"accountBalance", rec.AccountBalance},
		{"entryPrice", rec.EntryPrice},
		{"size", rec.Size},
		{"stopLoss", rec.StopLoss},
		{"target", rec.Target},
		{"exitPrice", rec.ExitPrice},
		{"netPNL", rec.NetPNL},
		{"accountChange", rec.AccountChange},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return f.name, true
		}
	}
	return "", false
}
