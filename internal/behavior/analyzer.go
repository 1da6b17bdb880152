// Package behavior detects behavioral trading signals in a derived trade
// table: overtrading, revenge trading, risk-management consistency, loss
// recovery, Sharpe ratio and a discrete risk classification.
package behavior

import (
	"errors"
	"fmt"
	"math"
	"time"

	"trade-analytics/internal/domain"
	"trade-analytics/internal/stats"
)

// ErrEmptyTable is returned when an analyzer is constructed over no rows.
var ErrEmptyTable = errors.New("empty derived table")

// revengeWindow is the maximum gap between a loss and the next trade for
// the loss to count as a revenge-trading signal.
const revengeWindow = 30 * time.Minute

// annualizationFactor converts per-trade return statistics to an annual
// Sharpe ratio, assuming 252 trading days per year.
const annualizationFactor = 252

// Risk classification levels.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
)

// Analyzer runs behavioral queries over one derived trade table. The table
// must be sorted ascending by date; every time-dependent signal relies on
// that ordering. Each instance owns its own copy.
type Analyzer struct {
	table []domain.DerivedTrade
}

// NewAnalyzer creates an analyzer over a copy of table.
func NewAnalyzer(table []domain.DerivedTrade) *Analyzer {
	rows := make([]domain.DerivedTrade, len(table))
	copy(rows, table)
	return &Analyzer{table: rows}
}

// OvertradingReport summarizes daily trade volume.
type OvertradingReport struct {
	AvgTradesPerDay float64 `json:"avg_trades_per_day"`
	MaxTradesPerDay int     `json:"max_trades_per_day"`
	// ExcessiveDays counts days whose volume exceeds mean + one stddev of
	// the daily counts. Zero when the stddev is undefined (a single day).
	ExcessiveDays int `json:"days_with_excessive_trading"`
	// FrequencyDistribution maps a daily trade count to the number of days
	// with that count.
	FrequencyDistribution map[int]int `json:"trading_frequency_distribution"`
}

// DetectOvertrading groups trades by calendar date and summarizes the
// per-day volume distribution.
func (a *Analyzer) DetectOvertrading() (*OvertradingReport, error) {
	if len(a.table) == 0 {
		return nil, fmt.Errorf("detect overtrading: %w", ErrEmptyTable)
	}

	perDay := make(map[string]int)
	for _, t := range a.table {
		perDay[t.Date.UTC().Format("2006-01-02")]++
	}

	counts := make([]float64, 0, len(perDay))
	maxCount := 0
	distribution := make(map[int]int, len(perDay))
	for _, c := range perDay {
		counts = append(counts, float64(c))
		if c > maxCount {
			maxCount = c
		}
		distribution[c]++
	}

	mean := stats.Mean(counts)
	excessive := 0
	if sd := stats.Stddev(counts); sd != nil {
		threshold := mean + *sd
		for _, c := range counts {
			if c > threshold {
				excessive++
			}
		}
	}

	return &OvertradingReport{
		AvgTradesPerDay:       mean,
		MaxTradesPerDay:       maxCount,
		ExcessiveDays:         excessive,
		FrequencyDistribution: distribution,
	}, nil
}

// RevengeTradingReport summarizes rapid re-entries after losses.
// NextTradeWinRate and AvgNextTradePNL describe the trade immediately
// following each flagged loss; both are nil when nothing was flagged.
type RevengeTradingReport struct {
	QuickTradesAfterLosses int      `json:"quick_trades_after_losses"`
	NextTradeWinRate       *float64 `json:"quick_trades_after_losses_success_rate"`
	AvgNextTradePNL        *float64 `json:"avg_pnl_after_quick_trade"`
}

// DetectRevengeTrading flags losses followed by another trade within the
// revenge window and reports how the follow-up trades performed. The last
// trade has no successor and is never flagged.
func (a *Analyzer) DetectRevengeTrading() (*RevengeTradingReport, error) {
	if len(a.table) == 0 {
		return nil, fmt.Errorf("detect revenge trading: %w", ErrEmptyTable)
	}

	var successors []domain.DerivedTrade
	for i := 0; i+1 < len(a.table); i++ {
		t, next := a.table[i], a.table[i+1]
		if t.Status == domain.StatusLoss && next.Date.Sub(t.Date) < revengeWindow {
			successors = append(successors, next)
		}
	}

	report := &RevengeTradingReport{QuickTradesAfterLosses: len(successors)}
	if len(successors) > 0 {
		wins := 0
		pnl := make([]float64, len(successors))
		for i, t := range successors {
			if t.IsWin() {
				wins++
			}
			pnl[i] = t.NetPNL
		}
		rate := float64(wins) / float64(len(successors))
		avgPNL := stats.Mean(pnl)
		report.NextTradeWinRate = &rate
		report.AvgNextTradePNL = &avgPNL
	}
	return report, nil
}

// RiskConsistencyReport holds three dimensionless consistency measures.
// Each is nil when undefined (single row, zero mean, or a zero divisor).
type RiskConsistencyReport struct {
	PositionSizeConsistency *float64 `json:"position_size_consistency"`
	StopLossConsistency     *float64 `json:"stop_loss_consistency"`
	RiskPerTradeConsistency *float64 `json:"risk_per_trade_consistency"`
}

// AnalyzeRiskManagementConsistency reports the coefficient of variation of
// position sizes, the stddev of relative stop distance and the stddev of
// risk taken per trade.
func (a *Analyzer) AnalyzeRiskManagementConsistency() (*RiskConsistencyReport, error) {
	if len(a.table) == 0 {
		return nil, fmt.Errorf("risk management consistency: %w", ErrEmptyTable)
	}

	sizes := make([]float64, len(a.table))
	for i, t := range a.table {
		sizes[i] = t.Size
	}

	stopDistances := make([]float64, 0, len(a.table))
	for _, t := range a.table {
		if t.EntryPrice == 0 {
			stopDistances = nil
			break
		}
		stopDistances = append(stopDistances, math.Abs(t.StopLoss-t.EntryPrice)/t.EntryPrice)
	}

	riskPerTrade := make([]float64, 0, len(a.table))
	for _, t := range a.table {
		if t.AccountBalance == 0 {
			riskPerTrade = nil
			break
		}
		riskPerTrade = append(riskPerTrade, math.Abs(t.NetPNL)/t.AccountBalance)
	}

	return &RiskConsistencyReport{
		PositionSizeConsistency: stats.CoefficientOfVariation(sizes),
		StopLossConsistency:     stats.Stddev(stopDistances),
		RiskPerTradeConsistency: stats.Stddev(riskPerTrade),
	}, nil
}

// CalculateLossRecoveryRate returns the mean length of completed loss
// streaks: runs of consecutive non-win trades terminated by a win. A table
// with no completed streak (including one with no wins at all) yields nil.
func (a *Analyzer) CalculateLossRecoveryRate() *float64 {
	var streaks []float64
	run := 0
	for _, t := range a.table {
		if t.IsWin() {
			if run > 0 {
				streaks = append(streaks, float64(run))
			}
			run = 0
		} else {
			run++
		}
	}
	if len(streaks) == 0 {
		return nil
	}
	mean := stats.Mean(streaks)
	return &mean
}

// CalculateSharpeRatio returns mean(accountChange)/std(accountChange)
// annualized by sqrt(252). Nil when the stddev is undefined or zero.
func (a *Analyzer) CalculateSharpeRatio() *float64 {
	returns := make([]float64, len(a.table))
	for i, t := range a.table {
		returns[i] = t.AccountChange
	}
	sd := stats.Stddev(returns)
	if sd == nil || *sd == 0 {
		return nil
	}
	sharpe := stats.Mean(returns) / *sd * math.Sqrt(annualizationFactor)
	return &sharpe
}

// maxDrawdown returns the worst peak-to-trough decline of the account
// balance over the date-ordered table, relative to the starting balance.
// Nil when the starting balance is zero.
func (a *Analyzer) maxDrawdown() *float64 {
	if len(a.table) == 0 || a.table[0].AccountBalance == 0 {
		return nil
	}
	peak := a.table[0].AccountBalance
	worst := 0.0
	for _, t := range a.table {
		if t.AccountBalance > peak {
			peak = t.AccountBalance
		}
		if dd := peak - t.AccountBalance; dd > worst {
			worst = dd
		}
	}
	dd := worst / a.table[0].AccountBalance
	return &dd
}

// DetermineRiskLevel classifies overall risk from the Sharpe ratio and
// maximum drawdown. Rules are evaluated in priority order; an undefined
// input fails the comparison, so degenerate tables classify as High.
func (a *Analyzer) DetermineRiskLevel() string {
	return classifyRisk(a.CalculateSharpeRatio(), a.maxDrawdown())
}

func classifyRisk(sharpe, drawdown *float64) string {
	defined := sharpe != nil && drawdown != nil
	switch {
	case defined && *sharpe > 1.5 && *drawdown < 0.10:
		return RiskLow
	case defined && *sharpe > 0.5 && *drawdown < 0.20:
		return RiskModerate
	default:
		return RiskHigh
	}
}
