package behavior

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-analytics/internal/domain"
)

func row(status domain.Status, date time.Time) domain.DerivedTrade {
	return domain.DerivedTrade{
		TradeRecord: domain.TradeRecord{
			Pair:           "EURUSD",
			Direction:      domain.DirectionLong,
			Status:         status,
			Date:           date,
			AccountBalance: 10000,
			EntryPrice:     1.0,
			Size:           1,
			StopLoss:       0.9,
			Target:         1.3,
			ExitPrice:      1.2,
			NetPNL:         100,
			AccountChange:  1.0,
		},
		Risk:   0.1,
		Reward: 0.3,
	}
}

func rows(statuses ...domain.Status) []domain.DerivedTrade {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	table := make([]domain.DerivedTrade, len(statuses))
	for i, s := range statuses {
		table[i] = row(s, base.Add(time.Duration(i)*24*time.Hour))
	}
	return table
}

func TestDetectOvertrading_DailyGrouping(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	table := []domain.DerivedTrade{
		row(domain.StatusWin, day1),
		row(domain.StatusLoss, day1.Add(time.Hour)),
		row(domain.StatusWin, day1.Add(2*time.Hour)),
		row(domain.StatusLoss, day2),
	}

	report, err := NewAnalyzer(table).DetectOvertrading()
	require.NoError(t, err)

	assert.Equal(t, 2.0, report.AvgTradesPerDay)
	assert.Equal(t, 3, report.MaxTradesPerDay)
	assert.Equal(t, map[int]int{3: 1, 1: 1}, report.FrequencyDistribution)
}

func TestDetectOvertrading_SingleDayHasNoExcessiveDays(t *testing.T) {
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	table := []domain.DerivedTrade{
		row(domain.StatusWin, day),
		row(domain.StatusWin, day.Add(time.Hour)),
	}

	report, err := NewAnalyzer(table).DetectOvertrading()
	require.NoError(t, err)

	// One daily count gives an undefined stddev, so no day can exceed the
	// volume threshold.
	assert.Equal(t, 0, report.ExcessiveDays)
	assert.Equal(t, 2.0, report.AvgTradesPerDay)
}

func TestDetectRevengeTrading_WindowBoundary(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	// The first loss is followed within 10 minutes and is flagged; the
	// second loss's successor arrives 2 hours later and is not.
	table := []domain.DerivedTrade{
		row(domain.StatusLoss, base),
		row(domain.StatusWin, base.Add(10*time.Minute)),
		row(domain.StatusLoss, base.Add(time.Hour)),
		row(domain.StatusLoss, base.Add(3*time.Hour)),
	}

	report, err := NewAnalyzer(table).DetectRevengeTrading()
	require.NoError(t, err)

	assert.Equal(t, 1, report.QuickTradesAfterLosses)
	require.NotNil(t, report.NextTradeWinRate)
	assert.Equal(t, 1.0, *report.NextTradeWinRate)
	require.NotNil(t, report.AvgNextTradePNL)
	assert.Equal(t, 100.0, *report.AvgNextTradePNL)
}

func TestDetectRevengeTrading_NoneFlagged(t *testing.T) {
	report, err := NewAnalyzer(rows(domain.StatusLoss, domain.StatusWin)).DetectRevengeTrading()
	require.NoError(t, err)

	assert.Equal(t, 0, report.QuickTradesAfterLosses)
	assert.Nil(t, report.NextTradeWinRate)
	assert.Nil(t, report.AvgNextTradePNL)
}

func TestDetectRevengeTrading_TrailingLossNeverFlagged(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	table := []domain.DerivedTrade{
		row(domain.StatusWin, base),
		row(domain.StatusLoss, base.Add(time.Minute)),
	}

	report, err := NewAnalyzer(table).DetectRevengeTrading()
	require.NoError(t, err)
	assert.Equal(t, 0, report.QuickTradesAfterLosses)
}

func TestAnalyzeRiskManagementConsistency(t *testing.T) {
	table := rows(domain.StatusWin, domain.StatusLoss, domain.StatusWin)

	report, err := NewAnalyzer(table).AnalyzeRiskManagementConsistency()
	require.NoError(t, err)

	// Identical sizes: zero spread, perfectly consistent.
	require.NotNil(t, report.PositionSizeConsistency)
	assert.Equal(t, 0.0, *report.PositionSizeConsistency)
	require.NotNil(t, report.StopLossConsistency)
	assert.Equal(t, 0.0, *report.StopLossConsistency)
	require.NotNil(t, report.RiskPerTradeConsistency)
	assert.Equal(t, 0.0, *report.RiskPerTradeConsistency)
}

func TestAnalyzeRiskManagementConsistency_ZeroDivisors(t *testing.T) {
	table := rows(domain.StatusWin, domain.StatusLoss)
	table[0].EntryPrice = 0
	table[1].AccountBalance = 0

	report, err := NewAnalyzer(table).AnalyzeRiskManagementConsistency()
	require.NoError(t, err)

	assert.Nil(t, report.StopLossConsistency)
	assert.Nil(t, report.RiskPerTradeConsistency)
	assert.NotNil(t, report.PositionSizeConsistency)
}

func TestCalculateLossRecoveryRate(t *testing.T) {
	cases := []struct {
		name     string
		statuses []domain.Status
		want     *float64
	}{
		{"two completed streaks", []domain.Status{domain.StatusLoss, domain.StatusLoss, domain.StatusWin, domain.StatusLoss, domain.StatusWin}, ptr(1.5)},
		{"trailing streak ignored", []domain.Status{domain.StatusWin, domain.StatusLoss, domain.StatusLoss}, nil},
		{"single completed streak", []domain.Status{domain.StatusLoss, domain.StatusLoss, domain.StatusWin}, ptr(2.0)},
		{"no wins", []domain.Status{domain.StatusLoss, domain.StatusLoss}, nil},
		{"all wins", []domain.Status{domain.StatusWin, domain.StatusWin}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewAnalyzer(rows(tc.statuses...)).CalculateLossRecoveryRate()
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestCalculateSharpeRatio(t *testing.T) {
	base := rows(domain.StatusWin, domain.StatusLoss, domain.StatusWin, domain.StatusLoss)
	returns := []float64{1.0, -0.5, 2.0, 0.5}
	for i := range base {
		base[i].AccountChange = returns[i]
	}

	sharpe := NewAnalyzer(base).CalculateSharpeRatio()
	require.NotNil(t, sharpe)

	// Scaling all returns leaves the ratio unchanged.
	scaled := rows(domain.StatusWin, domain.StatusLoss, domain.StatusWin, domain.StatusLoss)
	for i := range scaled {
		scaled[i].AccountChange = returns[i] * 3
	}
	scaledSharpe := NewAnalyzer(scaled).CalculateSharpeRatio()
	require.NotNil(t, scaledSharpe)
	assert.InDelta(t, *sharpe, *scaledSharpe, 1e-9)

	// Shifting them does not.
	shifted := rows(domain.StatusWin, domain.StatusLoss, domain.StatusWin, domain.StatusLoss)
	for i := range shifted {
		shifted[i].AccountChange = returns[i] + 1
	}
	shiftedSharpe := NewAnalyzer(shifted).CalculateSharpeRatio()
	require.NotNil(t, shiftedSharpe)
	assert.Greater(t, math.Abs(*shiftedSharpe-*sharpe), 1e-6)
}

func TestCalculateSharpeRatio_Degenerate(t *testing.T) {
	// Single trade: undefined stddev.
	assert.Nil(t, NewAnalyzer(rows(domain.StatusWin)).CalculateSharpeRatio())

	// Constant returns: zero stddev.
	table := rows(domain.StatusWin, domain.StatusWin, domain.StatusWin)
	assert.Nil(t, NewAnalyzer(table).CalculateSharpeRatio())
}

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		name     string
		sharpe   *float64
		drawdown *float64
		want     string
	}{
		{"strong sharpe, small drawdown", ptr(2.0), ptr(0.05), RiskLow},
		{"sharpe at low boundary", ptr(1.5), ptr(0.05), RiskModerate},
		{"drawdown at low boundary", ptr(2.0), ptr(0.10), RiskModerate},
		{"sharpe at moderate boundary", ptr(0.5), ptr(0.05), RiskHigh},
		{"drawdown at moderate boundary", ptr(1.0), ptr(0.20), RiskHigh},
		{"weak everything", ptr(0.1), ptr(0.5), RiskHigh},
		{"undefined sharpe", nil, ptr(0.01), RiskHigh},
		{"undefined drawdown", ptr(3.0), nil, RiskHigh},
		{"both undefined", nil, nil, RiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyRisk(tc.sharpe, tc.drawdown))
		})
	}
}

func TestGetBehaviorInsights(t *testing.T) {
	insights, err := NewAnalyzer(rows(domain.StatusWin, domain.StatusLoss, domain.StatusWin)).GetBehaviorInsights()
	require.NoError(t, err)
	require.NotEmpty(t, insights)

	assert.Contains(t, insights[0], "trades per day")
	joined := ""
	for _, s := range insights {
		joined += s + "\n"
	}
	assert.Contains(t, joined, "position sizes are relatively consistent")
	assert.Contains(t, joined, "stop loss placements are very consistent")
}

func TestGetKeyInsights_UndefinedSharpe(t *testing.T) {
	summary, err := NewAnalyzer(rows(domain.StatusWin)).GetKeyInsights()
	require.NoError(t, err)

	assert.Contains(t, summary, "Over 1 trades")
	assert.Contains(t, summary, "100.00% win rate")
	assert.Contains(t, summary, "Sharpe ratio of n/a")
	assert.Contains(t, summary, "high risk level")
}

func TestAnalyzer_EmptyTable(t *testing.T) {
	a := NewAnalyzer(nil)

	_, err := a.DetectOvertrading()
	assert.ErrorIs(t, err, ErrEmptyTable)
	_, err = a.DetectRevengeTrading()
	assert.ErrorIs(t, err, ErrEmptyTable)
	_, err = a.AnalyzeRiskManagementConsistency()
	assert.ErrorIs(t, err, ErrEmptyTable)
	_, err = a.GetKeyInsights()
	assert.ErrorIs(t, err, ErrEmptyTable)

	assert.Nil(t, a.CalculateLossRecoveryRate())
	assert.Nil(t, a.CalculateSharpeRatio())
	assert.Equal(t, RiskHigh, a.DetermineRiskLevel())
}

func ptr(v float64) *float64 { return &v }
