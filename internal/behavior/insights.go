package behavior

import (
	"fmt"
	"strings"

	"trade-analytics/internal/stats"
)

// Wording thresholds for the consistency insights.
const (
	positionVarianceThreshold = 0.5
	veryConsistentThreshold   = 0.01
	highlyVariableThreshold   = 0.05
)

// GetBehaviorInsights renders the behavioral signals as natural-language
// sentences. Undefined measures fail their threshold comparisons and the
// corresponding sentences are simply omitted.
func (a *Analyzer) GetBehaviorInsights() ([]string, error) {
	insights := []string{}

	overtrading, err := a.DetectOvertrading()
	if err != nil {
		return nil, err
	}
	insights = append(insights, fmt.Sprintf(
		"On average, you make %.2f trades per day, with a maximum of %d trades in a single day.",
		overtrading.AvgTradesPerDay, overtrading.MaxTradesPerDay))
	if overtrading.ExcessiveDays > 0 {
		insights = append(insights, fmt.Sprintf(
			"There were %d days with excessive trading, which might indicate overtrading tendencies.",
			overtrading.ExcessiveDays))
	}

	revenge, err := a.DetectRevengeTrading()
	if err != nil {
		return nil, err
	}
	if revenge.QuickTradesAfterLosses > 0 {
		insights = append(insights, fmt.Sprintf(
			"You made %d quick trades after losses, which could be signs of revenge trading.",
			revenge.QuickTradesAfterLosses))
		insights = append(insights, fmt.Sprintf(
			"The success rate of these quick trades is %s, with an average PNL of %.2f.",
			pct(*revenge.NextTradeWinRate), *revenge.AvgNextTradePNL))
	}

	risk, err := a.AnalyzeRiskManagementConsistency()
	if err != nil {
		return nil, err
	}
	if above(risk.PositionSizeConsistency, positionVarianceThreshold) {
		insights = append(insights,
			"Your position sizes vary considerably, which might indicate inconsistent risk management.")
	} else {
		insights = append(insights,
			"Your position sizes are relatively consistent, showing good risk management practices.")
	}

	if below(risk.StopLossConsistency, veryConsistentThreshold) {
		insights = append(insights,
			"Your stop loss placements are very consistent, which is a positive risk management practice.")
	} else if above(risk.StopLossConsistency, highlyVariableThreshold) {
		insights = append(insights,
			"Your stop loss placements vary significantly, which could lead to inconsistent risk exposure.")
	}

	if below(risk.RiskPerTradeConsistency, veryConsistentThreshold) {
		insights = append(insights,
			"Your risk per trade is very consistent, indicating disciplined risk management.")
	} else if above(risk.RiskPerTradeConsistency, highlyVariableThreshold) {
		insights = append(insights,
			"Your risk per trade varies considerably, which might lead to inconsistent overall risk exposure.")
	}

	return insights, nil
}

// GetKeyInsights renders a one-sentence summary of overall performance.
func (a *Analyzer) GetKeyInsights() (string, error) {
	if len(a.table) == 0 {
		return "", fmt.Errorf("key insights: %w", ErrEmptyTable)
	}

	wins := 0
	totalPNL := 0.0
	for _, t := range a.table {
		if t.IsWin() {
			wins++
		}
		totalPNL += t.NetPNL
	}
	winRate := float64(wins) / float64(len(a.table))
	riskLevel := strings.ToLower(a.DetermineRiskLevel())

	return fmt.Sprintf(
		"Over %d trades, you achieved a %s win rate with a total PNL of %.2f. Your trading strategy shows a Sharpe ratio of %s, indicating a %s risk level.",
		len(a.table), pct(winRate), totalPNL, formatRatio(a.CalculateSharpeRatio()), riskLevel), nil
}

func above(v *float64, threshold float64) bool {
	return v != nil && *v > threshold
}

func below(v *float64, threshold float64) bool {
	return v != nil && *v < threshold
}

// formatRatio renders a possibly undefined ratio; "n/a" replaces the NaN
// the upstream service printed for degenerate tables.
func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// pct formats a fraction as a percentage with 2 decimals.
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", stats.Round4(v)*100)
}
