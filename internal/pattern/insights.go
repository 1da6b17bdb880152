package pattern

import (
	"fmt"
	"strings"

	"trade-analytics/internal/domain"
)

// directionBiasThreshold is the win-rate gap (10 percentage points) above
// which a pair's directional bias is called significant.
const directionBiasThreshold = 0.1

// Insights groups the natural-language findings of each pattern analysis.
type Insights struct {
	PositionSize  []string `json:"position_size_insights"`
	PairDirection []string `json:"pair_direction_insights"`
	RiskReward    []string `json:"risk_reward_insights"`
}

// GetAllInsights runs every pattern analysis and renders its findings as
// natural-language sentences.
func (a *Analyzer) GetAllInsights() (*Insights, error) {
	sizeInsights, err := a.positionSizeInsights()
	if err != nil {
		return nil, err
	}
	dirInsights, err := a.pairDirectionInsights()
	if err != nil {
		return nil, err
	}
	rrInsights, err := a.riskRewardInsights()
	if err != nil {
		return nil, err
	}
	return &Insights{
		PositionSize:  sizeInsights,
		PairDirection: dirInsights,
		RiskReward:    rrInsights,
	}, nil
}

// positionSizeInsights compares the largest and smallest position-size
// buckets. Buckets are compared in size order, smallest first.
func (a *Analyzer) positionSizeInsights() ([]string, error) {
	buckets, err := a.positionSizeBuckets()
	if err != nil {
		return nil, err
	}

	insights := []string{}
	first, last := buckets[0], buckets[len(buckets)-1]

	switch {
	case last.Metrics.WinRate > first.Metrics.WinRate:
		insights = append(insights, fmt.Sprintf(
			"Larger position sizes tend to have higher win rates, with %s positions having a %s win rate compared to %s for %s positions.",
			last.Label, pct(last.Metrics.WinRate), pct(first.Metrics.WinRate), first.Label))
	case first.Metrics.WinRate > last.Metrics.WinRate:
		insights = append(insights, fmt.Sprintf(
			"Smaller position sizes tend to have higher win rates, with %s positions having a %s win rate compared to %s for %s positions.",
			first.Label, pct(first.Metrics.WinRate), pct(last.Metrics.WinRate), last.Label))
	}

	switch {
	case last.Metrics.NetPNL.Mean > first.Metrics.NetPNL.Mean:
		insights = append(insights, fmt.Sprintf(
			"Larger positions tend to be more profitable, with an average PNL of %.2f for %s positions compared to %.2f for %s positions.",
			last.Metrics.NetPNL.Mean, last.Label, first.Metrics.NetPNL.Mean, first.Label))
	case first.Metrics.NetPNL.Mean > last.Metrics.NetPNL.Mean:
		insights = append(insights, fmt.Sprintf(
			"Smaller positions tend to be more profitable, with an average PNL of %.2f for %s positions compared to %.2f for %s positions.",
			first.Metrics.NetPNL.Mean, first.Label, last.Metrics.NetPNL.Mean, last.Label))
	}

	return insights, nil
}

// pairDirectionInsights reports pairs where one direction clearly
// outperforms the other, and pairs traded in only one direction.
func (a *Analyzer) pairDirectionInsights() ([]string, error) {
	analysis, err := a.AnalyzePairDirectionBias()
	if err != nil {
		return nil, err
	}

	insights := []string{}
	for _, pair := range sortedPairs(analysis) {
		directions := analysis[pair]
		long, hasLong := directions[string(domain.DirectionLong)]
		short, hasShort := directions[string(domain.DirectionShort)]

		switch {
		case hasLong && hasShort:
			gap := long.WinRate - short.WinRate
			if gap > directionBiasThreshold || gap < -directionBiasThreshold {
				better, worse := "long", "short"
				betterM, worseM := long, short
				if short.WinRate > long.WinRate {
					better, worse = "short", "long"
					betterM, worseM = short, long
				}
				insights = append(insights, fmt.Sprintf(
					"For %s, %s trades have a significantly higher win rate (%s) compared to %s trades (%s).",
					pair, better, pct(betterM.WinRate), worse, pct(worseM.WinRate)))
			}
		case hasLong:
			insights = append(insights, fmt.Sprintf(
				"For %s, only long trades were found with a win rate of %s.", pair, pct(long.WinRate)))
		case hasShort:
			insights = append(insights, fmt.Sprintf(
				"For %s, only short trades were found with a win rate of %s.", pair, pct(short.WinRate)))
		}
	}

	if len(insights) == 0 {
		insights = append(insights, "No significant directional bias was found for any currency pair.")
	}
	return insights, nil
}

// riskRewardInsights compares the highest and lowest risk/reward buckets.
func (a *Analyzer) riskRewardInsights() ([]string, error) {
	buckets, err := a.riskRewardBuckets()
	if err != nil {
		return nil, err
	}
	insights := []string{}
	if len(buckets) == 0 {
		return insights, nil
	}

	first, last := buckets[0], buckets[len(buckets)-1]

	switch {
	case last.Metrics.WinRate > first.Metrics.WinRate:
		insights = append(insights, fmt.Sprintf(
			"Trades with higher risk-reward ratios tend to have better win rates, with %s R:R trades having a %s win rate compared to %s for %s R:R trades.",
			last.Key, pct(last.Metrics.WinRate), pct(first.Metrics.WinRate), first.Key))
	case first.Metrics.WinRate > last.Metrics.WinRate:
		insights = append(insights, fmt.Sprintf(
			"Trades with lower risk-reward ratios tend to have better win rates, with %s R:R trades having a %s win rate compared to %s for %s R:R trades.",
			first.Key, pct(first.Metrics.WinRate), pct(last.Metrics.WinRate), last.Key))
	}

	switch {
	case last.Metrics.AvgNetPNL > first.Metrics.AvgNetPNL:
		insights = append(insights, fmt.Sprintf(
			"Trades with higher risk-reward ratios tend to be more profitable, with an average PNL of %.2f for %s R:R trades compared to %.2f for %s R:R trades.",
			last.Metrics.AvgNetPNL, last.Key, first.Metrics.AvgNetPNL, first.Key))
	case first.Metrics.AvgNetPNL > last.Metrics.AvgNetPNL:
		insights = append(insights, fmt.Sprintf(
			"Trades with lower risk-reward ratios tend to be more profitable, with an average PNL of %.2f for %s R:R trades compared to %.2f for %s R:R trades.",
			first.Metrics.AvgNetPNL, first.Key, last.Metrics.AvgNetPNL, last.Key))
	}

	return insights, nil
}

// GetKeyTradingInsights selects the single best-performing group from each
// analysis and renders a short digest.
func (a *Analyzer) GetKeyTradingInsights() ([]string, error) {
	insights := []string{}

	// Direction combos with a perfect record.
	direction, err := a.AnalyzePairDirectionBias()
	if err != nil {
		return nil, err
	}
	var perfect []string
	for _, pair := range sortedPairs(direction) {
		for _, dir := range []string{"long", "short"} {
			if m, ok := direction[pair][dir]; ok && m.WinRate == 1.0 {
				perfect = append(perfect, pair+" "+dir)
			}
		}
	}
	if len(perfect) > 0 {
		if len(perfect) > 2 {
			perfect = perfect[:2]
		}
		insights = append(insights, fmt.Sprintf(
			"Pair Direction: %s show 100%% win rates.", strings.Join(perfect, " and ")))
	}

	// Highest-win-rate size bucket, first in size order on ties.
	sizeBuckets, err := a.positionSizeBuckets()
	if err != nil {
		return nil, err
	}
	best := sizeBuckets[0]
	for _, b := range sizeBuckets[1:] {
		if b.Metrics.WinRate > best.Metrics.WinRate {
			best = b
		}
	}
	insights = append(insights, fmt.Sprintf(
		"Position Size: %s positions have higher win rates (%s) and profitability.",
		best.Label, pct(best.Metrics.WinRate)))

	// Highest-win-rate risk/reward bucket.
	rrBuckets, err := a.riskRewardBuckets()
	if err != nil {
		return nil, err
	}
	if len(rrBuckets) > 0 {
		bestRR := rrBuckets[0]
		for _, b := range rrBuckets[1:] {
			if b.Metrics.WinRate > bestRR.Metrics.WinRate {
				bestRR = b
			}
		}
		insights = append(insights, fmt.Sprintf(
			"Risk-Reward: Higher R:R ratios (%s) yield better win rates (%s) and profitability.",
			bestRR.Key, pct(bestRR.Metrics.WinRate)))
	}

	return insights, nil
}

// pct formats a fraction as a percentage with 2 decimals, e.g. "66.67%".
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
