package http

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"trade-analytics/internal/behavior"
	"trade-analytics/internal/derive"
	"trade-analytics/internal/domain"
	"trade-analytics/internal/observability"
	"trade-analytics/internal/pattern"
	"trade-analytics/internal/validate"
)

// parseTable validates the request body and derives the trade table.
// A nil table with a nil error means the response was already written.
func (r *Router) parseTable(c *fiber.Ctx) ([]domain.DerivedTrade, error) {
	records, err := validate.ParseTrades(c.Body())
	if err != nil {
		observability.RecordValidationFailure()
		var verr *validate.Error
		if errors.As(err, &verr) {
			return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Fields})
		}
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	table, err := derive.Table(records)
	if err != nil {
		r.log.Warn().Err(err).Msg("derive failed")
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	observability.RecordTradesAnalyzed(len(table))
	return table, nil
}

// patternAnalysis is the numeric half of the pattern response.
type patternAnalysis struct {
	PositionSizeImpact map[string]pattern.SizeBucketMetrics           `json:"position_size_impact"`
	DirectionBias      map[string]map[string]pattern.DirectionMetrics `json:"direction_bias"`
	RiskRewardPatterns map[string]pattern.RRBucketMetrics             `json:"risk_reward_patterns"`
}

func runPatternAnalysis(a *pattern.Analyzer) (*patternAnalysis, *pattern.Insights, error) {
	sizeImpact, err := a.AnalyzePositionSizeImpact()
	if err != nil {
		return nil, nil, err
	}
	directionBias, err := a.AnalyzePairDirectionBias()
	if err != nil {
		return nil, nil, err
	}
	riskReward, err := a.AnalyzeRiskRewardPatterns()
	if err != nil {
		return nil, nil, err
	}
	insights, err := a.GetAllInsights()
	if err != nil {
		return nil, nil, err
	}
	return &patternAnalysis{
		PositionSizeImpact: sizeImpact,
		DirectionBias:      directionBias,
		RiskRewardPatterns: riskReward,
	}, insights, nil
}

// behaviorAnalysis is the numeric half of the behavior response.
type behaviorAnalysis struct {
	Overtrading               *behavior.OvertradingReport     `json:"overtrading"`
	RevengeTrading            *behavior.RevengeTradingReport  `json:"revenge_trading"`
	RiskManagementConsistency *behavior.RiskConsistencyReport `json:"risk_management_consistency"`
}

// combinedBehaviorAnalysis adds the performance block reported only by the
// combined endpoint. Undefined statistics serialize as explicit nulls.
type combinedBehaviorAnalysis struct {
	behaviorAnalysis
	LossRecoveryRate *float64 `json:"loss_recovery_rate"`
	SharpeRatio      *float64 `json:"sharpe_ratio"`
	RiskLevel        string   `json:"risk_level"`
}

func runBehaviorAnalysis(a *behavior.Analyzer) (*behaviorAnalysis, error) {
	overtrading, err := a.DetectOvertrading()
	if err != nil {
		return nil, err
	}
	revenge, err := a.DetectRevengeTrading()
	if err != nil {
		return nil, err
	}
	consistency, err := a.AnalyzeRiskManagementConsistency()
	if err != nil {
		return nil, err
	}

	return &behaviorAnalysis{
		Overtrading:               overtrading,
		RevengeTrading:            revenge,
		RiskManagementConsistency: consistency,
	}, nil
}

// analyzePatterns handles POST /api/v1/analyze/patterns.
func (r *Router) analyzePatterns(c *fiber.Ctx) error {
	table, err := r.parseTable(c)
	if table == nil {
		return err
	}

	analysis, insights, err := runPatternAnalysis(pattern.NewAnalyzer(table))
	if err != nil {
		return r.analysisError(c, "pattern", err)
	}

	return c.JSON(fiber.Map{
		"analysis": analysis,
		"insights": insights,
	})
}

// analyzeBehavior handles POST /api/v1/analyze/behavior.
func (r *Router) analyzeBehavior(c *fiber.Ctx) error {
	table, err := r.parseTable(c)
	if table == nil {
		return err
	}

	analyzer := behavior.NewAnalyzer(table)
	analysis, err := runBehaviorAnalysis(analyzer)
	if err != nil {
		return r.analysisError(c, "behavior", err)
	}
	insights, err := analyzer.GetBehaviorInsights()
	if err != nil {
		return r.analysisError(c, "behavior", err)
	}

	return c.JSON(fiber.Map{
		"analysis": analysis,
		"insights": insights,
	})
}

// combinedAnalysis handles POST /api/v1/analyze/combined-analysis, merging
// both analyzers' output into one response.
func (r *Router) combinedAnalysis(c *fiber.Ctx) error {
	table, err := r.parseTable(c)
	if table == nil {
		return err
	}

	patternAnalyzer := pattern.NewAnalyzer(table)
	analysis, patternInsights, err := runPatternAnalysis(patternAnalyzer)
	if err != nil {
		return r.analysisError(c, "pattern", err)
	}
	keyTrading, err := patternAnalyzer.GetKeyTradingInsights()
	if err != nil {
		return r.analysisError(c, "pattern", err)
	}

	behaviorAnalyzer := behavior.NewAnalyzer(table)
	behaviorBase, err := runBehaviorAnalysis(behaviorAnalyzer)
	if err != nil {
		return r.analysisError(c, "behavior", err)
	}
	behaviorResult := &combinedBehaviorAnalysis{
		behaviorAnalysis: *behaviorBase,
		LossRecoveryRate: behaviorAnalyzer.CalculateLossRecoveryRate(),
		SharpeRatio:      behaviorAnalyzer.CalculateSharpeRatio(),
		RiskLevel:        behaviorAnalyzer.DetermineRiskLevel(),
	}
	behaviorInsights, err := behaviorAnalyzer.GetBehaviorInsights()
	if err != nil {
		return r.analysisError(c, "behavior", err)
	}
	keyInsights, err := behaviorAnalyzer.GetKeyInsights()
	if err != nil {
		return r.analysisError(c, "behavior", err)
	}

	return c.JSON(fiber.Map{
		"pattern_analysis":     analysis,
		"pattern_insights":     patternInsights,
		"behavior_analysis":    behaviorResult,
		"behavior_insights":    behaviorInsights,
		"key_insights":         keyInsights,
		"key_trading_insights": keyTrading,
	})
}

// analysisError reports a failed computation, naming the analyzer so a
// malformed trade log can be debugged from the response alone.
func (r *Router) analysisError(c *fiber.Ctx, analyzer string, err error) error {
	observability.RecordAnalysisError(analyzer)
	r.log.Error().Err(err).Str("analyzer", analyzer).Msg("analysis failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": analyzer + " analysis: " + err.Error(),
	})
}
