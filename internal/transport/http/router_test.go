package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleBody = []byte(`[
	{
		"pair": "USD/JPY", "direction": "long", "status": "win", "strategy": "trend",
		"date": "2023-12-27T10:00:00Z", "accountBalance": 10000, "entryPrice": 142.5,
		"size": 1, "stopLoss": 141.5, "target": 145.5, "exitPrice": 144.8,
		"netPNL": 230, "accountChange": 2.3
	},
	{
		"pair": "EUR/AUD", "direction": "short", "status": "loss", "strategy": "trend",
		"date": "2023-12-30T10:00:00Z", "accountBalance": 10230, "entryPrice": 1.62,
		"size": 1, "stopLoss": 1.63, "target": 1.59, "exitPrice": 1.63,
		"netPNL": -100, "accountChange": -0.98
	},
	{
		"pair": "AUD/USD", "direction": "short", "status": "loss", "strategy": "trend",
		"date": "2024-01-30T10:00:00Z", "accountBalance": 10130, "entryPrice": 0.66,
		"size": 1, "stopLoss": 0.67, "target": 0.63, "exitPrice": 0.67,
		"netPNL": -100, "accountChange": -0.99
	}
]`)

func testRouter() *Router {
	return New(zerolog.Nop())
}

func postJSON(t *testing.T, r *Router, path string, body []byte) (int, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp.StatusCode, decoded
}

func TestAnalyzePatternsEndpoint(t *testing.T) {
	status, body := postJSON(t, testRouter(), "/api/v1/analyze/patterns", sampleBody)

	require.Equal(t, 200, status)
	require.Contains(t, body, "analysis")
	require.Contains(t, body, "insights")

	var analysis struct {
		DirectionBias map[string]map[string]struct {
			WinRate float64 `json:"win_rate"`
		} `json:"direction_bias"`
	}
	require.NoError(t, json.Unmarshal(body["analysis"], &analysis))
	assert.Equal(t, 1.0, analysis.DirectionBias["USDJPY"]["long"].WinRate)
	assert.Equal(t, 0.0, analysis.DirectionBias["EURAUD"]["short"].WinRate)
	assert.Equal(t, 0.0, analysis.DirectionBias["AUDUSD"]["short"].WinRate)
}

func TestAnalyzeBehaviorEndpoint(t *testing.T) {
	status, body := postJSON(t, testRouter(), "/api/v1/analyze/behavior", sampleBody)

	require.Equal(t, 200, status)
	require.Contains(t, body, "analysis")
	require.Contains(t, body, "insights")

	var analysis struct {
		Overtrading struct {
			AvgTradesPerDay float64 `json:"avg_trades_per_day"`
			MaxTradesPerDay int     `json:"max_trades_per_day"`
		} `json:"overtrading"`
		RevengeTrading struct {
			QuickTrades int `json:"quick_trades_after_losses"`
		} `json:"revenge_trading"`
	}
	require.NoError(t, json.Unmarshal(body["analysis"], &analysis))
	assert.Equal(t, 1.0, analysis.Overtrading.AvgTradesPerDay)
	assert.Equal(t, 1, analysis.Overtrading.MaxTradesPerDay)
	assert.Equal(t, 0, analysis.RevengeTrading.QuickTrades)
}

func TestCombinedAnalysisEndpoint(t *testing.T) {
	status, body := postJSON(t, testRouter(), "/api/v1/analyze/combined-analysis", sampleBody)

	require.Equal(t, 200, status)
	for _, key := range []string{
		"pattern_analysis", "pattern_insights",
		"behavior_analysis", "behavior_insights",
		"key_insights", "key_trading_insights",
	} {
		assert.Contains(t, body, key)
	}

	// The combined behavior block always carries the performance fields,
	// as nulls when undefined.
	var behaviorBlock map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["behavior_analysis"], &behaviorBlock))
	require.Contains(t, behaviorBlock, "loss_recovery_rate")
	require.Contains(t, behaviorBlock, "sharpe_ratio")
	require.Contains(t, behaviorBlock, "risk_level")

	var keyInsights string
	require.NoError(t, json.Unmarshal(body["key_insights"], &keyInsights))
	assert.Contains(t, keyInsights, "Over 3 trades")
}

func TestAnalyzeEndpoints_ValidationFailure(t *testing.T) {
	r := testRouter()
	body := []byte(`[{"pair": "EURUSD", "direction": "sideways"}]`)

	status, decoded := postJSON(t, r, "/api/v1/analyze/patterns", body)
	require.Equal(t, 400, status)
	require.Contains(t, decoded, "errors")

	var fields []struct {
		Index   int    `json:"index"`
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(decoded["errors"], &fields))
	assert.NotEmpty(t, fields)
}

func TestAnalyzeEndpoints_MalformedBody(t *testing.T) {
	status, decoded := postJSON(t, testRouter(), "/api/v1/analyze/behavior", []byte(`{"not":"an array"}`))
	require.Equal(t, 400, status)
	assert.Contains(t, decoded, "errors")
}

func TestAnalyzeEndpoints_EmptyTradeList(t *testing.T) {
	status, decoded := postJSON(t, testRouter(), "/api/v1/analyze/combined-analysis", []byte(`[]`))
	require.Equal(t, 400, status)
	assert.Contains(t, decoded, "error")
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := testRouter().App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := testRouter().App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
}
