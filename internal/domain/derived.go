package domain

// DerivedTrade is a TradeRecord extended with computed risk metrics.
//
//	risk     = |entryPrice - stopLoss|
//	reward   = |target - entryPrice|
//	rr_ratio = reward / risk
//
// RRRatio is nil when risk is zero: the ratio is undefined and downstream
// bucketing applies an explicit policy instead of propagating an infinity.
type DerivedTrade struct {
	TradeRecord

	Risk    float64
	Reward  float64
	RRRatio *float64
}
