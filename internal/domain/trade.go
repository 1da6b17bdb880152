// Package domain defines the core trade types shared by the deriver and analyzers.
package domain

import "time"

// Direction is the side of a trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Status is the outcome of a closed trade.
type Status string

const (
	StatusWin  Status = "win"
	StatusLoss Status = "loss"
)

// TradeRecord represents one closed position from a trader's log.
// Records are constructed once at the validation boundary and never
// mutated afterwards.
type TradeRecord struct {
	Pair           string    // normalized currency pair, e.g. "EURUSD"
	Direction      Direction // long | short
	Status         Status    // win | loss
	Strategy       string    // optional label
	Date           time.Time
	AccountBalance float64
	EntryPrice     float64
	Size           float64
	StopLoss       float64
	Target         float64
	ExitPrice      float64
	NetPNL         float64
	AccountChange  float64 // per-trade percent return proxy
}

// IsWin reports whether the trade closed as a win.
func (t TradeRecord) IsWin() bool {
	return t.Status == StatusWin
}
