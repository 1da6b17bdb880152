// Package validate checks incoming trade payloads against the trade schema
// before any analysis runs. Downstream code never re-inspects field
// presence or types.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trade-analytics/internal/domain"
)

// dateLayouts are the accepted date formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FieldError describes one schema violation in one record.
type FieldError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error aggregates every schema violation found in a payload.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		f := e.Fields[0]
		return fmt.Sprintf("trade %d: %s: %s", f.Index, f.Field, f.Message)
	}
	return fmt.Sprintf("%d schema violations", len(e.Fields))
}

// tradePayload mirrors the wire schema. Pointer fields distinguish missing
// from zero; unknown fields are ignored.
type tradePayload struct {
	Pair           *string  `json:"pair"`
	Direction      *string  `json:"direction"`
	Status         *string  `json:"status"`
	Strategy       *string  `json:"strategy"`
	Date           *string  `json:"date"`
	AccountBalance *float64 `json:"accountBalance"`
	EntryPrice     *float64 `json:"entryPrice"`
	Size           *float64 `json:"size"`
	StopLoss       *float64 `json:"stopLoss"`
	Target         *float64 `json:"target"`
	ExitPrice      *float64 `json:"exitPrice"`
	NetPNL         *float64 `json:"netPNL"`
	AccountChange  *float64 `json:"accountChange"`
}

// ParseTrades decodes a JSON array of trade records and validates each one.
// On success it returns the records in input order with pair names
// normalized (forward slashes stripped). On failure it returns an *Error
// listing every violation.
func ParseTrades(body []byte) ([]domain.TradeRecord, error) {
	var payloads []tradePayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, &Error{Fields: []FieldError{
			{Index: 0, Field: "_body", Message: "expected a JSON array of trade records"},
		}}
	}

	verr := &Error{}
	records := make([]domain.TradeRecord, 0, len(payloads))
	for i, p := range payloads {
		rec, fieldErrs := buildRecord(i, p)
		if len(fieldErrs) > 0 {
			verr.Fields = append(verr.Fields, fieldErrs...)
			continue
		}
		records = append(records, rec)
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return records, nil
}

func buildRecord(index int, p tradePayload) (domain.TradeRecord, []FieldError) {
	var errs []FieldError
	missing := func(field string) {
		errs = append(errs, FieldError{Index: index, Field: field, Message: "required field is missing"})
	}
	invalid := func(field, msg string) {
		errs = append(errs, FieldError{Index: index, Field: field, Message: msg})
	}

	var rec domain.TradeRecord

	if p.Pair == nil || *p.Pair == "" {
		missing("pair")
	} else {
		rec.Pair = strings.ReplaceAll(*p.Pair, "/", "")
	}

	switch {
	case p.Direction == nil:
		missing("direction")
	case *p.Direction != string(domain.DirectionLong) && *p.Direction != string(domain.DirectionShort):
		invalid("direction", `must be "long" or "short"`)
	default:
		rec.Direction = domain.Direction(*p.Direction)
	}

	switch {
	case p.Status == nil:
		missing("status")
	case *p.Status != string(domain.StatusWin) && *p.Status != string(domain.StatusLoss):
		invalid("status", `must be "win" or "loss"`)
	default:
		rec.Status = domain.Status(*p.Status)
	}

	if p.Strategy != nil {
		rec.Strategy = *p.Strategy
	}

	if p.Date == nil {
		missing("date")
	} else if date, ok := parseDate(*p.Date); ok {
		rec.Date = date
	} else {
		invalid("date", "not a valid timestamp")
	}

	numbers := []struct {
		field string
		src   *float64
		dst   *float64
	}{
		{"accountBalance", p.AccountBalance, &rec.AccountBalance},
		{"entryPrice", p.EntryPrice, &rec.EntryPrice},
		{"size", p.Size, &rec.Size},
		{"stopLoss", p.StopLoss, &rec.StopLoss},
		{"target", p.Target, &rec.Target},
		{"exitPrice", p.ExitPrice, &rec.ExitPrice},
		{"netPNL", p.NetPNL, &rec.NetPNL},
		{"accountChange", p.AccountChange, &rec.AccountChange},
	}
	for _, n := range numbers {
		if n.src == nil {
			missing(n.field)
			continue
		}
		*n.dst = *n.src
	}

	return rec, errs
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
