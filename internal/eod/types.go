package eod

import "github.com/shopspring/decimal"

// summaryRow aggregates one symbol's signals for the day
type summaryRow struct {
	Symbol        string
	Buy           int
	Sell          int
	Hold          int
	Actionable    int
	ConfidenceSum decimal.Decimal
}

func (r *summaryRow) total() int {
	return r.Buy + r.Sell + r.Hold
}

// avgConfidence is 0 for an empty row
func (r *summaryRow) avgConfidence() decimal.Decimal {
	n := r.total()
	if n == 0 {
		return decimal.Zero
	}
	return r.ConfidenceSum.Div(decimal.NewFromInt(int64(n)))
}
