package market

import "github.com/shopspring/decimal"

var two = decimal.NewFromInt(2)

// Quote is a best bid/ask pair for an instrument.
type Quote struct {
	Instrument string
	Bid        decimal.Decimal
	Ask        decimal.Decimal
}

// Mid returns the midpoint of bid and ask. A zero mid means the quote is
// unusable; callers must never trade against it.
func (q Quote) Mid() decimal.Decimal {
	return q.Bid.Add(q.Ask).Div(two)
}
