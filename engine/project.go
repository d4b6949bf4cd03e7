package engine

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebot/market"
)

// AccountState is the pre-trade snapshot one cycle does its arithmetic
// against. It is captured once per cycle and never re-fetched mid-cycle:
// the bot reasons about its own write-forward projection, not a racing
// broker read.
type AccountState struct {
	Cash   decimal.Decimal
	Shares decimal.Decimal
}

// ProjectedState is the post-trade account state computed locally from the
// executed quantity and the trade price, without a broker round-trip.
type ProjectedState struct {
	Cash   decimal.Decimal
	Shares decimal.Decimal
	Equity decimal.Decimal
}

// Project computes the account state after an executed trade. Pure; equity
// is always recomputed from the new cash and share quantities at the trade
// price. Callers must not invoke it with a zero executed quantity; a zero
// execution is a rollback, not a trade.
func Project(prev AccountState, side market.Side, executedQty, tradePrice decimal.Decimal) ProjectedState {
	notional := executedQty.Mul(tradePrice)

	var cash, shares decimal.Decimal
	if side == market.Buy {
		cash = prev.Cash.Sub(notional)
		shares = prev.Shares.Add(executedQty)
	} else {
		cash = prev.Cash.Add(notional)
		shares = prev.Shares.Sub(executedQty)
	}

	return ProjectedState{
		Cash:   cash,
		Shares: shares,
		Equity: cash.Add(shares.Mul(tradePrice)),
	}
}
