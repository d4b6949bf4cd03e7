package broker

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebot/market"
)

// Broker is the surface the bot needs from a brokerage: quotes, account
// state, and the order lifecycle for a single instrument.
type Broker interface {
	GetQuote(ctx context.Context, symbol string) (market.Quote, error)
	GetAccount(ctx context.Context) (Account, error)
	// GetPosition returns a zero Position (not an error) when the broker
	// reports no open position for the asset.
	GetPosition(ctx context.Context, assetID string) (Position, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// Account holds the cash balance and the previous period's equity.
type Account struct {
	Cash       decimal.Decimal
	LastEquity decimal.Decimal
}

// Position is an open holding in one asset.
type Position struct {
	Qty           decimal.Decimal
	AvgEntryPrice decimal.Decimal
}

// OrderRequest describes a limit order to submit. All orders are
// good-till-canceled; the resolver cancels any residue itself.
type OrderRequest struct {
	Symbol     string
	Side       market.Side
	Qty        decimal.Decimal
	LimitPrice decimal.Decimal
}

// Order is the broker's view of a submitted order.
type Order struct {
	ID        string
	Status    OrderStatus
	FilledQty decimal.Decimal
}
