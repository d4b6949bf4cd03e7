// journal/journal.go
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one executed trade with the account state it produced.
// Cash and Shares are the post-trade projection, not a broker read.
type TradeRecord struct {
	TradeID string
	Time    time.Time
	Action  string // "BUY" or "SELL"
	Price   decimal.Decimal
	Qty     decimal.Decimal
	Cash    decimal.Decimal
	Shares  decimal.Decimal
}

// StatusSnapshot is the dashboard's view of the account, overwritten each
// cycle. LastEquity is the broker's previous-period equity; it lags the
// rest of the snapshot and is display-only.
type StatusSnapshot struct {
	Time       time.Time
	Equity     decimal.Decimal
	Cash       decimal.Decimal
	Invested   decimal.Decimal
	Price      decimal.Decimal
	LastEquity decimal.Decimal
}

type Journal interface {
	RecordTrade(TradeRecord) error
	WriteStatus(StatusSnapshot) error
	Close() error
}
