// Package bot drives the trading cycle: fetch state, inform the Strategy
// Engine, wait for its decision, execute, reconcile, confirm, sleep.
// Cycles run strictly one at a time.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebot/broker"
	"github.com/rustyeddy/tradebot/engine"
	"github.com/rustyeddy/tradebot/journal"
	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/pkg/id"
	"github.com/rustyeddy/tradebot/strategy"
)

// Config is the runtime timing and instrument selection for the cycle.
type Config struct {
	Symbol  string // data/order symbol, e.g. "DOGE/USD"
	AssetID string // position asset id, e.g. "DOGEUSD"

	Sleep            time.Duration // pause after a healthy cycle
	Retry            time.Duration // pause after a recoverable failure
	DecisionDeadline time.Duration // wait budget for the engine's decision
	MaxOrderWait     time.Duration // wait budget for order resolution
}

// Bot owns one trading loop against one instrument.
type Bot struct {
	Executor *engine.Executor

	cfg     Config
	broker  broker.Broker
	channel *strategy.Channel
	journal journal.Journal
	now     func() time.Time
}

func New(cfg Config, b broker.Broker, ch *strategy.Channel, j journal.Journal) *Bot {
	return &Bot{
		Executor: engine.NewExecutor(b),
		cfg:      cfg,
		broker:   b,
		channel:  ch,
		journal:  j,
		now:      time.Now,
	}
}

// Run executes cycles until ctx is canceled. The next cycle starts only
// after the previous one's sleep elapses; cycles never overlap.
func (b *Bot) Run(ctx context.Context) error {
	b.SyncPosition(ctx)

	for {
		d := b.Cycle(ctx)

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// SyncPosition pushes a synthetic BOUGHT for any position already open at
// the broker, so the Strategy Engine's position model starts consistent
// with broker reality. One-shot, best effort, before the first cycle.
func (b *Bot) SyncPosition(ctx context.Context) {
	pos, err := b.broker.GetPosition(ctx, b.cfg.AssetID)
	if err != nil || !pos.Qty.IsPositive() {
		return
	}
	fmt.Printf("[init] open position: %s @ %s\n", pos.Qty, pos.AvgEntryPrice)
	if err := b.channel.Send(strategy.Bought(pos.Qty, pos.AvgEntryPrice)); err != nil {
		fmt.Printf("[init] position sync: %v\n", err)
	}
}

// Cycle runs one pass of the state machine and returns the pause before
// the next one. The account snapshot is captured once up front and all
// post-trade arithmetic projects forward from it; nothing is re-fetched
// mid-cycle.
func (b *Bot) Cycle(ctx context.Context) time.Duration {
	price := b.midPrice(ctx)
	if price.IsZero() {
		// No usable quote. Price absence is not reported upstream.
		return b.cfg.Retry
	}

	state := b.accountState(ctx)
	fmt.Printf("[STATUS] %s | price %s | cash %s | shares %s\n",
		b.now().Format(journal.TimeLayout), price, state.Cash, state.Shares)

	if err := b.channel.SendInfo(state.Cash, price, state.Shares); err != nil {
		fmt.Printf("[cycle] send info: %v\n", err)
		return b.cfg.Retry
	}

	instr, ok := b.channel.AwaitInstruction(b.cfg.DecisionDeadline)
	if !ok {
		return b.cfg.Sleep
	}

	// Last-period equity is fetched only now and threads only into the
	// status snapshot. The dashboard shows it one beat behind; trading
	// arithmetic never touches it.
	lastEquity := b.lastEquity(ctx)

	executed := b.Executor.SubmitAndResolve(ctx, b.cfg.Symbol, instr.Side, instr.Qty, price, b.cfg.MaxOrderWait)
	if executed.IsZero() {
		fmt.Printf("[ROLLBACK] nothing executed\n")
		if err := b.channel.Send(strategy.Rollback); err != nil {
			fmt.Printf("[cycle] send rollback: %v\n", err)
		}
		return b.cfg.Retry
	}

	next := engine.Project(state, instr.Side, executed, price)

	rec := journal.TradeRecord{
		TradeID: id.New(),
		Time:    b.now(),
		Action:  instr.Side.String(),
		Price:   price,
		Qty:     executed,
		Cash:    next.Cash,
		Shares:  next.Shares,
	}
	if err := b.journal.RecordTrade(rec); err != nil {
		fmt.Printf("[journal] record trade: %v\n", err)
	}
	if err := b.journal.WriteStatus(journal.StatusSnapshot{
		Time:       b.now(),
		Equity:     next.Equity,
		Cash:       next.Cash,
		Invested:   next.Shares.Mul(price),
		Price:      price,
		LastEquity: lastEquity,
	}); err != nil {
		fmt.Printf("[journal] write status: %v\n", err)
	}

	confirm := strategy.Bought(executed, price)
	if instr.Side == market.Sell {
		confirm = strategy.Sold(executed, price)
	}
	if err := b.channel.Send(confirm); err != nil {
		fmt.Printf("[cycle] send confirm: %v\n", err)
	}

	return b.cfg.Sleep
}

// midPrice returns the current mid quote, or zero when the quote is
// unavailable for any reason. A zero price skips the cycle; it never
// crashes the loop.
func (b *Bot) midPrice(ctx context.Context) decimal.Decimal {
	q, err := b.broker.GetQuote(ctx, b.cfg.Symbol)
	if err != nil {
		fmt.Printf("[quote] %v\n", err)
		return decimal.Zero
	}
	return q.Mid()
}

// accountState snapshots cash and position, defaulting each to zero on
// failure.
func (b *Bot) accountState(ctx context.Context) engine.AccountState {
	var state engine.AccountState

	if acct, err := b.broker.GetAccount(ctx); err == nil {
		state.Cash = acct.Cash
	} else {
		fmt.Printf("[account] %v\n", err)
	}
	if pos, err := b.broker.GetPosition(ctx, b.cfg.AssetID); err == nil {
		state.Shares = pos.Qty
	} else {
		fmt.Printf("[position] %v\n", err)
	}

	return state
}

func (b *Bot) lastEquity(ctx context.Context) decimal.Decimal {
	acct, err := b.broker.GetAccount(ctx)
	if err != nil {
		return decimal.Zero
	}
	return acct.LastEquity
}
