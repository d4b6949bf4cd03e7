package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebot/broker"
	"github.com/rustyeddy/tradebot/market"
)

const (
	// DefaultPollInterval is the pause between order status checks.
	DefaultPollInterval = 1 * time.Second
	// DefaultSettleDelay is the pause after a cancellation request before
	// the reported fill quantity is trusted. Cancellation propagates
	// asynchronously on the broker side; fills can still land inside
	// this window.
	DefaultSettleDelay = 2 * time.Second
)

// Executor owns the life of one order at a time: submit, poll to a terminal
// or partial outcome under a wait budget, cancel the residue.
type Executor struct {
	Broker       broker.Broker
	PollInterval time.Duration
	SettleDelay  time.Duration
}

// NewExecutor creates an Executor with the default poll and settle timing.
func NewExecutor(b broker.Broker) *Executor {
	return &Executor{
		Broker:       b,
		PollInterval: DefaultPollInterval,
		SettleDelay:  DefaultSettleDelay,
	}
}

// SubmitAndResolve places a GTC limit order and returns the quantity that
// actually executed. Zero always means "nothing happened": failed
// submission, rejection, or an unfilled timeout that was canceled cleanly.
//
// The order is polled once per PollInterval for up to maxWait. A filled
// status ends the wait immediately and is trusted for the full requested
// quantity. Canceled/rejected/expired end the wait immediately with
// whatever filled first. Any error while polling counts as "status
// unknown" and the wait continues; an unreadable status is never treated
// as a fill. After the budget is spent the order is canceled if it is not
// already terminal, and the fill figure is re-read after SettleDelay.
//
// The result is clamped to the requested quantity; worst-case blocking is
// maxWait + SettleDelay.
func (e *Executor) SubmitAndResolve(ctx context.Context, symbol string, side market.Side, qty, limitPrice decimal.Decimal, maxWait time.Duration) decimal.Decimal {
	ord, err := e.Broker.SubmitOrder(ctx, broker.OrderRequest{
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		LimitPrice: limitPrice,
	})
	if err != nil {
		fmt.Printf("[order] submit failed: %v\n", err)
		return decimal.Zero
	}
	fmt.Printf("[order] %s %s %s @ %s (id %s)\n", side, qty, symbol, limitPrice, ord.ID)

	polls := int(maxWait / e.PollInterval)
	if polls < 1 {
		polls = 1
	}

	for i := 0; i < polls; i++ {
		e.sleep(ctx, e.PollInterval)
		if ctx.Err() != nil {
			// Shutdown mid-wait. Stop polling and fall through to the
			// cancel path so no live order is left behind.
			fmt.Printf("[order] wait interrupted: %v\n", ctx.Err())
			break
		}

		cur, err := e.Broker.GetOrder(ctx, ord.ID)
		if err != nil {
			// Status unknown. Still pending as far as we know.
			continue
		}
		if cur.Status == broker.StatusFilled {
			fmt.Printf("[order] filled in %ds\n", i+1)
			return qty
		}
		if cur.Status.Terminal() {
			fmt.Printf("[order] %s, stopping wait\n", cur.Status)
			break
		}
	}

	// Timed out or died broker-side. Find out what filled, kill the rest.
	filled := decimal.Zero
	status := broker.StatusUnknown
	if cur, err := e.Broker.GetOrder(ctx, ord.ID); err == nil {
		filled = cur.FilledQty
		status = cur.Status
	}

	if !status.Terminal() {
		if err := e.Broker.CancelOrder(ctx, ord.ID); err != nil {
			fmt.Printf("[order] cancel %s: %v\n", ord.ID, err)
		}
		e.sleep(ctx, e.SettleDelay)
		if cur, err := e.Broker.GetOrder(ctx, ord.ID); err == nil {
			filled = cur.FilledQty
		}
	}

	if filled.GreaterThan(qty) {
		filled = qty
	}
	if filled.IsPositive() {
		fmt.Printf("[order] partially filled: %s / %s\n", filled, qty)
		return filled
	}
	fmt.Printf("[order] nothing executed\n")
	return decimal.Zero
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
