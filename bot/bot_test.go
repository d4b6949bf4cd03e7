package bot

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebot/broker"
	"github.com/rustyeddy/tradebot/journal"
	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/strategy"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeBroker struct {
	quote    market.Quote
	quoteErr error

	account    broker.Account
	accountErr error

	position    broker.Position
	positionErr error

	order     broker.Order
	submitErr error

	submitted []broker.OrderRequest
	cancels   int
}

func (f *fakeBroker) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeBroker) GetAccount(ctx context.Context) (broker.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeBroker) GetPosition(ctx context.Context, assetID string) (broker.Position, error) {
	return f.position, f.positionErr
}

func (f *fakeBroker) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return broker.Order{}, f.submitErr
	}
	return f.order, nil
}

func (f *fakeBroker) GetOrder(ctx context.Context, orderID string) (broker.Order, error) {
	return f.order, nil
}

func (f *fakeBroker) CancelOrder(ctx context.Context, orderID string) error {
	f.cancels++
	return nil
}

type memJournal struct {
	trades   []journal.TradeRecord
	statuses []journal.StatusSnapshot
}

func (m *memJournal) RecordTrade(t journal.TradeRecord) error {
	m.trades = append(m.trades, t)
	return nil
}

func (m *memJournal) WriteStatus(s journal.StatusSnapshot) error {
	m.statuses = append(m.statuses, s)
	return nil
}

func (m *memJournal) Close() error { return nil }

// testPeer scripts the Strategy Engine's side of the channel. For every
// line whose prefix matches a key in replies, it answers with the mapped
// line; everything the bot sends is collected on lines.
type testPeer struct {
	lines chan string
}

func newTestBot(t *testing.T, fake *fakeBroker, replies map[string]string) (*Bot, *memJournal, *testPeer) {
	t.Helper()

	botR, peerW := io.Pipe()
	peerR, botW := io.Pipe()

	peer := &testPeer{lines: make(chan string, 16)}
	go func() {
		sc := bufio.NewScanner(peerR)
		for sc.Scan() {
			line := sc.Text()
			peer.lines <- line
			for prefix, reply := range replies {
				if strings.HasPrefix(line, prefix) {
					io.WriteString(peerW, reply+"\n")
				}
			}
		}
	}()
	t.Cleanup(func() {
		peerW.Close()
		botW.Close()
	})

	j := &memJournal{}
	b := New(Config{
		Symbol:           "DOGE/USD",
		AssetID:          "DOGEUSD",
		Sleep:            300 * time.Millisecond,
		Retry:            5 * time.Millisecond,
		DecisionDeadline: 100 * time.Millisecond,
		MaxOrderWait:     10 * time.Millisecond,
	}, fake, strategy.NewChannel(botR, botW), j)
	b.Executor.PollInterval = time.Millisecond
	b.Executor.SettleDelay = time.Millisecond

	return b, j, peer
}

func (p *testPeer) recv(t *testing.T) string {
	t.Helper()
	select {
	case line := <-p.lines:
		return line
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bot message")
		return ""
	}
}

func (p *testPeer) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case line := <-p.lines:
		t.Fatalf("unexpected message: %q", line)
	case <-time.After(50 * time.Millisecond):
	}
}

func healthyBroker() *fakeBroker {
	return &fakeBroker{
		quote:   market.Quote{Bid: dec("0.1234"), Ask: dec("0.1236")},
		account: broker.Account{Cash: dec("1000"), LastEquity: dec("995")},
		order:   broker.Order{ID: "ord-1", Status: broker.StatusFilled},
	}
}

func TestCycle_NoQuoteSkipsEverything(t *testing.T) {
	// A dead quote feed degrades to a skipped cycle with a fast retry.
	// Nothing goes upstream: price absence is not reported.
	fake := healthyBroker()
	fake.quote = market.Quote{Bid: decimal.Zero, Ask: decimal.Zero}

	b, j, peer := newTestBot(t, fake, nil)

	d := b.Cycle(context.Background())

	assert.Equal(t, b.cfg.Retry, d)
	peer.assertSilent(t)
	assert.Empty(t, fake.submitted)
	assert.Empty(t, j.trades)
}

func TestCycle_QuoteErrorSkipsEverything(t *testing.T) {
	fake := healthyBroker()
	fake.quoteErr = errors.New("data api down")

	b, _, peer := newTestBot(t, fake, nil)

	d := b.Cycle(context.Background())

	assert.Equal(t, b.cfg.Retry, d)
	peer.assertSilent(t)
	assert.Empty(t, fake.submitted)
}

func TestCycle_NoDecision(t *testing.T) {
	// The engine stays silent past the deadline: normal sleep, no orders,
	// nothing on the wire beyond the INFO snapshot.
	fake := healthyBroker()
	b, j, peer := newTestBot(t, fake, nil)

	d := b.Cycle(context.Background())

	assert.Equal(t, b.cfg.Sleep, d)
	assert.Equal(t, "INFO 1000;0.1235;0", peer.recv(t))
	peer.assertSilent(t)
	assert.Empty(t, fake.submitted)
	assert.Empty(t, j.trades)
}

func TestCycle_BuyExecutesAndConfirms(t *testing.T) {
	fake := healthyBroker()
	b, j, peer := newTestBot(t, fake, map[string]string{"INFO": "BUY 2"})

	d := b.Cycle(context.Background())

	assert.Equal(t, b.cfg.Sleep, d)
	assert.Equal(t, "INFO 1000;0.1235;0", peer.recv(t))
	assert.Equal(t, "BOUGHT 2 0.1235", peer.recv(t))

	// Order went out at the mid price.
	require.Len(t, fake.submitted, 1)
	assert.Equal(t, "DOGE/USD", fake.submitted[0].Symbol)
	assert.Equal(t, market.Buy, fake.submitted[0].Side)
	assert.Equal(t, "2", fake.submitted[0].Qty.String())
	assert.Equal(t, "0.1235", fake.submitted[0].LimitPrice.String())

	// Projected state, not a broker re-read.
	require.Len(t, j.trades, 1)
	rec := j.trades[0]
	assert.Equal(t, "BUY", rec.Action)
	assert.Equal(t, "2", rec.Qty.String())
	assert.Equal(t, "999.753", rec.Cash.String())
	assert.Equal(t, "2", rec.Shares.String())
	assert.NotEmpty(t, rec.TradeID)

	require.Len(t, j.statuses, 1)
	snap := j.statuses[0]
	assert.True(t, snap.Equity.Equal(dec("1000")))
	assert.True(t, snap.Invested.Equal(dec("0.247")))
	assert.True(t, snap.LastEquity.Equal(dec("995")), "last equity is display-only passthrough")
}

func TestCycle_SellExecutesAndConfirms(t *testing.T) {
	fake := healthyBroker()
	fake.position = broker.Position{Qty: dec("10"), AvgEntryPrice: dec("0.10")}
	b, j, peer := newTestBot(t, fake, map[string]string{"INFO": "SELL 4"})

	d := b.Cycle(context.Background())

	assert.Equal(t, b.cfg.Sleep, d)
	assert.Equal(t, "INFO 1000;0.1235;10", peer.recv(t))
	assert.Equal(t, "SOLD 4 0.1235", peer.recv(t))

	require.Len(t, j.trades, 1)
	assert.Equal(t, "SELL", j.trades[0].Action)
	assert.Equal(t, "1000.494", j.trades[0].Cash.String())
	assert.Equal(t, "6", j.trades[0].Shares.String())
}

func TestCycle_FailedExecutionRollsBack(t *testing.T) {
	// Zero executed means the engine's state must not move: ROLLBACK goes
	// out, nothing is journaled, and the cycle takes the fast retry path.
	fake := healthyBroker()
	fake.submitErr = errors.New("insufficient balance")
	b, j, peer := newTestBot(t, fake, map[string]string{"INFO": "BUY 2"})

	d := b.Cycle(context.Background())

	assert.Equal(t, b.cfg.Retry, d)
	assert.Equal(t, "INFO 1000;0.1235;0", peer.recv(t))
	assert.Equal(t, "ROLLBACK", peer.recv(t))
	assert.Empty(t, j.trades)
	assert.Empty(t, j.statuses)
}

func TestCycle_MalformedDecisionIgnored(t *testing.T) {
	fake := healthyBroker()
	b, j, peer := newTestBot(t, fake, map[string]string{"INFO": "PANIC now"})

	d := b.Cycle(context.Background())

	assert.Equal(t, b.cfg.Sleep, d)
	assert.Equal(t, "INFO 1000;0.1235;0", peer.recv(t))
	peer.assertSilent(t)
	assert.Empty(t, fake.submitted)
	assert.Empty(t, j.trades)
}

func TestSyncPosition(t *testing.T) {
	t.Run("open position is announced", func(t *testing.T) {
		fake := healthyBroker()
		fake.position = broker.Position{Qty: dec("5"), AvgEntryPrice: dec("0.2")}
		b, _, peer := newTestBot(t, fake, nil)

		b.SyncPosition(context.Background())

		assert.Equal(t, "BOUGHT 5 0.2", peer.recv(t))
	})

	t.Run("flat account stays quiet", func(t *testing.T) {
		fake := healthyBroker()
		b, _, peer := newTestBot(t, fake, nil)

		b.SyncPosition(context.Background())

		peer.assertSilent(t)
	})

	t.Run("broker failure stays quiet", func(t *testing.T) {
		fake := healthyBroker()
		fake.positionErr = errors.New("api down")
		b, _, peer := newTestBot(t, fake, nil)

		b.SyncPosition(context.Background())

		peer.assertSilent(t)
	})
}
