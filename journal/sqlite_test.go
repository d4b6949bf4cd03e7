package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteJournal_RecordAndGetTrade(t *testing.T) {
	j := newTestSQLite(t)

	rec := TradeRecord{
		TradeID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Time:    time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
		Action:  "BUY",
		Price:   dec("0.1235"),
		Qty:     dec("100"),
		Cash:    dec("987.65"),
		Shares:  dec("100"),
	}
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade(rec.TradeID)
	require.NoError(t, err)
	assert.Equal(t, rec.TradeID, got.TradeID)
	assert.Equal(t, "BUY", got.Action)
	assert.True(t, got.Price.Equal(rec.Price))
	assert.True(t, got.Qty.Equal(rec.Qty))
	assert.True(t, got.Cash.Equal(rec.Cash))
	assert.True(t, got.Shares.Equal(rec.Shares))
}

func TestSQLiteJournal_GetTrade_NotFound(t *testing.T) {
	j := newTestSQLite(t)

	_, err := j.GetTrade("nope")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteJournal_ListTradesBetween(t *testing.T) {
	j := newTestSQLite(t)

	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, j.RecordTrade(TradeRecord{
			TradeID: id,
			Time:    base.Add(time.Duration(i) * 24 * time.Hour),
			Action:  "BUY",
			Price:   dec("0.12"), Qty: dec("1"), Cash: dec("10"), Shares: dec("1"),
		}))
	}

	// Half-open range: [day1, day3) excludes t3.
	recs, err := j.ListTradesBetween(base, base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "t1", recs[0].TradeID)
	assert.Equal(t, "t2", recs[1].TradeID)
}

func TestSQLiteJournal_StatusUpsert(t *testing.T) {
	j := newTestSQLite(t)

	snap := StatusSnapshot{
		Time:   time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
		Equity: dec("1000"), Cash: dec("900"), Invested: dec("100"),
		Price: dec("0.25"), LastEquity: dec("995"),
	}
	require.NoError(t, j.WriteStatus(snap))

	snap.Equity = dec("1010")
	snap.Time = snap.Time.Add(5 * time.Minute)
	require.NoError(t, j.WriteStatus(snap))

	got, err := j.LatestStatus()
	require.NoError(t, err)
	assert.True(t, got.Equity.Equal(dec("1010")), "status row must be overwritten, not appended")
	assert.True(t, got.LastEquity.Equal(dec("995")))
}
