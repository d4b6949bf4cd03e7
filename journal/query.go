package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GetTrade returns a single trade record by ID.
func (j *SQLiteJournal) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, time, action, price, qty, cash, shares
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns trades executed within [start, end), oldest
// first.
func (j *SQLiteJournal) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, action, price, qty, cash, shares
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestStatus returns the last written status snapshot.
func (j *SQLiteJournal) LatestStatus() (StatusSnapshot, error) {
	row := j.db.QueryRow(`
		SELECT time, equity, cash, invested, price, last_equity
		FROM status WHERE id = 1`)

	var s StatusSnapshot
	var equity, cash, invested, price, lastEquity string
	if err := row.Scan(&s.Time, &equity, &cash, &invested, &price, &lastEquity); err != nil {
		if err == sql.ErrNoRows {
			return StatusSnapshot{}, fmt.Errorf("no status recorded yet")
		}
		return StatusSnapshot{}, err
	}

	for _, p := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{equity, &s.Equity},
		{cash, &s.Cash},
		{invested, &s.Invested},
		{price, &s.Price},
		{lastEquity, &s.LastEquity},
	} {
		if err := scanDecimal(p.src, p.dst); err != nil {
			return StatusSnapshot{}, err
		}
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (TradeRecord, error) {
	var rec TradeRecord
	var price, qty, cash, shares string

	if err := row.Scan(&rec.TradeID, &rec.Time, &rec.Action, &price, &qty, &cash, &shares); err != nil {
		return TradeRecord{}, err
	}

	for _, p := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{price, &rec.Price},
		{qty, &rec.Qty},
		{cash, &rec.Cash},
		{shares, &rec.Shares},
	} {
		if err := scanDecimal(p.src, p.dst); err != nil {
			return TradeRecord{}, err
		}
	}
	return rec, nil
}
