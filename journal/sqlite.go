package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLiteJournal mirrors the CSV journal into SQLite so the CLI can query
// trade history. Decimals are stored as TEXT to keep them exact.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, time, action, price, qty, cash, shares)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Time, t.Action,
		t.Price.String(), t.Qty.String(), t.Cash.String(), t.Shares.String(),
	)
	return err
}

// WriteStatus upserts the single status row; the table only ever holds the
// latest snapshot, like the status file it mirrors.
func (j *SQLiteJournal) WriteStatus(s StatusSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO status (id, time, equity, cash, invested, price, last_equity)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			time = excluded.time,
			equity = excluded.equity,
			cash = excluded.cash,
			invested = excluded.invested,
			price = excluded.price,
			last_equity = excluded.last_equity`,
		s.Time, s.Equity.String(), s.Cash.String(),
		s.Invested.String(), s.Price.String(), s.LastEquity.String(),
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func scanDecimal(s string, d *decimal.Decimal) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
