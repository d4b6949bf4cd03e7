// journal/csv.go
package journal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
)

// TimeLayout is the timestamp format of the trade log, shared with the
// dashboard's CSV reader.
const TimeLayout = "2006-01-02 15:04:05"

var tradeHeader = []string{"timestamp", "action", "price", "qty", "cash_available", "shares_held"}

// CSVJournal appends trades to a CSV log and overwrites a JSON status file
// each cycle. The trade log survives restarts: an existing file is appended
// to, a fresh one gets the header row.
type CSVJournal struct {
	trades     *csv.Writer
	tf         *os.File
	statusPath string
}

func NewCSV(tradesPath, statusPath string) (*CSVJournal, error) {
	tf, err := os.OpenFile(tradesPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	info, err := tf.Stat()
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	if info.Size() == 0 {
		if err := tw.Write(tradeHeader); err != nil {
			tf.Close()
			return nil, err
		}
		tw.Flush()
		if err := tw.Error(); err != nil {
			tf.Close()
			return nil, err
		}
	}

	return &CSVJournal{trades: tw, tf: tf, statusPath: statusPath}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.trades.Write([]string{
		t.Time.Format(TimeLayout),
		t.Action,
		t.Price.String(),
		t.Qty.String(),
		t.Cash.String(),
		t.Shares.String(),
	})
	j.trades.Flush()
	return j.trades.Error()
}

// statusFile mirrors what the dashboard reads; plain JSON numbers.
type statusFile struct {
	Equity     float64 `json:"equity"`
	Cash       float64 `json:"cash"`
	Invested   float64 `json:"invested"`
	Price      float64 `json:"price"`
	LastEquity float64 `json:"last_equity"`
}

func (j *CSVJournal) WriteStatus(s StatusSnapshot) error {
	data, err := json.MarshalIndent(statusFile{
		Equity:     s.Equity.InexactFloat64(),
		Cash:       s.Cash.InexactFloat64(),
		Invested:   s.Invested.InexactFloat64(),
		Price:      s.Price.InexactFloat64(),
		LastEquity: s.LastEquity.InexactFloat64(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return os.WriteFile(j.statusPath, append(data, '\n'), 0644)
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	return j.tf.Close()
}
