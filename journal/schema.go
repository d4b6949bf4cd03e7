// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	price TEXT NOT NULL,
	qty TEXT NOT NULL,
	cash TEXT NOT NULL,
	shares TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);

CREATE TABLE IF NOT EXISTS status (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	time DATETIME NOT NULL,
	equity TEXT NOT NULL,
	cash TEXT NOT NULL,
	invested TEXT NOT NULL,
	price TEXT NOT NULL,
	last_equity TEXT NOT NULL
);
`
