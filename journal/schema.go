package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	basis REAL NOT NULL,
	buy_price INTEGER NOT NULL,
	slippage_pct REAL NOT NULL,
	open_time DATETIME NOT NULL,
	sell_price INTEGER NOT NULL DEFAULT 0,
	close_time DATETIME,
	holding_days INTEGER NOT NULL DEFAULT 0,
	return_pct REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_code_status ON trades(code, status);
CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
`
