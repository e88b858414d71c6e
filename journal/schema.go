// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	underlying TEXT NOT NULL,
	instrument TEXT NOT NULL,
	option_type TEXT NOT NULL DEFAULT '',
	strike REAL NOT NULL DEFAULT 0,
	expiration TEXT NOT NULL DEFAULT '',
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	action TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	sub_type TEXT NOT NULL DEFAULT '',
	order_id TEXT NOT NULL DEFAULT '',
	executed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_time
	ON transactions(account, executed_at);

CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	underlying TEXT NOT NULL,
	order_type TEXT NOT NULL,
	order_date DATETIME NOT NULL,
	total_quantity REAL NOT NULL,
	total_pnl REAL NOT NULL,
	has_assignment INTEGER NOT NULL DEFAULT 0,
	has_expiration INTEGER NOT NULL DEFAULT 0,
	has_exercise INTEGER NOT NULL DEFAULT 0,
	has_cash_settlement INTEGER NOT NULL DEFAULT 0,
	orphan INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account);

CREATE TABLE IF NOT EXISTS positions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id TEXT NOT NULL,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	underlying TEXT NOT NULL,
	instrument TEXT NOT NULL,
	option_type TEXT NOT NULL DEFAULT '',
	strike REAL NOT NULL DEFAULT 0,
	expiration TEXT NOT NULL DEFAULT '',
	position_key TEXT NOT NULL,
	quantity REAL NOT NULL,
	opening_action TEXT NOT NULL DEFAULT 'UNKNOWN',
	opening_price REAL NOT NULL DEFAULT 0,
	opening_amount REAL NOT NULL DEFAULT 0,
	closing_action TEXT NOT NULL DEFAULT 'UNKNOWN',
	closing_price REAL NOT NULL DEFAULT 0,
	closing_amount REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_order ON positions(order_id);
CREATE INDEX IF NOT EXISTS idx_positions_account_key
	ON positions(account, position_key);

CREATE TABLE IF NOT EXISTS order_chains (
	chain_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	underlying TEXT NOT NULL,
	opening_order_id TEXT NOT NULL,
	status TEXT NOT NULL,
	realized_pnl REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	total_pnl REAL NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chains_account ON order_chains(account);

CREATE TABLE IF NOT EXISTS chain_members (
	chain_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	sequence_number INTEGER NOT NULL,
	PRIMARY KEY (chain_id, order_id)
);

CREATE TABLE IF NOT EXISTS rebuild_runs (
	run_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	transactions INTEGER NOT NULL,
	orders INTEGER NOT NULL,
	chains INTEGER NOT NULL,
	orphans INTEGER NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);
`
