package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradechain/assemble"
	"github.com/rustyeddy/tradechain/chain"
	"github.com/rustyeddy/tradechain/engine"
	"github.com/rustyeddy/tradechain/pkg/id"
	"github.com/rustyeddy/tradechain/txn"
)

// SQLiteStore is the Store implementation backed by a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTransactions appends transactions to the log, skipping ids already
// present, and returns how many were newly inserted. Re-importing the same
// file is a no-op.
func (s *SQLiteStore) SaveTransactions(txs []txn.Transaction) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO transactions
		(id, account, symbol, underlying, instrument, option_type, strike,
		 expiration, quantity, price, action, description, sub_type, order_id, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range txs {
		res, err := stmt.Exec(
			t.ID, t.Account, t.Symbol, t.Underlying, string(t.Instrument),
			string(t.OptionType), t.Strike, expirationText(t.Expiration),
			t.Quantity, t.Price, t.Action, t.Description, t.SubType,
			t.OrderID, t.ExecutedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// LoadTransactions returns an account's full transaction log in execution
// order, ties broken by id so replays are stable.
func (s *SQLiteStore) LoadTransactions(account string) ([]txn.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, account, symbol, underlying, instrument, option_type, strike,
		       expiration, quantity, price, action, description, sub_type, order_id, executed_at
		FROM transactions
		WHERE account = ?
		ORDER BY executed_at, id`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []txn.Transaction
	for rows.Next() {
		var t txn.Transaction
		var instrument, optionType, expiration string
		if err := rows.Scan(
			&t.ID, &t.Account, &t.Symbol, &t.Underlying, &instrument,
			&optionType, &t.Strike, &expiration, &t.Quantity, &t.Price,
			&t.Action, &t.Description, &t.SubType, &t.OrderID, &t.ExecutedAt,
		); err != nil {
			return nil, err
		}
		t.Instrument = txn.Instrument(instrument)
		t.OptionType = txn.OptionType(optionType)
		if t.Expiration, err = parseExpiration(expiration); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Accounts lists every account present in the transaction log.
func (s *SQLiteStore) Accounts() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT account FROM transactions ORDER BY account`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ReplaceResult commits a reconciliation run for one account: inside a single
// database transaction it deletes every derived row for the account, then
// inserts the new orders, positions, chains and memberships. Readers never
// observe a half-rebuilt account, and a failed rebuild leaves the previous
// state untouched.
func (s *SQLiteStore) ReplaceResult(account string, res *engine.Result) (*RebuildRun, error) {
	started := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := deleteDerived(tx, account); err != nil {
		return nil, err
	}

	orphan := make(map[string]bool, len(res.Orphans))
	for _, o := range res.Orphans {
		orphan[o.ID] = true
	}

	for _, o := range res.Orders {
		if err := insertOrder(tx, o, orphan[o.ID]); err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
	}

	for _, c := range res.Chains {
		if err := insertChain(tx, c); err != nil {
			return nil, fmt.Errorf("chain %s: %w", c.ID, err)
		}
	}

	run := &RebuildRun{
		RunID:        id.New(),
		Account:      account,
		Transactions: countTransactions(tx, account),
		Orders:       len(res.Orders),
		Chains:       len(res.Chains),
		Orphans:      len(res.Orphans),
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
	}
	if _, err := tx.Exec(`
		INSERT INTO rebuild_runs
		(run_id, account, transactions, orders, chains, orphans, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Account, run.Transactions, run.Orders, run.Chains,
		run.Orphans, run.StartedAt, run.FinishedAt,
	); err != nil {
		return nil, fmt.Errorf("record rebuild run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

func deleteDerived(tx *sql.Tx, account string) error {
	stmts := []string{
		`DELETE FROM chain_members WHERE chain_id IN
			(SELECT chain_id FROM order_chains WHERE account = ?)`,
		`DELETE FROM order_chains WHERE account = ?`,
		`DELETE FROM positions WHERE account = ?`,
		`DELETE FROM orders WHERE account = ?`,
	}
	for _, q := range stmts {
		if _, err := tx.Exec(q, account); err != nil {
			return fmt.Errorf("clear derived state: %w", err)
		}
	}
	return nil
}

func insertOrder(tx *sql.Tx, o *assemble.Order, orphan bool) error {
	_, err := tx.Exec(`
		INSERT INTO orders
		(order_id, account, underlying, order_type, order_date, total_quantity,
		 total_pnl, has_assignment, has_expiration, has_exercise, has_cash_settlement, orphan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Account, o.Underlying, string(o.Type), o.Date,
		o.TotalQuantity, o.TotalPnL,
		boolInt(o.HasAssignment), boolInt(o.HasExpiration),
		boolInt(o.HasExercise), boolInt(o.HasCashSettlement), boolInt(orphan),
	)
	if err != nil {
		return err
	}

	for _, p := range o.Positions {
		_, err := tx.Exec(`
			INSERT INTO positions
			(order_id, account, symbol, underlying, instrument, option_type,
			 strike, expiration, position_key, quantity,
			 opening_action, opening_price, opening_amount,
			 closing_action, closing_price, closing_amount, status, pnl)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.OrderID, p.Account, p.Symbol, p.Underlying, string(p.Instrument),
			string(p.OptionType), p.Strike, expirationText(p.Expiration),
			p.Key.String(), p.Quantity,
			p.OpeningAction.String(), p.OpeningPrice, p.OpeningAmount,
			p.ClosingAction.String(), p.ClosingPrice, p.ClosingAmount,
			string(p.Status), p.PnL,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func insertChain(tx *sql.Tx, c *chain.Chain) error {
	_, err := tx.Exec(`
		INSERT INTO order_chains
		(chain_id, account, underlying, opening_order_id, status,
		 realized_pnl, unrealized_pnl, total_pnl, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Account, c.Underlying, c.OpeningOrderID, string(c.Status),
		c.RealizedPnL, c.UnrealizedPnL, c.TotalPnL, c.Orders[0].Date,
	)
	if err != nil {
		return err
	}

	for i, o := range c.Orders {
		if _, err := tx.Exec(`
			INSERT INTO chain_members (chain_id, order_id, sequence_number)
			VALUES (?, ?, ?)`, c.ID, o.ID, i+1); err != nil {
			return err
		}
	}
	return nil
}

func countTransactions(tx *sql.Tx, account string) int {
	var n int
	_ = tx.QueryRow(`SELECT COUNT(*) FROM transactions WHERE account = ?`, account).Scan(&n)
	return n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func expirationText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func parseExpiration(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse expiration %q: %w", s, err)
	}
	return t, nil
}
