package journal

import (
	"database/sql"
	"fmt"

	"github.com/rustyeddy/tradechain/assemble"
	"github.com/rustyeddy/tradechain/chain"
	"github.com/rustyeddy/tradechain/txn"
)

// GetOrder loads one order with its positions.
func (s *SQLiteStore) GetOrder(orderID string) (*assemble.Order, error) {
	row := s.db.QueryRow(`
		SELECT order_id, account, underlying, order_type, order_date,
		       total_quantity, total_pnl, has_assignment, has_expiration,
		       has_exercise, has_cash_settlement
		FROM orders WHERE order_id = ?`, orderID)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: not found", orderID)
	}
	if err != nil {
		return nil, err
	}

	if o.Positions, err = s.orderPositions(o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrphanOrders returns an account's orders that no chain claimed.
func (s *SQLiteStore) ListOrphanOrders(account string) ([]*assemble.Order, error) {
	rows, err := s.db.Query(`
		SELECT order_id, account, underlying, order_type, order_date,
		       total_quantity, total_pnl, has_assignment, has_expiration,
		       has_exercise, has_cash_settlement
		FROM orders
		WHERE account = ? AND orphan = 1
		ORDER BY order_date, order_id`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*assemble.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		if o.Positions, err = s.orderPositions(o.ID); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetChain loads one chain with its member orders in sequence.
func (s *SQLiteStore) GetChain(chainID string) (*chain.Chain, error) {
	c := &chain.Chain{}
	var status string
	err := s.db.QueryRow(`
		SELECT chain_id, account, underlying, opening_order_id, status,
		       realized_pnl, unrealized_pnl, total_pnl
		FROM order_chains WHERE chain_id = ?`, chainID).Scan(
		&c.ID, &c.Account, &c.Underlying, &c.OpeningOrderID, &status,
		&c.RealizedPnL, &c.UnrealizedPnL, &c.TotalPnL)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chain %s: not found", chainID)
	}
	if err != nil {
		return nil, err
	}
	c.Status = chain.Status(status)

	if c.Orders, err = s.chainOrders(c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// ListChains returns an account's chains, oldest opening first.
func (s *SQLiteStore) ListChains(account string) ([]*chain.Chain, error) {
	rows, err := s.db.Query(`
		SELECT chain_id, account, underlying, opening_order_id, status,
		       realized_pnl, unrealized_pnl, total_pnl
		FROM order_chains
		WHERE account = ?
		ORDER BY created_at, chain_id`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chains []*chain.Chain
	for rows.Next() {
		c := &chain.Chain{}
		var status string
		if err := rows.Scan(
			&c.ID, &c.Account, &c.Underlying, &c.OpeningOrderID, &status,
			&c.RealizedPnL, &c.UnrealizedPnL, &c.TotalPnL); err != nil {
			return nil, err
		}
		c.Status = chain.Status(status)
		if c.Orders, err = s.chainOrders(c.ID); err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}
	return chains, rows.Err()
}

// ListPositions returns every position for an account across all orders.
func (s *SQLiteStore) ListPositions(account string) ([]*assemble.Position, error) {
	rows, err := s.db.Query(positionColumns+`
		FROM positions
		WHERE account = ?
		ORDER BY order_id, id`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPositions(rows)
}

func (s *SQLiteStore) orderPositions(orderID string) ([]*assemble.Position, error) {
	rows, err := s.db.Query(positionColumns+`
		FROM positions
		WHERE order_id = ?
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPositions(rows)
}

func (s *SQLiteStore) chainOrders(chainID string) ([]*assemble.Order, error) {
	rows, err := s.db.Query(`
		SELECT o.order_id, o.account, o.underlying, o.order_type, o.order_date,
		       o.total_quantity, o.total_pnl, o.has_assignment, o.has_expiration,
		       o.has_exercise, o.has_cash_settlement
		FROM chain_members m
		JOIN orders o ON o.order_id = m.order_id
		WHERE m.chain_id = ?
		ORDER BY m.sequence_number`, chainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*assemble.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		if o.Positions, err = s.orderPositions(o.ID); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const positionColumns = `
	SELECT order_id, account, symbol, underlying, instrument, option_type,
	       strike, expiration, quantity,
	       opening_action, opening_price, opening_amount,
	       closing_action, closing_price, closing_amount, status, pnl`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (*assemble.Order, error) {
	o := &assemble.Order{}
	var typ string
	var hasAssign, hasExpire, hasExercise, hasSettle int
	err := r.Scan(
		&o.ID, &o.Account, &o.Underlying, &typ, &o.Date,
		&o.TotalQuantity, &o.TotalPnL,
		&hasAssign, &hasExpire, &hasExercise, &hasSettle)
	if err != nil {
		return nil, err
	}
	o.Type = assemble.OrderType(typ)
	o.HasAssignment = hasAssign != 0
	o.HasExpiration = hasExpire != 0
	o.HasExercise = hasExercise != 0
	o.HasCashSettlement = hasSettle != 0
	return o, nil
}

func scanPositions(rows *sql.Rows) ([]*assemble.Position, error) {
	var positions []*assemble.Position
	for rows.Next() {
		p := &assemble.Position{}
		var instrument, optionType, expiration, opening, closing, status string
		if err := rows.Scan(
			&p.OrderID, &p.Account, &p.Symbol, &p.Underlying, &instrument,
			&optionType, &p.Strike, &expiration, &p.Quantity,
			&opening, &p.OpeningPrice, &p.OpeningAmount,
			&closing, &p.ClosingPrice, &p.ClosingAmount, &status, &p.PnL,
		); err != nil {
			return nil, err
		}
		p.Instrument = txn.Instrument(instrument)
		p.OptionType = txn.OptionType(optionType)
		var err error
		if p.Expiration, err = parseExpiration(expiration); err != nil {
			return nil, fmt.Errorf("position in order %s: %w", p.OrderID, err)
		}
		p.OpeningAction = txn.ParseAction(opening)
		p.ClosingAction = txn.ParseAction(closing)
		p.Status = assemble.Status(status)
		p.Key = positionKey(p)
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// positionKey rebuilds the contract key from the stored attribute columns.
func positionKey(p *assemble.Position) txn.Key {
	if p.OptionType == "" {
		return txn.EquityKey(p.Symbol)
	}
	under := p.Underlying
	if under == "" {
		under = p.Symbol
	}
	return txn.OptionKey(under, p.OptionType, p.Strike, p.Expiration)
}
