package engine

import (
	"testing"
	"time"

	"github.com/rustyeddy/tradechain/assemble"
	"github.com/rustyeddy/tradechain/chain"
	"github.com/rustyeddy/tradechain/txn"
	"github.com/stretchr/testify/assert"
)

const (
	acct   = "5WX12345"
	call47 = "IBIT  250117C00047000"
	call61 = "IBIT  250117C00061000"
)

var base = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

func optTx(id, orderID, symbol, action string, qty, price float64, at time.Time) txn.Transaction {
	d, err := txn.ParseOCC(symbol)
	if err != nil {
		panic(err)
	}
	return txn.Transaction{
		ID:         id,
		Account:    acct,
		Symbol:     symbol,
		Underlying: d.Underlying,
		Instrument: txn.Option,
		OptionType: d.Type,
		Strike:     d.Strike,
		Expiration: d.Expiration,
		Quantity:   qty,
		Price:      price,
		Action:     action,
		OrderID:    orderID,
		ExecutedAt: at,
	}
}

func rollLifecycle() []txn.Transaction {
	return []txn.Transaction{
		optTx("t1", "O1", call47, "SELL_TO_OPEN", 2, 1.50, base),
		optTx("t2", "O2", call47, "BUY_TO_CLOSE", 2, 0.40, base.AddDate(0, 0, 7)),
		optTx("t3", "O2", call61, "SELL_TO_OPEN", 2, 0.90, base.AddDate(0, 0, 7)),
		optTx("t4", "O3", call61, "BUY_TO_CLOSE", 2, 0.10, base.AddDate(0, 0, 14)),
	}
}

func TestReconcileFullLifecycle(t *testing.T) {
	t.Parallel()

	res := Reconcile(rollLifecycle())

	assert.Len(t, res.Orders, 3)
	assert.Len(t, res.Chains, 1)
	assert.Empty(t, res.Orphans)
	assert.Empty(t, res.Fragments)

	c := res.Chains[0]
	assert.Equal(t, chain.StatusClosed, c.Status)

	// Credits: 300 + 180; debits: 80 + 20.
	assert.InDelta(t, 380, c.RealizedPnL, 1e-9)
	assert.InDelta(t, 0, c.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 380, c.TotalPnL, 1e-9)
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	txs := rollLifecycle()
	shuffled := []txn.Transaction{txs[3], txs[1], txs[0], txs[2]}

	a := Reconcile(txs)
	b := Reconcile(shuffled)

	assert.Equal(t, len(a.Orders), len(b.Orders))
	for i := range a.Orders {
		assert.Equal(t, a.Orders[i].ID, b.Orders[i].ID)
		assert.Equal(t, a.Orders[i].Type, b.Orders[i].Type)
		assert.InDelta(t, a.Orders[i].TotalPnL, b.Orders[i].TotalPnL, 1e-9)
	}

	assert.Equal(t, len(a.Chains), len(b.Chains))
	for i := range a.Chains {
		assert.Equal(t, a.Chains[i].ID, b.Chains[i].ID)
		assert.Equal(t, a.Chains[i].Status, b.Chains[i].Status)
		assert.InDelta(t, a.Chains[i].TotalPnL, b.Chains[i].TotalPnL, 1e-9)
	}
}

func TestReconcileCustomWindow(t *testing.T) {
	t.Parallel()

	txs := []txn.Transaction{
		optTx("t1", "O1", call47, "SELL_TO_OPEN", 1, 1.00, base),
		optTx("t2", "O2", call47, "BUY_TO_CLOSE", 1, 0.50, base.AddDate(0, 0, 10)),
	}

	// Default window links the close.
	res := Reconcile(txs)
	assert.Len(t, res.Chains[0].Orders, 2)

	// A 5-day window does not.
	res = NewWithWindow(5 * 24 * time.Hour).Reconcile(txs)
	assert.Len(t, res.Chains[0].Orders, 1)
	assert.Len(t, res.Orphans, 1)
}

func TestResultPositionsFlattens(t *testing.T) {
	t.Parallel()

	res := Reconcile(rollLifecycle())

	var want int
	for _, o := range res.Orders {
		want += len(o.Positions)
	}
	positions := res.Positions()
	assert.Len(t, positions, want)
	for _, p := range positions {
		assert.Equal(t, assemble.StatusClosed, p.Status)
	}
}
