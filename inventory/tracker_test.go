package inventory

import (
	"testing"

	"github.com/rustyeddy/tradechain/txn"
	"github.com/stretchr/testify/assert"
)

const acct = "5WX12345"

func TestApplySignConventions(t *testing.T) {
	t.Parallel()

	key := txn.EquityKey("IBIT")

	tests := []struct {
		name     string
		act      txn.Action
		qty      float64
		expected float64
	}{
		{name: "buy_to_open_subtracts", act: txn.BuyToOpen, qty: 5, expected: -5},
		{name: "sell_to_open_adds", act: txn.SellToOpen, qty: 5, expected: 5},
		{name: "buy_treated_as_open", act: txn.Buy, qty: 3, expected: -3},
		{name: "negative_qty_uses_absolute", act: txn.SellToOpen, qty: -4, expected: 4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := New()
			tr.Apply(acct, key, tt.act, tt.qty, 10)
			assert.InDelta(t, tt.expected, tr.Balance(acct, key), Epsilon)
		})
	}
}

func TestApplyOpenThenClose(t *testing.T) {
	t.Parallel()

	key := txn.EquityKey("IBIT")

	tr := New()
	tr.Apply(acct, key, txn.SellToOpen, 10, 1.5)
	assert.InDelta(t, 10, tr.Balance(acct, key), Epsilon)

	tr.Apply(acct, key, txn.BuyToClose, 4, 0.5)
	assert.InDelta(t, 6, tr.Balance(acct, key), Epsilon)
	assert.False(t, tr.Closed(acct, key))

	tr.Apply(acct, key, txn.BuyToClose, 6, 0.2)
	assert.True(t, tr.Closed(acct, key))
	assert.True(t, tr.AllClosed(acct))
}

func TestApplySystemEventMovesTowardZero(t *testing.T) {
	t.Parallel()

	key := txn.EquityKey("IBIT")

	// Short side: positive balance decreases.
	tr := New()
	tr.Apply(acct, key, txn.SellToOpen, 10, 1.5)
	tr.Apply(acct, key, txn.Expired, 10, 0)
	assert.True(t, tr.Closed(acct, key))

	// Long side: negative balance increases.
	tr = New()
	tr.Apply(acct, key, txn.BuyToOpen, 10, 1.5)
	tr.Apply(acct, key, txn.Assigned, 10, 0)
	assert.True(t, tr.Closed(acct, key))
}

func TestApplyUnknownIsIgnored(t *testing.T) {
	t.Parallel()

	key := txn.EquityKey("IBIT")
	tr := New()
	tr.Apply(acct, key, txn.Unknown, 10, 1.5)
	assert.InDelta(t, 0, tr.Balance(acct, key), Epsilon)
}

func TestWeightedAverageCost(t *testing.T) {
	t.Parallel()

	key := txn.EquityKey("IBIT")
	tr := New()

	tr.Apply(acct, key, txn.BuyToOpen, 10, 2.0)
	assert.InDelta(t, 2.0, tr.Cost(acct, key), Epsilon)

	tr.Apply(acct, key, txn.BuyToOpen, 10, 4.0)
	assert.InDelta(t, 3.0, tr.Cost(acct, key), Epsilon)

	// Closing fills leave cost untouched.
	tr.Apply(acct, key, txn.SellToClose, 20, 9.0)
	assert.InDelta(t, 3.0, tr.Cost(acct, key), Epsilon)
}

func TestReducePartitionsExcess(t *testing.T) {
	t.Parallel()

	key := txn.EquityKey("IBIT")

	tests := []struct {
		name            string
		open            float64
		reduce          float64
		expectedApplied float64
		expectedExcess  float64
	}{
		{name: "exact", open: 9, reduce: 9, expectedApplied: 9, expectedExcess: 0},
		{name: "partial", open: 9, reduce: 3, expectedApplied: 3, expectedExcess: 0},
		{name: "overshoot", open: 9, reduce: 15, expectedApplied: 9, expectedExcess: 6},
		{name: "nothing_open", open: 0, reduce: 5, expectedApplied: 0, expectedExcess: 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := New()
			if tt.open > 0 {
				tr.Apply(acct, key, txn.SellToOpen, tt.open, 1.0)
			}
			applied, excess := tr.Reduce(acct, key, tt.reduce)
			assert.InDelta(t, tt.expectedApplied, applied, Epsilon)
			assert.InDelta(t, tt.expectedExcess, excess, Epsilon)
			assert.InDelta(t, tt.open-tt.expectedApplied, tr.Balance(acct, key), Epsilon)
		})
	}
}

func TestReduceNegativeBalance(t *testing.T) {
	t.Parallel()

	key := txn.EquityKey("IBIT")
	tr := New()
	tr.Apply(acct, key, txn.BuyToOpen, 10, 1.0)

	applied, excess := tr.Reduce(acct, key, 4)
	assert.InDelta(t, 4, applied, Epsilon)
	assert.InDelta(t, 0, excess, Epsilon)
	assert.InDelta(t, -6, tr.Balance(acct, key), Epsilon)
}

func TestOpenKeysStableOrder(t *testing.T) {
	t.Parallel()

	a := txn.EquityKey("AAPL")
	b := txn.EquityKey("IBIT")
	c := txn.EquityKey("ZETA")

	tr := New()
	tr.Apply(acct, c, txn.BuyToOpen, 1, 1)
	tr.Apply(acct, a, txn.BuyToOpen, 1, 1)
	tr.Apply(acct, b, txn.BuyToOpen, 1, 1)

	assert.Equal(t, []txn.Key{a, b, c}, tr.OpenKeys(acct))

	tr.Apply(acct, b, txn.SellToClose, 1, 1)
	assert.Equal(t, []txn.Key{a, c}, tr.OpenKeys(acct))
	assert.False(t, tr.AllClosed(acct))
}
