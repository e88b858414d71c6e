// Package chain links chronologically related orders for one
// account+underlying into chains, each chain representing one continuous
// strategy lifecycle from initial open to eventual full close, and splits a
// chain's P&L into realized and unrealized parts.
package chain

import (
	"fmt"

	"github.com/rustyeddy/tradechain/assemble"
	"github.com/rustyeddy/tradechain/txn"
)

// Status is the aggregate lifecycle state of a chain.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Chain is an ordered sequence of orders belonging to one strategy
// lifecycle. The sequence number of an order is its index plus one.
type Chain struct {
	ID             string
	Account        string
	Underlying     string
	OpeningOrderID string
	Orders         []*assemble.Order
	Status         Status

	RealizedPnL   float64
	UnrealizedPnL float64
	TotalPnL      float64
}

// Fragment is closing quantity that a linked order carried beyond what its
// chain actually held open. It is surfaced to operators, never silently
// absorbed.
type Fragment struct {
	OrderID  string
	Account  string
	Key      txn.Key
	Quantity float64
}

// chainID derives the deterministic chain identifier from the opening
// order, so a rebuild over the same transactions reproduces the same ids.
func chainID(opening *assemble.Order) string {
	id := opening.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s", opening.Underlying, opening.Date.Format("20060102"), id)
}
