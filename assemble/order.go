package assemble

import (
	"time"

	"github.com/rustyeddy/tradechain/txn"
)

// OrderType classifies an order from the mix of actions among its legs.
type OrderType string

const (
	Opening OrderType = "OPENING"
	Closing OrderType = "CLOSING"
	Rolling OrderType = "ROLLING"
)

// Status is the lifecycle state of a position.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Position is one consolidated leg of an order.
//
// An opening leg starts life OPEN and carries the opening cash flow; when
// closing fills are matched against it the leg becomes CLOSED and records
// the closing action and price (splitting first if the close was partial).
// A closing leg carries the closing cash flow of its own fills. Cash is
// never double counted: realized P&L for a contract is the sum of its
// closed opening legs and the closing legs that closed them.
type Position struct {
	OrderID    string
	Account    string
	Symbol     string
	Underlying string
	Instrument txn.Instrument
	OptionType txn.OptionType
	Strike     float64
	Expiration time.Time
	Key        txn.Key

	// Quantity is signed: positive net long, negative net short.
	Quantity float64

	OpeningAction txn.Action // Unknown on closing legs
	OpeningPrice  float64
	OpeningAmount float64

	ClosingAction txn.Action // Unknown while the position is open
	ClosingPrice  float64
	ClosingAmount float64

	Status Status
	PnL    float64
}

// IsClosingLeg reports whether the position was created from closing fills
// rather than opening ones.
func (p *Position) IsClosingLeg() bool {
	return p.OpeningAction == txn.Unknown
}

// Order is a group of fills sharing one broker order id, or a synthesized
// id for an order-less system event.
type Order struct {
	ID         string
	Account    string
	Underlying string
	Type       OrderType
	Date       time.Time
	Positions  []*Position

	TotalQuantity float64
	TotalPnL      float64

	HasAssignment     bool
	HasExpiration     bool
	HasExercise       bool
	HasCashSettlement bool
}

// SystemEvent reports whether the order was synthesized from a broker
// system event (expiration, assignment, exercise, cash settlement).
func (o *Order) SystemEvent() bool {
	return o.HasAssignment || o.HasExpiration || o.HasExercise || o.HasCashSettlement
}

// OpeningLegs returns the order's opening positions.
func (o *Order) OpeningLegs() []*Position {
	var legs []*Position
	for _, p := range o.Positions {
		if !p.IsClosingLeg() {
			legs = append(legs, p)
		}
	}
	return legs
}

// ClosingLegs returns the order's closing positions.
func (o *Order) ClosingLegs() []*Position {
	var legs []*Position
	for _, p := range o.Positions {
		if p.IsClosingLeg() {
			legs = append(legs, p)
		}
	}
	return legs
}

// refresh recomputes the order aggregates from its positions.
func (o *Order) refresh() {
	o.TotalQuantity = 0
	o.TotalPnL = 0
	for _, p := range o.Positions {
		if p.Quantity < 0 {
			o.TotalQuantity -= p.Quantity
		} else {
			o.TotalQuantity += p.Quantity
		}
		o.TotalPnL += p.PnL
	}
}
