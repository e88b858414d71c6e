package chain

import (
	"math"

	"github.com/rustyeddy/tradechain/inventory"
	"github.com/rustyeddy/tradechain/txn"
)

// SplitPnL partitions a chain's P&L into realized and unrealized and stores
// the figures on the chain.
//
// For a CLOSED chain everything is realized. For an OPEN chain the split is
// decided by the chain's own member orders, not by account-wide matching: a
// close that never linked (an orphan) completes no round trip here, so the
// opening quantity it would have covered stays unrealized. Closing legs among
// the members are realized cash; each opening position is realized in
// proportion to the quantity the members' closing legs actually covered on
// its key, earliest opening first. The split is exhaustive, so realized plus
// unrealized always equals the sum of P&L across the chain's positions.
func SplitPnL(c *Chain) {
	var realized, unrealized float64

	if c.Status == StatusClosed {
		for _, o := range c.Orders {
			for _, p := range o.Positions {
				realized += p.PnL
			}
		}
		c.RealizedPnL = realized
		c.UnrealizedPnL = 0
		c.TotalPnL = realized
		return
	}

	// Quantity closed per key by the chain's own members.
	closed := make(map[txn.Key]float64)
	for _, o := range c.Orders {
		for _, p := range o.Positions {
			if p.IsClosingLeg() {
				closed[p.Key] += math.Abs(p.Quantity)
				realized += p.PnL
			}
		}
	}

	for _, o := range c.Orders {
		for _, p := range o.Positions {
			if p.IsClosingLeg() {
				continue
			}
			qty := math.Abs(p.Quantity)
			matched := math.Min(qty, closed[p.Key])
			closed[p.Key] -= matched

			frac := 0.0
			if qty >= inventory.Epsilon {
				frac = matched / qty
			}
			realized += p.PnL * frac
			unrealized += p.PnL * (1 - frac)
		}
	}

	c.RealizedPnL = realized
	c.UnrealizedPnL = unrealized
	c.TotalPnL = realized + unrealized
}
