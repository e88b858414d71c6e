// Package assemble turns a normalized transaction stream into Orders and
// consolidated Positions. Fills sharing an order id become one Order; fills
// within an order sharing the same contract and action merge into one
// Position with quantity-weighted pricing; closing fills are matched FIFO
// against open positions account-wide, splitting a position when a close is
// partial.
package assemble

import (
	"log/slog"
	"math"
	"sort"

	"github.com/rustyeddy/tradechain/inventory"
	"github.com/rustyeddy/tradechain/txn"
)

// optionMultiplier converts a per-contract option price into cash.
const optionMultiplier = 100

// fill is one normalized transaction inside an order group.
type fill struct {
	tx  txn.Transaction
	act txn.Action
	key txn.Key
}

// Orders assembles the transaction stream into classified orders with
// consolidated, FIFO-matched positions. Transactions are processed in
// timestamp order regardless of input order.
func Orders(txs []txn.Transaction) []*Order {
	sorted := make([]txn.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExecutedAt.Equal(sorted[j].ExecutedAt) {
			return sorted[i].ExecutedAt.Before(sorted[j].ExecutedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	groups, ids := groupFills(sorted)

	orders := make([]*Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, buildOrder(id, groups[id]))
	}

	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Date.Equal(orders[j].Date) {
			return orders[i].Date.Before(orders[j].Date)
		}
		return orders[i].ID < orders[j].ID
	})

	matchClosings(orders)

	for _, o := range orders {
		o.refresh()
	}
	return orders
}

// groupFills buckets fills by order id, synthesizing ids for order-less
// system events and dropping non-trading noise.
func groupFills(txs []txn.Transaction) (map[string][]fill, []string) {
	groups := make(map[string][]fill)
	var ids []string

	for _, t := range txs {
		act := txn.Normalize(t)
		if act == txn.Unknown {
			// Fees, transfers and other non-trading records.
			slog.Debug("skipping non-trading transaction", "txn", t.ID, "description", t.Description)
			continue
		}

		id := t.OrderID
		if id == "" {
			if !act.IsSystemEvent() {
				// Order-less trade fills (e.g. stock delivered by an
				// assignment) do not form orders of their own.
				slog.Debug("skipping order-less trade transaction", "txn", t.ID, "action", act.String())
				continue
			}
			id = txn.SyntheticOrderID(act, t.ID)
		}

		if _, ok := groups[id]; !ok {
			ids = append(ids, id)
		}
		groups[id] = append(groups[id], fill{tx: t, act: act, key: txn.ResolveKey(t)})
	}

	return groups, ids
}

// buildOrder consolidates one order group into positions and classifies it.
func buildOrder(id string, fills []fill) *Order {
	first := fills[0]
	o := &Order{
		ID:         id,
		Account:    first.tx.Account,
		Underlying: underlyingOf(first.tx),
		Date:       first.tx.ExecutedAt,
	}

	hasOpen, hasClose, hasSystem := false, false, false
	for _, f := range fills {
		if f.tx.ExecutedAt.Before(o.Date) {
			o.Date = f.tx.ExecutedAt
		}
		switch {
		case f.act.IsSystemEvent():
			hasSystem = true
			switch f.act {
			case txn.Expired:
				o.HasExpiration = true
			case txn.Assigned:
				o.HasAssignment = true
			case txn.Exercised:
				o.HasExercise = true
			case txn.CashSettled:
				o.HasCashSettlement = true
			}
		case f.act.IsOpening():
			hasOpen = true
		case f.act.IsClosing():
			hasClose = true
		}
	}

	switch {
	case hasSystem:
		o.Type = Closing
	case hasOpen && hasClose:
		o.Type = Rolling
	case hasOpen:
		o.Type = Opening
	default:
		o.Type = Closing
	}

	o.Positions = consolidate(o, fills)
	return o
}

// consolidate merges fills sharing (key, action) into single positions with
// quantity-weighted average pricing. Fills differing by action stay
// distinct, so a roll's close leg and open leg remain two positions.
func consolidate(o *Order, fills []fill) []*Position {
	type bucket struct {
		key txn.Key
		act txn.Action
	}
	merged := make(map[bucket][]fill)
	var buckets []bucket

	for _, f := range fills {
		b := bucket{key: f.key, act: f.act}
		if _, ok := merged[b]; !ok {
			buckets = append(buckets, b)
		}
		merged[b] = append(merged[b], f)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].key.String() != buckets[j].key.String() {
			return buckets[i].key.String() < buckets[j].key.String()
		}
		return buckets[i].act < buckets[j].act
	})

	positions := make([]*Position, 0, len(buckets))
	for _, b := range buckets {
		group := merged[b]

		var qty, amount float64
		for _, f := range group {
			qty += math.Abs(f.tx.Quantity)
			amount += math.Abs(f.tx.Quantity) * f.tx.Price
		}
		price := 0.0
		if qty > 0 {
			price = amount / qty
		}

		first := group[0].tx
		p := &Position{
			OrderID:    o.ID,
			Account:    first.Account,
			Symbol:     first.Symbol,
			Underlying: underlyingOf(first),
			Instrument: first.Instrument,
			OptionType: first.OptionType,
			Strike:     first.Strike,
			Expiration: first.Expiration,
			Key:        b.key,
		}

		mult := multiplierFor(first)
		switch {
		case b.act.IsOpening():
			p.OpeningAction = b.act
			p.OpeningPrice = price
			p.Quantity = qty
			if b.act == txn.SellToOpen {
				p.Quantity = -qty
			}
			p.OpeningAmount = cashFlow(b.act, qty, price, mult)
			p.PnL = p.OpeningAmount
			p.Status = StatusOpen
		default:
			p.ClosingAction = b.act
			p.ClosingPrice = price
			p.Quantity = closingQuantity(b.act, qty)
			p.ClosingAmount = cashFlow(b.act, qty, price, mult)
			p.PnL = p.ClosingAmount
			p.Status = StatusClosed
		}
		positions = append(positions, p)
	}

	return positions
}

// matchClosings walks orders chronologically and consumes open positions
// with each closing leg, earliest open first. A partially closed position is
// split into a CLOSED portion and an OPEN remainder with proportional
// opening cash flow; both halves stay with the order that opened them.
func matchClosings(orders []*Order) {
	type slot struct {
		account string
		key     txn.Key
	}
	open := make(map[slot][]*Position)
	owner := make(map[*Position]*Order)

	for _, o := range orders {
		for _, p := range o.Positions {
			if p.IsClosingLeg() {
				continue
			}
			s := slot{account: p.Account, key: p.Key}
			open[s] = append(open[s], p)
			owner[p] = o
		}

		for _, leg := range o.ClosingLegs() {
			s := slot{account: leg.Account, key: leg.Key}
			remaining := math.Abs(leg.Quantity)

			for remaining >= inventory.Epsilon && len(open[s]) > 0 {
				head := open[s][0]
				avail := math.Abs(head.Quantity)
				matched := math.Min(remaining, avail)

				if avail-matched < inventory.Epsilon {
					head.Status = StatusClosed
					head.ClosingAction = leg.ClosingAction
					head.ClosingPrice = leg.ClosingPrice
					open[s] = open[s][1:]
				} else {
					splitPosition(owner[head], head, matched, leg)
				}
				remaining -= matched
			}
		}
	}
}

// splitPosition carves a CLOSED portion of size matched out of an open
// position, leaving the remainder open with proportional opening cash flow.
func splitPosition(o *Order, p *Position, matched float64, leg *Position) {
	sign := 1.0
	if p.Quantity < 0 {
		sign = -1.0
	}
	avail := math.Abs(p.Quantity)
	frac := matched / avail

	closed := *p
	closed.Quantity = sign * matched
	closed.OpeningAmount = p.OpeningAmount * frac
	closed.PnL = closed.OpeningAmount
	closed.ClosingAction = leg.ClosingAction
	closed.ClosingPrice = leg.ClosingPrice
	closed.Status = StatusClosed

	p.Quantity = sign * (avail - matched)
	p.OpeningAmount *= 1 - frac
	p.PnL = p.OpeningAmount

	// Closed portion sits just before the open remainder in the owning order.
	for i, q := range o.Positions {
		if q == p {
			o.Positions = append(o.Positions[:i], append([]*Position{&closed}, o.Positions[i:]...)...)
			return
		}
	}
	o.Positions = append(o.Positions, &closed)
}

func underlyingOf(t txn.Transaction) string {
	if t.Underlying != "" {
		return t.Underlying
	}
	if t.IsOption() {
		if d, err := txn.ParseOCC(t.Symbol); err == nil {
			return d.Underlying
		}
	}
	return t.Symbol
}

func multiplierFor(t txn.Transaction) float64 {
	if t.IsOption() {
		return optionMultiplier
	}
	return 1
}

// cashFlow is the signed cash effect of a fill: sells credit the account,
// buys debit it. System events settle at the recorded price, usually zero.
func cashFlow(act txn.Action, qty, price, mult float64) float64 {
	switch act {
	case txn.SellToOpen, txn.SellToClose, txn.Sell:
		return qty * price * mult
	case txn.BuyToOpen, txn.BuyToClose, txn.Buy:
		return -qty * price * mult
	default:
		return qty * price * mult
	}
}

// closingQuantity signs a closing leg's quantity by its direction: buys
// add, sells subtract, system events record the absolute quantity removed.
func closingQuantity(act txn.Action, qty float64) float64 {
	switch act {
	case txn.SellToClose, txn.Sell:
		return -qty
	case txn.BuyToClose:
		return qty
	default:
		return qty
	}
}
