package chain

import (
	"log/slog"
	"sort"
	"time"

	"github.com/rustyeddy/tradechain/assemble"
	"github.com/rustyeddy/tradechain/inventory"
)

// DefaultWindow is how long after a chain member a continuation order may
// still be linked. Rolls virtually always land within one monthly cycle.
const DefaultWindow = 30 * 24 * time.Hour

// Linker builds chains from assembled orders.
type Linker struct {
	// Window caps the gap between a chain member and a continuation order.
	Window time.Duration
}

func NewLinker() *Linker {
	return &Linker{Window: DefaultWindow}
}

// Result carries everything a linking pass produced. Orphans are
// rolling/closing orders that matched no chain; fragments are closing
// quantity a linked order carried beyond what its chain held open.
type Result struct {
	Chains    []*Chain
	Orphans   []*assemble.Order
	Fragments []Fragment
}

// Link walks each account+underlying group in time order, roots a chain at
// every opening order, and repeatedly attaches rolling/closing orders whose
// closing legs match a position key the chain still holds open. All matching
// candidates at a step are accepted in chronological order; extension stops
// once every key the chain touched balances to zero. Unmatched system-event
// orders become singleton chains; unmatched rolling/closing orders are
// reported as orphans.
func (l *Linker) Link(orders []*assemble.Order) *Result {
	res := &Result{}

	type groupKey struct {
		account    string
		underlying string
	}
	groups := make(map[groupKey][]*assemble.Order)
	var keys []groupKey
	for _, o := range orders {
		k := groupKey{account: o.Account, underlying: o.Underlying}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], o)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].account != keys[j].account {
			return keys[i].account < keys[j].account
		}
		return keys[i].underlying < keys[j].underlying
	})

	for _, k := range keys {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].Date.Equal(group[j].Date) {
				return group[i].Date.Before(group[j].Date)
			}
			return group[i].ID < group[j].ID
		})
		l.linkGroup(group, res)
	}

	sort.SliceStable(res.Chains, func(i, j int) bool {
		a, b := res.Chains[i], res.Chains[j]
		if a.Account != b.Account {
			return a.Account < b.Account
		}
		if !a.Orders[0].Date.Equal(b.Orders[0].Date) {
			return a.Orders[0].Date.Before(b.Orders[0].Date)
		}
		return a.ID < b.ID
	})
	return res
}

func (l *Linker) linkGroup(group []*assemble.Order, res *Result) {
	consumed := make(map[string]bool)

	for _, root := range group {
		if consumed[root.ID] || root.Type != assemble.Opening {
			continue
		}
		consumed[root.ID] = true
		res.Chains = append(res.Chains, l.grow(root, group, consumed, res))
	}

	// Whatever is left never continued any chain.
	for _, o := range group {
		if consumed[o.ID] {
			continue
		}
		if o.SystemEvent() {
			res.Chains = append(res.Chains, singleton(o))
			continue
		}
		slog.Warn("orphan order: no chain holds its closing keys",
			"order", o.ID, "account", o.Account, "underlying", o.Underlying,
			"type", string(o.Type), "date", o.Date)
		res.Orphans = append(res.Orphans, o)
	}
}

// grow extends a chain rooted at root until nothing else matches or every
// key the chain touched is flat.
func (l *Linker) grow(root *assemble.Order, group []*assemble.Order, consumed map[string]bool, res *Result) *Chain {
	tr := inventory.New()
	applyOrder(tr, root, nil, res)
	members := []*assemble.Order{root}

	for !tr.AllClosed(root.Account) {
		progress := false
		for _, cand := range group {
			if consumed[cand.ID] {
				continue
			}
			if cand.Type != assemble.Rolling && cand.Type != assemble.Closing {
				continue
			}
			if !l.inWindow(members, cand) || !closesHeldKey(tr, cand) {
				continue
			}

			consumed[cand.ID] = true
			applyOrder(tr, cand, cand, res)
			members = append(members, cand)
			progress = true

			if tr.AllClosed(root.Account) {
				break
			}
		}
		if !progress {
			break
		}
	}

	sort.SliceStable(members, func(i, j int) bool {
		if !members[i].Date.Equal(members[j].Date) {
			return members[i].Date.Before(members[j].Date)
		}
		return members[i].ID < members[j].ID
	})

	status := StatusOpen
	if tr.AllClosed(root.Account) {
		status = StatusClosed
	}

	return &Chain{
		ID:             chainID(root),
		Account:        root.Account,
		Underlying:     root.Underlying,
		OpeningOrderID: root.ID,
		Orders:         members,
		Status:         status,
	}
}

// inWindow reports whether the candidate follows some chain member closely
// enough: strictly later, and within the linking window of that member.
func (l *Linker) inWindow(members []*assemble.Order, cand *assemble.Order) bool {
	for _, m := range members {
		if cand.Date.After(m.Date) && cand.Date.Sub(m.Date) <= l.Window {
			return true
		}
	}
	return false
}

// closesHeldKey reports whether any of the candidate's closing legs targets
// a key the chain currently holds open.
func closesHeldKey(tr *inventory.Tracker, cand *assemble.Order) bool {
	for _, leg := range cand.ClosingLegs() {
		if !tr.Closed(leg.Account, leg.Key) {
			return true
		}
	}
	return false
}

// applyOrder feeds an order's legs into the chain's inventory. Closing legs
// are partitioned against what the chain holds: quantity beyond the open
// balance is recorded as an orphan fragment rather than force-applied.
// fragOwner is nil for the root order, which has no closing legs to
// partition.
func applyOrder(tr *inventory.Tracker, o *assemble.Order, fragOwner *assemble.Order, res *Result) {
	for _, p := range o.Positions {
		if !p.IsClosingLeg() {
			tr.Apply(p.Account, p.Key, p.OpeningAction, p.Quantity, p.OpeningPrice)
			continue
		}
		_, excess := tr.Reduce(p.Account, p.Key, p.Quantity)
		if fragOwner != nil && excess >= inventory.Epsilon {
			slog.Warn("closing quantity exceeds chain's open balance",
				"order", fragOwner.ID, "key", p.Key.String(), "excess", excess)
			res.Fragments = append(res.Fragments, Fragment{
				OrderID:  fragOwner.ID,
				Account:  p.Account,
				Key:      p.Key,
				Quantity: excess,
			})
		}
	}
}

// singleton wraps an unmatched system-event order in its own chain.
func singleton(o *assemble.Order) *Chain {
	tr := inventory.New()
	applyOrder(tr, o, nil, nil)

	status := StatusOpen
	if tr.AllClosed(o.Account) {
		status = StatusClosed
	}
	return &Chain{
		ID:             chainID(o),
		Account:        o.Account,
		Underlying:     o.Underlying,
		OpeningOrderID: o.ID,
		Orders:         []*assemble.Order{o},
		Status:         status,
	}
}
