// Package inventory tracks running signed position balances and weighted
// average costs while a reconciliation run applies transactions in time
// order. The state is transient: it exists for one run and is thrown away.
package inventory

import (
	"math"
	"sort"

	"github.com/rustyeddy/tradechain/txn"
)

// Epsilon absorbs floating rounding in quantity-balance comparisons. A
// balance within Epsilon of zero is treated as exactly closed.
const Epsilon = 1e-6

// Tracker maintains balance[account][key] and cost[account][key].
//
// Balance sign convention follows the matching rules, not long/short
// economics: BUY_TO_OPEN subtracts, SELL_TO_OPEN adds, BUY_TO_CLOSE
// subtracts, SELL_TO_CLOSE adds, and system events move the balance toward
// zero. A chain is fully closed when every touched key balances to zero.
type Tracker struct {
	balances map[string]map[txn.Key]float64
	costs    map[string]map[txn.Key]float64
	qtys     map[string]map[txn.Key]float64 // opening quantity behind each cost
}

func New() *Tracker {
	return &Tracker{
		balances: make(map[string]map[txn.Key]float64),
		costs:    make(map[string]map[txn.Key]float64),
		qtys:     make(map[string]map[txn.Key]float64),
	}
}

// Apply updates the balance for one fill. qty is taken as an absolute
// quantity; the action determines the direction. Opening fills also fold the
// price into the weighted average cost; closing fills leave cost untouched.
func (tr *Tracker) Apply(account string, key txn.Key, act txn.Action, qty, price float64) {
	qty = math.Abs(qty)
	bal := tr.Balance(account, key)

	switch {
	case act == txn.BuyToOpen || act == txn.Buy:
		bal -= qty
		tr.foldCost(account, key, qty, price)
	case act == txn.SellToOpen:
		bal += qty
		tr.foldCost(account, key, qty, price)
	case act == txn.BuyToClose:
		bal -= qty
	case act == txn.SellToClose || act == txn.Sell:
		bal += qty
	case act.IsSystemEvent():
		// Sign-aware move toward zero.
		if bal > 0 {
			bal -= qty
		} else if bal < 0 {
			bal += qty
		}
	default:
		return
	}

	tr.set(tr.balances, account, key, bal)
}

// Reduce moves the balance toward zero by at most qty and reports how much
// was applied and how much quantity was left unexplained. The chain linker
// uses it to partition a closing leg across what the chain actually holds.
func (tr *Tracker) Reduce(account string, key txn.Key, qty float64) (applied, excess float64) {
	qty = math.Abs(qty)
	bal := tr.Balance(account, key)
	avail := math.Abs(bal)

	applied = math.Min(qty, avail)
	excess = qty - applied
	if excess < Epsilon {
		excess = 0
	}

	if bal > 0 {
		bal -= applied
	} else {
		bal += applied
	}
	tr.set(tr.balances, account, key, bal)
	return applied, excess
}

// Balance returns the running signed quantity for account+key.
func (tr *Tracker) Balance(account string, key txn.Key) float64 {
	if m, ok := tr.balances[account]; ok {
		return m[key]
	}
	return 0
}

// Cost returns the weighted average opening price for account+key.
func (tr *Tracker) Cost(account string, key txn.Key) float64 {
	if m, ok := tr.costs[account]; ok {
		return m[key]
	}
	return 0
}

// Closed reports whether the balance for account+key is zero within Epsilon.
func (tr *Tracker) Closed(account string, key txn.Key) bool {
	return math.Abs(tr.Balance(account, key)) < Epsilon
}

// OpenKeys returns the keys with a non-zero balance for an account, in a
// stable order.
func (tr *Tracker) OpenKeys(account string) []txn.Key {
	var keys []txn.Key
	for key, bal := range tr.balances[account] {
		if math.Abs(bal) >= Epsilon {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// AllClosed reports whether every key ever touched for the account has
// balanced back to zero.
func (tr *Tracker) AllClosed(account string) bool {
	for _, bal := range tr.balances[account] {
		if math.Abs(bal) >= Epsilon {
			return false
		}
	}
	return true
}

func (tr *Tracker) foldCost(account string, key txn.Key, qty, price float64) {
	oldQty := 0.0
	if m, ok := tr.qtys[account]; ok {
		oldQty = m[key]
	}
	oldCost := tr.Cost(account, key)

	total := oldQty + qty
	if total <= 0 {
		return
	}
	tr.set(tr.costs, account, key, (oldCost*oldQty+price*qty)/total)
	tr.set(tr.qtys, account, key, total)
}

func (tr *Tracker) set(m map[string]map[txn.Key]float64, account string, key txn.Key, v float64) {
	inner, ok := m[account]
	if !ok {
		inner = make(map[txn.Key]float64)
		m[account] = inner
	}
	inner[key] = v
}
