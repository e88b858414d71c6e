// Package engine runs the full reconciliation pass: a pure, deterministic
// transform from a transaction log to orders, positions and chains. It
// performs no I/O; persistence is the caller's commit step.
package engine

import (
	"log/slog"
	"time"

	"github.com/rustyeddy/tradechain/assemble"
	"github.com/rustyeddy/tradechain/chain"
	"github.com/rustyeddy/tradechain/txn"
)

// Result is the complete output of one reconciliation run.
type Result struct {
	Orders    []*assemble.Order
	Chains    []*chain.Chain
	Orphans   []*assemble.Order
	Fragments []chain.Fragment
}

// Positions flattens every position across all orders, in order.
func (r *Result) Positions() []*assemble.Position {
	var out []*assemble.Position
	for _, o := range r.Orders {
		out = append(out, o.Positions...)
	}
	return out
}

// Engine holds the knobs of a reconciliation run.
type Engine struct {
	linker *chain.Linker
}

// New returns an engine with the default 30-day linking window.
func New() *Engine {
	return &Engine{linker: chain.NewLinker()}
}

// NewWithWindow returns an engine with a custom linking window.
func NewWithWindow(window time.Duration) *Engine {
	l := chain.NewLinker()
	l.Window = window
	return &Engine{linker: l}
}

// Reconcile rebuilds the trading history from a transaction log. Given the
// same transactions it produces the same ids, the same chain membership and
// the same P&L figures, so re-running it is the correction mechanism.
func (e *Engine) Reconcile(txs []txn.Transaction) *Result {
	orders := assemble.Orders(txs)
	linked := e.linker.Link(orders)

	for _, c := range linked.Chains {
		chain.SplitPnL(c)
	}

	res := &Result{
		Orders:    orders,
		Chains:    linked.Chains,
		Orphans:   linked.Orphans,
		Fragments: linked.Fragments,
	}

	slog.Info("reconciliation complete",
		"transactions", len(txs),
		"orders", len(res.Orders),
		"chains", len(res.Chains),
		"orphans", len(res.Orphans))
	return res
}

// Reconcile runs a reconciliation with default settings.
func Reconcile(txs []txn.Transaction) *Result {
	return New().Reconcile(txs)
}
