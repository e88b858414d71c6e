// journal/journal.go
package journal

import (
	"time"

	"github.com/rustyeddy/tradechain/assemble"
	"github.com/rustyeddy/tradechain/chain"
	"github.com/rustyeddy/tradechain/engine"
	"github.com/rustyeddy/tradechain/txn"
)

// RebuildRun is the audit record of one reconciliation pass committed for
// an account.
type RebuildRun struct {
	RunID        string
	Account      string
	Transactions int
	Orders       int
	Chains       int
	Orphans      int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Store persists the raw transaction log and the derived reconciliation
// state. Transactions are append-only; everything derived from them is
// replaced wholesale by ReplaceResult.
type Store interface {
	SaveTransactions(txs []txn.Transaction) (int, error)
	LoadTransactions(account string) ([]txn.Transaction, error)
	Accounts() ([]string, error)

	ReplaceResult(account string, res *engine.Result) (*RebuildRun, error)

	GetOrder(orderID string) (*assemble.Order, error)
	ListOrphanOrders(account string) ([]*assemble.Order, error)
	GetChain(chainID string) (*chain.Chain, error)
	ListChains(account string) ([]*chain.Chain, error)
	ListPositions(account string) ([]*assemble.Position, error)

	Close() error
}
