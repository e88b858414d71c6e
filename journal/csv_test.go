package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/tradechain/txn"
	"github.com/stretchr/testify/assert"
)

const sampleCSV = `id,account,symbol,underlying,instrument,option_type,strike,expiration,quantity,price,action,description,sub_type,order_id,executed_at
t1,5WX12345,IBIT  250117C00047000,IBIT,EQUITY_OPTION,CALL,47,2025-01-17,2,1.50,SELL_TO_OPEN,Sold 2 IBIT calls,Trade,O1,2025-01-02T10:00:00Z
t2,5WX12345,IBIT  250117C00047000,IBIT,EQUITY_OPTION,CALL,47,2025-01-17,2,0.50,BUY_TO_CLOSE,Bought 2 IBIT calls,Trade,O2,2025-01-07T10:00:00Z
t3,5WX12345,IBIT,,EQUITY,,,,100,47.25,BUY,Bought 100 IBIT,Trade,O3,2025-01-08T10:00:00Z
`

func TestImportCSV(t *testing.T) {
	t.Parallel()

	txs, err := ImportCSV(strings.NewReader(sampleCSV))
	assert.NoError(t, err)
	assert.Len(t, txs, 3)

	opt := txs[0]
	assert.Equal(t, "t1", opt.ID)
	assert.Equal(t, "5WX12345", opt.Account)
	assert.Equal(t, txn.Option, opt.Instrument)
	assert.Equal(t, txn.Call, opt.OptionType)
	assert.InDelta(t, 47, opt.Strike, 1e-9)
	assert.True(t, opt.Expiration.Equal(time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 2, opt.Quantity, 1e-9)
	assert.InDelta(t, 1.50, opt.Price, 1e-9)
	assert.Equal(t, "SELL_TO_OPEN", opt.Action)
	assert.Equal(t, "O1", opt.OrderID)
	assert.True(t, opt.ExecutedAt.Equal(time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)))

	// Equity rows leave option fields zeroed.
	eq := txs[2]
	assert.Equal(t, txn.Equity, eq.Instrument)
	assert.Empty(t, string(eq.OptionType))
	assert.InDelta(t, 0, eq.Strike, 1e-9)
	assert.True(t, eq.Expiration.IsZero())
}

func TestImportCSVColumnOrderIndependent(t *testing.T) {
	t.Parallel()

	reordered := `executed_at,action,price,quantity,instrument,symbol,account,id
2025-01-02T10:00:00Z,BUY,47.25,100,EQUITY,IBIT,5WX12345,t1
`
	txs, err := ImportCSV(strings.NewReader(reordered))
	assert.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, "t1", txs[0].ID)
	assert.Equal(t, "IBIT", txs[0].Symbol)
	assert.InDelta(t, 100, txs[0].Quantity, 1e-9)
}

func TestImportCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{
			name: "missing_required_column",
			data: "id,account,symbol\nt1,A,IBIT\n",
		},
		{
			name: "bad_timestamp",
			data: "id,account,symbol,instrument,quantity,price,action,executed_at\nt1,A,IBIT,EQUITY,1,1,BUY,notatime\n",
		},
		{
			name: "bad_quantity",
			data: "id,account,symbol,instrument,quantity,price,action,executed_at\nt1,A,IBIT,EQUITY,x,1,BUY,2025-01-02T10:00:00Z\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ImportCSV(strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestImportCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "txs.csv")
	assert.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	txs, err := ImportCSVFile(path)
	assert.NoError(t, err)
	assert.Len(t, txs, 3)

	_, err = ImportCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
