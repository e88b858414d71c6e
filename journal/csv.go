package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/tradechain/txn"
)

// ImportCSV parses a broker transaction export. The first row must be a
// header naming the columns, in any order; optional columns (underlying,
// option_type, strike, expiration, description, sub_type, order_id) may be
// empty or absent.
func ImportCSV(r io.Reader) ([]txn.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"id", "account", "symbol", "instrument", "quantity", "price", "action", "executed_at"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var txs []txn.Transaction
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++

		t := txn.Transaction{
			ID:          field(rec, "id"),
			Account:     field(rec, "account"),
			Symbol:      field(rec, "symbol"),
			Underlying:  field(rec, "underlying"),
			Instrument:  txn.Instrument(field(rec, "instrument")),
			OptionType:  txn.OptionType(field(rec, "option_type")),
			Action:      field(rec, "action"),
			Description: field(rec, "description"),
			SubType:     field(rec, "sub_type"),
			OrderID:     field(rec, "order_id"),
		}

		if t.Strike, err = parseFloat(field(rec, "strike")); err != nil {
			return nil, fmt.Errorf("line %d: strike: %w", line, err)
		}
		if t.Quantity, err = parseFloat(field(rec, "quantity")); err != nil {
			return nil, fmt.Errorf("line %d: quantity: %w", line, err)
		}
		if t.Price, err = parseFloat(field(rec, "price")); err != nil {
			return nil, fmt.Errorf("line %d: price: %w", line, err)
		}
		if t.Expiration, err = parseExpiration(field(rec, "expiration")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if t.ExecutedAt, err = time.Parse(time.RFC3339, field(rec, "executed_at")); err != nil {
			return nil, fmt.Errorf("line %d: executed_at: %w", line, err)
		}

		txs = append(txs, t)
	}
	return txs, nil
}

// ImportCSVFile reads a transaction export from disk.
func ImportCSVFile(path string) ([]txn.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	txs, err := ImportCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
