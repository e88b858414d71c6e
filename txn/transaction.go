package txn

import "time"

// Instrument identifies what kind of contract a transaction traded.
type Instrument string

const (
	Equity Instrument = "EQUITY"
	Option Instrument = "EQUITY_OPTION"
)

// OptionType is the contract right for option instruments.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// Transaction is one immutable record from a broker's transaction feed.
// Option attributes (OptionType, Strike, Expiration) are parsed once at
// ingestion; downstream code never re-derives them from the symbol string.
type Transaction struct {
	ID          string
	Account     string
	Symbol      string
	Underlying  string
	Instrument  Instrument
	OptionType  OptionType // empty for equities
	Strike      float64    // zero for equities
	Expiration  time.Time  // zero for equities
	Quantity    float64
	Price       float64
	Action      string // raw broker action label, e.g. "BUY_TO_OPEN"
	Description string
	SubType     string
	OrderID     string // empty when the broker supplied no order id
	ExecutedAt  time.Time
}

// IsOption reports whether the transaction traded an option contract.
func (t Transaction) IsOption() bool {
	return t.Instrument == Option
}
