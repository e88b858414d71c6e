package txn

import (
	"fmt"
	"log/slog"
	"time"
)

// Key identifies one tradable contract. Equities are keyed by the raw
// symbol; options by (underlying, type, strike, expiration). Two contracts
// that differ in strike or expiration always resolve to different keys,
// which is what lets a roll's closing leg find the position it closes.
//
// Key is comparable and safe to use as a map key.
type Key struct {
	Symbol     string
	OptionType OptionType // empty for equities
	Strike     float64
	Expiration string // YYYY-MM-DD, empty for equities
}

// String renders the key in the form persisted and displayed, e.g.
// "IBIT CALL 47 2025-01-17" or plain "IBIT" for equity.
func (k Key) String() string {
	if k.OptionType == "" {
		return k.Symbol
	}
	return fmt.Sprintf("%s %s %g %s", k.Symbol, k.OptionType, k.Strike, k.Expiration)
}

// EquityKey keys a stock position by its raw symbol.
func EquityKey(symbol string) Key {
	return Key{Symbol: symbol}
}

// OptionKey keys an option contract.
func OptionKey(underlying string, typ OptionType, strike float64, expiration time.Time) Key {
	return Key{
		Symbol:     underlying,
		OptionType: typ,
		Strike:     strike,
		Expiration: expiration.Format("2006-01-02"),
	}
}

// ResolveKey derives the position key for a transaction. Options use the
// parsed attributes when present and fall back to parsing the OCC symbol. A
// malformed option symbol degrades to the raw symbol string as the key, with
// a warning, rather than aborting the run.
func ResolveKey(t Transaction) Key {
	if !t.IsOption() {
		return EquityKey(t.Symbol)
	}

	if t.OptionType != "" && !t.Expiration.IsZero() {
		under := t.Underlying
		if under == "" {
			under = t.Symbol
		}
		return OptionKey(under, t.OptionType, t.Strike, t.Expiration)
	}

	d, err := ParseOCC(t.Symbol)
	if err != nil {
		slog.Warn("unparsable option symbol, keying by raw symbol",
			"symbol", t.Symbol, "txn", t.ID, "err", err)
		return EquityKey(t.Symbol)
	}
	return OptionKey(d.Underlying, d.Type, d.Strike, d.Expiration)
}
