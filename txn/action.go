package txn

import (
	"fmt"
	"strings"
)

// Action is the normalized classification of a raw transaction. It is a
// closed set: every consumer switches over it exhaustively instead of
// re-matching broker label strings.
type Action int

const (
	Unknown Action = iota
	BuyToOpen
	SellToOpen
	BuyToClose
	SellToClose
	Expired
	Assigned
	Exercised
	CashSettled
	Buy
	Sell
)

var actionNames = map[Action]string{
	Unknown:     "UNKNOWN",
	BuyToOpen:   "BUY_TO_OPEN",
	SellToOpen:  "SELL_TO_OPEN",
	BuyToClose:  "BUY_TO_CLOSE",
	SellToClose: "SELL_TO_CLOSE",
	Expired:     "EXPIRED",
	Assigned:    "ASSIGNED",
	Exercised:   "EXERCISED",
	CashSettled: "CASH_SETTLED",
	Buy:         "BUY",
	Sell:        "SELL",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseAction maps a stored action name back to its Action value.
func ParseAction(s string) Action {
	for a, name := range actionNames {
		if name == s {
			return a
		}
	}
	return Unknown
}

// IsSystemEvent reports whether the action is a broker-initiated position
// change (no trade order behind it).
func (a Action) IsSystemEvent() bool {
	switch a {
	case Expired, Assigned, Exercised, CashSettled:
		return true
	}
	return false
}

// IsOpening reports whether the action establishes a position.
func (a Action) IsOpening() bool {
	switch a {
	case BuyToOpen, SellToOpen, Buy:
		return true
	}
	return false
}

// IsClosing reports whether the action reduces or removes a position.
// System events always close.
func (a Action) IsClosing() bool {
	switch a {
	case BuyToClose, SellToClose, Sell:
		return true
	}
	return a.IsSystemEvent()
}

// eventName is the token used in synthesized order ids.
func (a Action) eventName() string {
	switch a {
	case Expired:
		return "EXPIRATION"
	case Assigned:
		return "ASSIGNMENT"
	case Exercised:
		return "EXERCISE"
	case CashSettled:
		return "CASH_SETTLEMENT"
	}
	return "UNKNOWN"
}

// SyntheticOrderID builds the order id for a system event that arrived with
// no broker order id, so it can be assembled into its own order.
func SyntheticOrderID(a Action, txID string) string {
	return fmt.Sprintf("SYSTEM_%s_%s", a.eventName(), txID)
}

// Normalize classifies a raw transaction into one Action. System events are
// detected from the description and sub-type first, so they win over whatever
// the broker put in the action label. The label itself is matched by
// substring because brokers decorate it inconsistently.
func Normalize(t Transaction) Action {
	text := strings.ToUpper(t.Description + " " + t.SubType)

	switch {
	// Cash settlement first: its sub-types mention assignment or exercise too.
	case strings.Contains(text, "CASH SETTL") || strings.Contains(text, "CASH_SETTL"):
		return CashSettled
	case strings.Contains(text, "EXPIRATION") || strings.Contains(text, "EXPIRED"):
		return Expired
	case strings.Contains(text, "ASSIGNMENT") || strings.Contains(text, "ASSIGNED"):
		return Assigned
	case strings.Contains(text, "EXERCISE"):
		return Exercised
	}

	label := strings.ToUpper(t.Action)
	switch {
	case strings.Contains(label, "BUY_TO_OPEN") || strings.Contains(label, "BTO"):
		return BuyToOpen
	case strings.Contains(label, "SELL_TO_OPEN") || strings.Contains(label, "STO"):
		return SellToOpen
	case strings.Contains(label, "BUY_TO_CLOSE") || strings.Contains(label, "BTC"):
		return BuyToClose
	case strings.Contains(label, "SELL_TO_CLOSE") || strings.Contains(label, "STC"):
		return SellToClose
	case strings.Contains(label, "BUY"):
		return Buy
	case strings.Contains(label, "SELL"):
		return Sell
	}
	return Unknown
}
