package txn

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OptionDetails are the attributes parsed from an OCC option symbol.
type OptionDetails struct {
	Underlying string
	Type       OptionType
	Strike     float64
	Expiration time.Time
}

// ParseOCC parses an OCC-format option symbol such as
// "IBIT  250117C00047000": root symbol, YYMMDD expiration, C/P flag and the
// strike in thousandths.
func ParseOCC(symbol string) (OptionDetails, error) {
	var d OptionDetails

	fields := strings.Fields(symbol)
	if len(fields) < 2 {
		return d, fmt.Errorf("option symbol %q: missing contract part", symbol)
	}
	d.Underlying = fields[0]

	contract := fields[1]
	if len(contract) < 8 {
		return d, fmt.Errorf("option symbol %q: contract part too short", symbol)
	}

	exp, err := time.Parse("20060102", "20"+contract[:6])
	if err != nil {
		return d, fmt.Errorf("option symbol %q: bad expiration: %w", symbol, err)
	}
	d.Expiration = exp

	switch contract[6] {
	case 'C':
		d.Type = Call
	case 'P':
		d.Type = Put
	default:
		return d, fmt.Errorf("option symbol %q: bad option type %q", symbol, contract[6])
	}

	strike, err := strconv.ParseFloat(contract[7:], 64)
	if err != nil {
		return d, fmt.Errorf("option symbol %q: bad strike: %w", symbol, err)
	}
	d.Strike = strike / 1000

	return d, nil
}
