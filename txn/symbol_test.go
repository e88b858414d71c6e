package txn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOCC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		symbol   string
		expected OptionDetails
	}{
		{
			name:   "call",
			symbol: "AAPL  241220C00150000",
			expected: OptionDetails{
				Underlying: "AAPL",
				Type:       Call,
				Strike:     150,
				Expiration: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:   "put",
			symbol: "IBIT  250117P00047000",
			expected: OptionDetails{
				Underlying: "IBIT",
				Type:       Put,
				Strike:     47,
				Expiration: time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:   "fractional_strike",
			symbol: "XYZ  250620C00012500",
			expected: OptionDetails{
				Underlying: "XYZ",
				Type:       Call,
				Strike:     12.5,
				Expiration: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := ParseOCC(tt.symbol)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected.Underlying, d.Underlying)
			assert.Equal(t, tt.expected.Type, d.Type)
			assert.InDelta(t, tt.expected.Strike, d.Strike, 1e-9)
			assert.True(t, d.Expiration.Equal(tt.expected.Expiration))
		})
	}
}

func TestParseOCCErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		symbol string
	}{
		{name: "no_contract_part", symbol: "AAPL"},
		{name: "contract_too_short", symbol: "AAPL  241220"},
		{name: "bad_type_flag", symbol: "AAPL  241220X00150000"},
		{name: "bad_expiration", symbol: "AAPL  24AB20C00150000"},
		{name: "bad_strike", symbol: "AAPL  241220C0015X000"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseOCC(tt.symbol)
			assert.Error(t, err)
		})
	}
}
