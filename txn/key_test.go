package txn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveKey(t *testing.T) {
	t.Parallel()

	exp := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		tx       Transaction
		expected Key
	}{
		{
			name:     "equity",
			tx:       Transaction{Symbol: "IBIT", Instrument: Equity},
			expected: Key{Symbol: "IBIT"},
		},
		{
			name: "option_with_attributes",
			tx: Transaction{
				Symbol:     "IBIT  250117C00047000",
				Underlying: "IBIT",
				Instrument: Option,
				OptionType: Call,
				Strike:     47,
				Expiration: exp,
			},
			expected: Key{Symbol: "IBIT", OptionType: Call, Strike: 47, Expiration: "2025-01-17"},
		},
		{
			name: "option_from_occ_symbol",
			tx: Transaction{
				Symbol:     "IBIT  250117P00061000",
				Instrument: Option,
			},
			expected: Key{Symbol: "IBIT", OptionType: Put, Strike: 61, Expiration: "2025-01-17"},
		},
		{
			name: "malformed_option_degrades_to_raw_symbol",
			tx: Transaction{
				Symbol:     "BROKEN",
				Instrument: Option,
			},
			expected: Key{Symbol: "BROKEN"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ResolveKey(tt.tx))
		})
	}
}

// Contracts differing only in strike or expiration must resolve to distinct
// keys, or a roll's close would match the wrong position.
func TestKeySpecificity(t *testing.T) {
	t.Parallel()

	exp := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 2, 21, 0, 0, 0, 0, time.UTC)

	k47 := OptionKey("IBIT", Call, 47, exp)
	k61 := OptionKey("IBIT", Call, 61, exp)
	kLater := OptionKey("IBIT", Call, 47, later)
	kPut := OptionKey("IBIT", Put, 47, exp)

	assert.NotEqual(t, k47, k61)
	assert.NotEqual(t, k47, kLater)
	assert.NotEqual(t, k47, kPut)
	assert.NotEqual(t, k47, EquityKey("IBIT"))

	assert.Equal(t, k47, OptionKey("IBIT", Call, 47, exp))
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	exp := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "IBIT CALL 47 2025-01-17", OptionKey("IBIT", Call, 47, exp).String())
	assert.Equal(t, "XYZ PUT 12.5 2025-01-17", OptionKey("XYZ", Put, 12.5, exp).String())
	assert.Equal(t, "IBIT", EquityKey("IBIT").String())
}
