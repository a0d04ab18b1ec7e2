package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"15/07/2025", "2025-07-15"},
		{"15-07-2025", "2025-07-15"},
		{"2025-07-15", "2025-07-15"},
		{"15 Jul 2025", "2025-07-15"},
		{"2 Jul 2025", "2025-07-02"},
		{"15-Jul-2025", "2025-07-15"},
		{"15/07/25", "2025-07-15"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(ISO))
		})
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not a date", "99/99/9999"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1,23,456.78", "123456.78"},
		{"₹1,234.56", "1234.56"},
		{"Rs. 450.00", "450.00"},
		{"INR 75,000.00", "75000.00"},
		{"-450.00", "450.00"},
		{"450.00-", "450.00"},
		{"+75000.00", "75000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(got))
		})
	}
}

// Formatting then re-parsing an amount must agree within 0.01.
func TestAmountRoundTrip(t *testing.T) {
	tolerance := decimal.NewFromFloat(0.01)
	for _, raw := range []string{"0.01", "450.00", "1,23,456.78", "₹99,999.99"} {
		first, err := ParseAmount(raw)
		require.NoError(t, err)

		second, err := ParseAmount(FormatAmount(first))
		require.NoError(t, err)

		diff := first.Sub(second).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance), "raw=%q diff=%s", raw, diff)
	}
}

func TestApplyFillsFromRawFields(t *testing.T) {
	tx := domain.Transaction{
		RawDate:     "05/07/2025",
		RawAmount:   "INR 1,800.00",
		Description: "  ELECTRICITY   BILL  PAYMENT ",
		Direction:   domain.DirectionDebit,
	}

	got := Apply(tx)
	assert.Equal(t, "2025-07-05", got.DateISO)
	assert.Equal(t, "1800.00", FormatAmount(got.Amount))
	assert.Equal(t, "ELECTRICITY BILL PAYMENT", got.Description)
}

func TestApplyIdempotent(t *testing.T) {
	tx := domain.Transaction{
		RawDate:     "15 Jul 2025",
		RawAmount:   "₹450.00",
		Description: "UPI-SWIGGY-FOOD ORDER",
		Direction:   domain.DirectionDebit,
	}

	once := Apply(tx)
	twice := Apply(once)

	assert.Equal(t, once.DateISO, twice.DateISO)
	assert.True(t, once.Date.Equal(twice.Date))
	assert.True(t, once.Amount.Equal(twice.Amount))
	assert.Equal(t, once.Description, twice.Description)
}

func TestApplyLeavesUnparseableForValidator(t *testing.T) {
	tx := Apply(domain.Transaction{RawDate: "someday", RawAmount: "many", Description: "X"})
	assert.True(t, tx.Date.IsZero())
	assert.Empty(t, tx.DateISO)
	assert.True(t, tx.Amount.IsZero())
}
