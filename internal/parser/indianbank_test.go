package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

func TestIndianBankMatch(t *testing.T) {
	p := NewIndianBankParser()

	assert.True(t, p.Match(textDoc("INDIAN BANK", "ACCOUNT ACTIVITY", "...")))
	assert.True(t, p.Match(textDoc("Account Activity for July")))
	assert.False(t, p.Match(textDoc("SOME OTHER BANK", "TRANSACTION HISTORY")))
}

func TestIndianBankParseThreeAmountRows(t *testing.T) {
	doc := textDoc(
		"INDIAN BANK STATEMENT",
		"ACCOUNT ACTIVITY",
		"01 Jul 2025 SALARY CREDIT INR 0.00 INR 75,000.00 INR 95,000.00",
		"05 Jul 2025 ELECTRICITY BILL PAYMENT INR 1,800.00 INR 0.00 INR 93,200.00",
	)

	txs, err := NewIndianBankParser().Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, domain.DirectionCredit, txs[0].Direction)
	assert.Equal(t, "75,000.00", txs[0].RawAmount)
	assert.Equal(t, "01 Jul 2025", txs[0].RawDate)
	assert.Equal(t, "SALARY CREDIT", txs[0].Description)
	assert.Equal(t, "indian_bank", txs[0].SourceParser)

	assert.Equal(t, domain.DirectionDebit, txs[1].Direction)
	assert.Equal(t, "1,800.00", txs[1].RawAmount)
}

func TestIndianBankParseTwoAmountRows(t *testing.T) {
	doc := textDoc(
		"ACCOUNT ACTIVITY",
		"02 Jul 2025 UPI-SWIGGY-FOOD ORDER -INR 450.00 INR 94,550.00",
		"03 Jul 2025 NEFT REFUND +INR 900.00 INR 95,450.00",
		"04 Jul 2025 MISC SALARY NARRATION INR 1,000.00 INR 96,450.00",
	)

	txs, err := NewIndianBankParser().Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, domain.DirectionDebit, txs[0].Direction)
	assert.Equal(t, "450.00", txs[0].RawAmount)
	assert.Equal(t, domain.DirectionCredit, txs[1].Direction)
	// No sign marker: the keyword lexicon decides.
	assert.Equal(t, domain.DirectionCredit, txs[2].Direction)
	assert.Equal(t, "1,000.00", txs[2].RawAmount)
}

func TestIndianBankSkipsBalanceOnlyRows(t *testing.T) {
	doc := textDoc(
		"ACCOUNT ACTIVITY",
		"01 Jul 2025 OPENING BALANCE INR 95,000.00",
		"02 Jul 2025 ATM CASH WITHDRAWAL -INR 10,000.00 INR 85,000.00",
	)

	txs, err := NewIndianBankParser().Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "ATM CASH WITHDRAWAL", txs[0].Description)
}

func TestIndianBankWithoutSectionYieldsNothing(t *testing.T) {
	doc := textDoc(
		"INDIAN BANK STATEMENT",
		"01 Jul 2025 SALARY CREDIT INR 75,000.00 INR 95,000.00",
	)

	txs, err := NewIndianBankParser().Parse(context.Background(), doc)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

// On a signature-bearing statement the layout parser must extract at
// least as many transactions as the generic one.
func TestIndianBankBeatsGenericOnItsLayout(t *testing.T) {
	doc := textDoc(
		"INDIAN BANK",
		"ACCOUNT ACTIVITY",
		"01 Jul 2025 SALARY CREDIT INR 0.00 INR 75,000.00 INR 95,000.00",
		"02 Jul 2025 UPI-SWIGGY-FOOD ORDER -INR 450.00 INR 94,550.00",
		"03 Jul 2025 ELECTRICITY BILL PAYMENT INR 1,800.00 INR 0.00 INR 92,750.00",
	)

	ctx := context.Background()
	specialized, err := NewIndianBankParser().Parse(ctx, doc)
	require.NoError(t, err)
	generic, err := NewGenericParser().Parse(ctx, doc)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(specialized), len(generic))
	assert.Len(t, specialized, 3)
}
