package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

func validTx(desc string) domain.Transaction {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	return domain.Transaction{
		Date:        date,
		DateISO:     "2025-07-01",
		Description: desc,
		Amount:      decimal.NewFromInt(100),
		Direction:   domain.DirectionDebit,
		Category:    "others",
	}
}

func fields(errs []domain.FieldError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*domain.Transaction)
		wantFields []string
	}{
		{
			name:   "valid",
			mutate: func(tx *domain.Transaction) {},
		},
		{
			name:       "missing date",
			mutate:     func(tx *domain.Transaction) { tx.Date = time.Time{}; tx.DateISO = "" },
			wantFields: []string{"date"},
		},
		{
			name:       "empty description",
			mutate:     func(tx *domain.Transaction) { tx.Description = "" },
			wantFields: []string{"description"},
		},
		{
			name:       "zero amount",
			mutate:     func(tx *domain.Transaction) { tx.Amount = decimal.Zero },
			wantFields: []string{"amount"},
		},
		{
			name:       "bad direction",
			mutate:     func(tx *domain.Transaction) { tx.Direction = "sideways" },
			wantFields: []string{"type"},
		},
		{
			name:       "unknown category",
			mutate:     func(tx *domain.Transaction) { tx.Category = "gambling" },
			wantFields: []string{"category"},
		},
		{
			name: "several at once",
			mutate: func(tx *domain.Transaction) {
				tx.Amount = decimal.Zero
				tx.Description = ""
			},
			wantFields: []string{"description", "amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx("SOMETHING")
			tt.mutate(&tx)
			errs := Check(tx)
			assert.ElementsMatch(t, tt.wantFields, fields(errs))
		})
	}
}

func TestTransactionsIsolation(t *testing.T) {
	bad := validTx("NO AMOUNT")
	bad.Amount = decimal.Zero

	outcome := Transactions([]domain.Transaction{
		validTx("FIRST"),
		bad,
		validTx("THIRD"),
	})

	require.Len(t, outcome.Accepted, 2)
	require.Len(t, outcome.Rejected, 1)
	assert.Equal(t, "NO AMOUNT", outcome.Rejected[0].Transaction.Description)
	assert.Equal(t, "amount", outcome.Rejected[0].FieldErrors[0].Field)
}

func TestFlagDuplicates(t *testing.T) {
	known := validTx("KNOWN")
	fresh := validTx("FRESH")

	existing := map[string]struct{}{known.DedupKey(): {}}

	txs := []domain.Transaction{known, fresh}
	flagged := FlagDuplicates(txs, existing)

	assert.Equal(t, 1, flagged)
	assert.True(t, txs[0].DuplicateCandidate)
	assert.False(t, txs[1].DuplicateCandidate)
	// Flagged, never dropped.
	assert.Len(t, txs, 2)
}
