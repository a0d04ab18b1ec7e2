package parser

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// PlaceholderParserName marks degraded results. Callers must check
// ParseResult.Degraded before treating these transactions as real.
const PlaceholderParserName = "placeholder"

// Placeholder returns the fixed sample transaction set used when every
// parser stage came up empty. Dates are spread over the month before
// now so the result still summarizes sensibly.
func Placeholder(now time.Time) []domain.Transaction {
	day := func(offset int) time.Time {
		return now.AddDate(0, 0, -offset).Truncate(24 * time.Hour)
	}
	entries := []struct {
		offset      int
		description string
		amount      int64
		direction   domain.Direction
		category    string
	}{
		{28, "SALARY CREDIT", 75000, domain.DirectionCredit, "salary"},
		{21, "UPI-SWIGGY-FOOD ORDER", 450, domain.DirectionDebit, "food_dining"},
		{14, "ATM CASH WITHDRAWAL", 10000, domain.DirectionDebit, "cash_withdrawal"},
		{7, "NEFT-RENT PAYMENT", 25000, domain.DirectionDebit, "utilities"},
		{2, "ELECTRICITY BILL PAYMENT", 1800, domain.DirectionDebit, "utilities"},
	}

	txs := make([]domain.Transaction, 0, len(entries))
	for _, e := range entries {
		date := day(e.offset)
		txs = append(txs, domain.Transaction{
			Date:         date,
			DateISO:      date.Format("2006-01-02"),
			Description:  e.description,
			Amount:       decimal.NewFromInt(e.amount),
			Direction:    e.direction,
			Category:     e.category,
			SourceParser: PlaceholderParserName,
		})
	}
	return txs
}
