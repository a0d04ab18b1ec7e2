// Package normalize canonicalizes extracted transaction fields: dates to
// ISO-8601 and amounts to positive two-decimal values. Normalization is
// idempotent; applying it to already-canonical data changes nothing.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// ISO is the canonical date layout.
const ISO = "2006-01-02"

// dateLayouts is the ordered list of accepted statement date formats.
// Day-first layouts come before ISO because Indian bank exports are
// day-first; two-digit-year variants are last.
var dateLayouts = []string{
	ISO,
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"02/01/06",
	"02-01-06",
	"2 Jan 06",
}

// ParseDate resolves a raw statement date against the ordered layout
// list.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse date: empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: no layout matched", raw)
}

// ParseAmount strips currency markers (₹, Rs., INR), thousands commas
// and surrounding signs, then parses the remainder as a decimal. The
// result is always non-negative; direction is tracked separately.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	for _, prefix := range []string{"₹", "Rs.", "Rs", "INR"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "-")
	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d.Abs().Round(2), nil
}

// FormatAmount renders an amount in the canonical two-decimal form.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Apply canonicalizes one transaction in place and returns it. Fields a
// parser already resolved are kept; unparseable raw fields are left for
// the validator to flag rather than failing the batch here.
func Apply(tx domain.Transaction) domain.Transaction {
	if tx.Date.IsZero() && tx.RawDate != "" {
		if t, err := ParseDate(tx.RawDate); err == nil {
			tx.Date = t
		}
	}
	if !tx.Date.IsZero() {
		tx.DateISO = tx.Date.Format(ISO)
	}

	if tx.Amount.IsZero() && tx.RawAmount != "" {
		if d, err := ParseAmount(tx.RawAmount); err == nil {
			tx.Amount = d
		}
	}
	tx.Amount = tx.Amount.Abs().Round(2)

	tx.Description = strings.Join(strings.Fields(tx.Description), " ")
	return tx
}

// Batch applies Apply to every transaction.
func Batch(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = Apply(tx)
	}
	return out
}
