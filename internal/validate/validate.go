// Package validate performs per-transaction field validation and
// duplicate flagging. A failing transaction is rejected with named
// field errors; it never takes the rest of the batch down with it.
package validate

import (
	"github.com/asharma-dev/statement-pipeline/internal/categorize"
	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// Check returns the field errors for a single transaction, empty when
// it is valid.
func Check(tx domain.Transaction) []domain.FieldError {
	var errs []domain.FieldError

	if tx.Date.IsZero() || tx.DateISO == "" {
		errs = append(errs, domain.FieldError{Field: "date", Message: "missing or unparseable date"})
	}
	if tx.Description == "" {
		errs = append(errs, domain.FieldError{Field: "description", Message: "description is empty"})
	}
	if !tx.Amount.IsPositive() {
		errs = append(errs, domain.FieldError{Field: "amount", Message: "amount must be a positive value"})
	}
	if !tx.Direction.Valid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "direction must be credit or debit"})
	}
	if tx.Category != "" && !categorize.Known(tx.Category) {
		errs = append(errs, domain.FieldError{Field: "category", Message: "category is outside the taxonomy"})
	}
	return errs
}

// Transactions validates a batch, splitting it into accepted and
// rejected transactions.
func Transactions(txs []domain.Transaction) domain.ValidationOutcome {
	var outcome domain.ValidationOutcome
	for _, tx := range txs {
		if errs := Check(tx); len(errs) > 0 {
			outcome.Rejected = append(outcome.Rejected, domain.RejectedTransaction{
				Transaction: tx,
				FieldErrors: errs,
			})
			continue
		}
		outcome.Accepted = append(outcome.Accepted, tx)
	}
	return outcome
}

// FlagDuplicates marks transactions whose identity tuple already exists
// in the ledger. Matches are flagged, never dropped; the decision stays
// with the caller. Returns the number flagged.
func FlagDuplicates(txs []domain.Transaction, existing map[string]struct{}) int {
	flagged := 0
	for i := range txs {
		if _, ok := existing[txs[i].DedupKey()]; ok {
			txs[i].DuplicateCandidate = true
			flagged++
		}
	}
	return flagged
}
