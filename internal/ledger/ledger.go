// Package ledger is the external transaction store the pipeline
// deduplicates against and imports into.
package ledger

import (
	"context"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/logger"
	"github.com/asharma-dev/statement-pipeline/internal/validate"
)

// Ledger abstracts the store. Implementations scope every call to the
// account carried in the context (domain.WithAccount).
type Ledger interface {
	// ExistingKeys returns the identity tuples of the account's stored
	// transactions, keyed by domain.Transaction.DedupKey.
	ExistingKeys(ctx context.Context) (map[string]struct{}, error)

	// Insert stores a single transaction.
	Insert(ctx context.Context, tx domain.Transaction) error

	// Close releases underlying resources.
	Close() error
}

// ImportError locates one failure inside an import batch.
type ImportError struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportResult summarizes an import batch.
type ImportResult struct {
	Imported      int           `json:"imported"`
	TotalReceived int           `json:"totalReceived"`
	ErrorCount    int           `json:"errorCount"`
	Errors        []ImportError `json:"errors"`
}

// ImportBatch validates and commits transactions one at a time. A bad
// record is reported with its batch index and skipped; it never rolls
// back or aborts the rest of the batch.
func ImportBatch(ctx context.Context, l Ledger, txs []domain.Transaction) ImportResult {
	log := logger.FromContext(ctx)
	result := ImportResult{TotalReceived: len(txs), Errors: []ImportError{}}

	for i, tx := range txs {
		if fieldErrs := validate.Check(tx); len(fieldErrs) > 0 {
			for _, fe := range fieldErrs {
				result.Errors = append(result.Errors, ImportError{Index: i, Field: fe.Field, Message: fe.Message})
			}
			result.ErrorCount++
			continue
		}

		if err := l.Insert(ctx, tx); err != nil {
			log.Error().Err(err).Int("index", i).Msg("ledger insert failed")
			result.Errors = append(result.Errors, ImportError{Index: i, Message: err.Error()})
			result.ErrorCount++
			continue
		}
		result.Imported++
	}

	log.Info().
		Int("imported", result.Imported).
		Int("received", result.TotalReceived).
		Int("errors", result.ErrorCount).
		Msg("import batch finished")
	return result
}
