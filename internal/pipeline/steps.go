package pipeline

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/asharma-dev/statement-pipeline/internal/categorize"
	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
	"github.com/asharma-dev/statement-pipeline/internal/ledger"
	"github.com/asharma-dev/statement-pipeline/internal/normalize"
	"github.com/asharma-dev/statement-pipeline/internal/parser"
	"github.com/asharma-dev/statement-pipeline/internal/validate"
)

// DetectStep runs intake: size gate, format detection, content
// extraction.
type DetectStep struct {
	MaxSize int64
}

func (s *DetectStep) Execute(ctx context.Context, state *State) error {
	doc, err := intake.Read(state.Filename, state.Data, s.MaxSize)
	if err != nil {
		return err
	}
	state.Document = doc
	return nil
}

// ParseStep runs the parser chain over the document.
type ParseStep struct {
	Chain *parser.Chain
}

func (s *ParseStep) Execute(ctx context.Context, state *State) error {
	outcome, err := s.Chain.Run(ctx, state.Document)
	if err != nil {
		return err
	}
	state.ChainOutcome = outcome
	state.Transactions = outcome.Transactions
	return nil
}

// NormalizeStep canonicalizes dates and amounts.
type NormalizeStep struct{}

func (s *NormalizeStep) Execute(ctx context.Context, state *State) error {
	state.Transactions = normalize.Batch(state.Transactions)
	return nil
}

// CategorizeStep assigns taxonomy categories.
type CategorizeStep struct {
	Categorizer *categorize.Categorizer
}

func (s *CategorizeStep) Execute(ctx context.Context, state *State) error {
	state.Transactions = s.Categorizer.Apply(state.Transactions)
	return nil
}

// ValidateStep splits the batch into accepted and rejected
// transactions.
type ValidateStep struct{}

func (s *ValidateStep) Execute(ctx context.Context, state *State) error {
	outcome := validate.Transactions(state.Transactions)
	state.Transactions = outcome.Accepted
	state.Rejected = outcome.Rejected
	return nil
}

// DedupeStep flags transactions already present in the ledger. A nil
// ledger (CLI without a store) skips the check.
type DedupeStep struct {
	Ledger ledger.Ledger
}

func (s *DedupeStep) Execute(ctx context.Context, state *State) error {
	if s.Ledger == nil || len(state.Transactions) == 0 {
		return nil
	}
	existing, err := s.Ledger.ExistingKeys(ctx)
	if err != nil {
		// Duplicate flagging is informational; a ledger read failure
		// must not fail the parse.
		return nil
	}
	state.DuplicateCount = validate.FlagDuplicates(state.Transactions, existing)
	return nil
}

// SummarizeStep computes totals and the date range and assembles the
// final ParseResult.
type SummarizeStep struct{}

func (s *SummarizeStep) Execute(ctx context.Context, state *State) error {
	result := &domain.ParseResult{
		Transactions: state.Transactions,
		Rejected:     state.Rejected,
		Summary:      Summarize(state.Transactions),
	}
	if state.ChainOutcome != nil {
		result.ParserUsed = state.ChainOutcome.ParserUsed
		result.Degraded = state.ChainOutcome.Degraded
	}
	state.Result = result
	return nil
}

// Summarize aggregates credits, debits, net balance (credits minus
// debits) and the inclusive ISO date range.
func Summarize(txs []domain.Transaction) domain.Summary {
	summary := domain.Summary{
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
		NetBalance:   decimal.Zero,
	}

	for _, tx := range txs {
		switch tx.Direction {
		case domain.DirectionCredit:
			summary.TotalCredits = summary.TotalCredits.Add(tx.Amount)
		case domain.DirectionDebit:
			summary.TotalDebits = summary.TotalDebits.Add(tx.Amount)
		}

		if tx.DateISO == "" {
			continue
		}
		if summary.DateRange.Start == "" || tx.DateISO < summary.DateRange.Start {
			summary.DateRange.Start = tx.DateISO
		}
		if summary.DateRange.End == "" || tx.DateISO > summary.DateRange.End {
			summary.DateRange.End = tx.DateISO
		}
	}

	summary.NetBalance = summary.TotalCredits.Sub(summary.TotalDebits)
	return summary
}
