// Package pipeline sequences the ingestion stages for one statement
// document: intake, parser chain, normalization, categorization,
// validation, duplicate flagging and summarization.
package pipeline

import (
	"context"
	"fmt"

	"github.com/asharma-dev/statement-pipeline/internal/categorize"
	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
	"github.com/asharma-dev/statement-pipeline/internal/ledger"
	"github.com/asharma-dev/statement-pipeline/internal/logger"
	"github.com/asharma-dev/statement-pipeline/internal/parser"
)

// Step is a single stage of the ingestion pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across all pipeline steps. A fresh State
// is built per document; steps share nothing else, so concurrent
// documents run on independent pipeline invocations.
type State struct {
	Filename string
	Data     []byte

	Document       *intake.RawDocument
	ChainOutcome   *parser.Outcome
	Transactions   []domain.Transaction
	Rejected       []domain.RejectedTransaction
	DuplicateCount int

	Result *domain.ParseResult
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// New creates a pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
	}
	return nil
}

// NewStatementPipeline assembles the standard stage sequence. led may
// be nil, in which case duplicate flagging is skipped.
func NewStatementPipeline(maxUploadBytes int64, chain *parser.Chain, cat *categorize.Categorizer, led ledger.Ledger) *Pipeline {
	return New(
		&DetectStep{MaxSize: maxUploadBytes},
		&ParseStep{Chain: chain},
		&NormalizeStep{},
		&CategorizeStep{Categorizer: cat},
		&ValidateStep{},
		&DedupeStep{Ledger: led},
		&SummarizeStep{},
	)
}

// Run is a convenience wrapper: build state, execute, return the
// result.
func (p *Pipeline) Run(ctx context.Context, filename string, data []byte) (*domain.ParseResult, error) {
	state := &State{Filename: filename, Data: data}
	if err := p.Execute(ctx, state); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("file", filename).
		Str("parser", state.Result.ParserUsed).
		Bool("degraded", state.Result.Degraded).
		Int("transactions", len(state.Result.Transactions)).
		Int("rejected", len(state.Result.Rejected)).
		Int("duplicates", state.DuplicateCount).
		Msg("statement parsed")
	return state.Result, nil
}
