package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
	"github.com/asharma-dev/statement-pipeline/internal/logger"
)

// State is the position of the parser chain.
type State int

const (
	StateNotStarted State = iota
	StateTryingGeneric
	StateTryingSpecialized
	StateTryingAIFallback
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateTryingGeneric:
		return "trying_generic"
	case StateTryingSpecialized:
		return "trying_specialized"
	case StateTryingAIFallback:
		return "trying_ai_fallback"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Next returns the state entered when the current stage comes up empty.
// Success from any trying state goes to StateSucceeded instead; the
// terminal states map to themselves.
func (s State) Next() State {
	switch s {
	case StateNotStarted:
		return StateTryingGeneric
	case StateTryingGeneric:
		return StateTryingSpecialized
	case StateTryingSpecialized:
		return StateTryingAIFallback
	case StateTryingAIFallback:
		return StateExhausted
	default:
		return s
	}
}

// StageOutcome records what happened at one chain stage, for logging
// and audit.
type StageOutcome struct {
	State  State  `json:"state"`
	Parser string `json:"parser,omitempty"`
	Count  int    `json:"count"`
	Skip   string `json:"skip,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Outcome is the chain's final result.
type Outcome struct {
	Transactions []domain.Transaction
	ParserUsed   string
	Degraded     bool
	Final        State
	Trace        []StageOutcome
}

// Chain runs the parser stages in order, advancing on an empty or
// recoverably failed stage and stopping at the first stage that yields
// transactions. An exhausted chain degrades to the fixed placeholder
// set instead of failing.
type Chain struct {
	generic  Parser
	registry *Registry
	ai       Parser // nil when the AI fallback is disabled
}

// NewChain wires the standard chain. Pass a nil ai parser to disable
// the fallback stage.
func NewChain(registry *Registry, ai Parser) *Chain {
	return &Chain{
		generic:  NewGenericParser(),
		registry: registry,
		ai:       ai,
	}
}

// Run executes the chain over one document.
func (c *Chain) Run(ctx context.Context, doc *intake.RawDocument) (*Outcome, error) {
	log := logger.FromContext(ctx)
	outcome := &Outcome{Final: StateNotStarted}

	for state := StateNotStarted.Next(); ; state = state.Next() {
		outcome.Final = state

		switch state {
		case StateTryingGeneric:
			if done, err := c.runStage(ctx, outcome, state, c.generic, doc); err != nil {
				return nil, err
			} else if done {
				return outcome, nil
			}

		case StateTryingSpecialized:
			layout, ok := c.registry.Detect(doc)
			if !ok {
				outcome.Trace = append(outcome.Trace, StageOutcome{State: state, Skip: "no matching bank signature"})
				continue
			}
			if done, err := c.runStage(ctx, outcome, state, layout, doc); err != nil {
				return nil, err
			} else if done {
				return outcome, nil
			}

		case StateTryingAIFallback:
			if c.ai == nil {
				outcome.Trace = append(outcome.Trace, StageOutcome{State: state, Skip: "ai fallback disabled"})
				continue
			}
			if done, err := c.runStage(ctx, outcome, state, c.ai, doc); err != nil {
				return nil, err
			} else if done {
				return outcome, nil
			}

		case StateExhausted:
			log.Warn().Str("file", doc.Filename).Msg("parser chain exhausted, degrading to placeholder result")
			outcome.Transactions = Placeholder(time.Now())
			outcome.ParserUsed = PlaceholderParserName
			outcome.Degraded = true
			outcome.Trace = append(outcome.Trace, StageOutcome{
				State:  state,
				Parser: PlaceholderParserName,
				Count:  len(outcome.Transactions),
			})
			return outcome, nil
		}
	}
}

// runStage executes one parser. done=true means the chain stops here
// with a success; a recoverable error or empty result records a trace
// entry and lets the chain advance.
func (c *Chain) runStage(ctx context.Context, outcome *Outcome, state State, p Parser, doc *intake.RawDocument) (bool, error) {
	log := logger.FromContext(ctx)

	txs, err := p.Parse(ctx, doc)
	entry := StageOutcome{State: state, Parser: p.Name(), Count: len(txs)}

	if err != nil {
		if !domain.Recoverable(err) {
			return false, fmt.Errorf("parser chain: stage %s: %w", state, err)
		}
		entry.Err = err.Error()
		log.Warn().Str("parser", p.Name()).Err(err).Msg("parser stage failed, escalating")
		txs = nil
	}
	outcome.Trace = append(outcome.Trace, entry)

	if len(txs) == 0 {
		return false, nil
	}

	outcome.Transactions = txs
	outcome.ParserUsed = p.Name()
	outcome.Final = StateSucceeded
	outcome.Trace = append(outcome.Trace, StageOutcome{State: StateSucceeded, Parser: p.Name(), Count: len(txs)})
	log.Info().Str("parser", p.Name()).Int("transactions", len(txs)).Msg("parser stage succeeded")
	return true, nil
}
