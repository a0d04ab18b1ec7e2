package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money moved into or out of the account.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Transaction is a single statement line after extraction.
// Raw* fields preserve the text the values were extracted from; the
// normalizer fills Date/DateISO/Amount from them when a parser could not.
type Transaction struct {
	Date        time.Time       `json:"-"`
	DateISO     string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"type"`
	Category    string          `json:"category,omitempty"`

	RawDate   string `json:"-"`
	RawAmount string `json:"-"`
	RawMatch  string `json:"-"`

	SourceParser string `json:"source_parser,omitempty"`

	// DuplicateCandidate is set when an identical transaction already
	// exists in the ledger. Flagged only; never dropped.
	DuplicateCandidate bool `json:"duplicate_candidate,omitempty"`
}

// DedupKey is the identity tuple used for duplicate detection.
func (t Transaction) DedupKey() string {
	return t.DateISO + "|" + t.Amount.StringFixed(2) + "|" + string(t.Direction) + "|" + t.Description
}

// FieldError describes a single invalid field on a transaction.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RejectedTransaction pairs a transaction with the reasons it was rejected.
type RejectedTransaction struct {
	Transaction Transaction  `json:"transaction"`
	FieldErrors []FieldError `json:"field_errors"`
}

// ValidationOutcome splits a batch into accepted and rejected transactions.
// A rejected transaction never causes the rest of the batch to be discarded.
type ValidationOutcome struct {
	Accepted []Transaction
	Rejected []RejectedTransaction
}

// DateRange is the inclusive ISO date span covered by a parse result.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary aggregates a parsed statement.
type Summary struct {
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	NetBalance   decimal.Decimal `json:"net_balance"`
	DateRange    DateRange       `json:"date_range"`
}

// ParseResult is what the pipeline hands back to the caller.
// Degraded is set when every parser stage came up empty and the result
// holds the fixed placeholder set instead of real extracted data.
type ParseResult struct {
	Transactions []Transaction         `json:"transactions"`
	Rejected     []RejectedTransaction `json:"rejected,omitempty"`
	ParserUsed   string                `json:"parser_used"`
	Degraded     bool                  `json:"degraded"`
	Summary      Summary               `json:"summary"`
}
