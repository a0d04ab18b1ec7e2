// Package parser turns raw statement documents into transactions. A
// chain of parsers is tried in a fixed order: generic pattern matching,
// bank-specific layouts selected by signature, then the AI fallback.
package parser

import (
	"context"
	"strings"
	"sync"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
)

// Parser extracts transactions from a raw document. Returning zero
// transactions with a nil error means the parser found nothing it
// recognizes; the chain moves on.
type Parser interface {
	Name() string
	Parse(ctx context.Context, doc *intake.RawDocument) ([]domain.Transaction, error)
}

// LayoutParser is a bank-specific parser that can recognize its own
// statement layout from the document text.
type LayoutParser interface {
	Parser
	Match(doc *intake.RawDocument) bool
}

// Registry holds the known bank layouts. Registration happens at
// startup; lookups are concurrent-safe afterwards.
type Registry struct {
	mu      sync.RWMutex
	layouts []LayoutParser
}

// NewRegistry builds a registry preloaded with the shipped layouts.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewIndianBankParser())
	return r
}

// Register adds a layout parser. Later registrations are consulted
// after earlier ones.
func (r *Registry) Register(p LayoutParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts = append(r.layouts, p)
}

// Detect returns the first layout whose signature matches the document.
func (r *Registry) Detect(doc *intake.RawDocument) (LayoutParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.layouts {
		if p.Match(doc) {
			return p, true
		}
	}
	return nil, false
}

// containsAll reports whether text contains every signature keyword,
// case-insensitively.
func containsAll(text string, keywords ...string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}
