package ledger

import (
	"context"
	"sync"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// MemoryLedger is an in-memory Ledger for tests, the CLI and
// deployments without BigQuery. Safe for concurrent use.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[string][]domain.Transaction
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{accounts: make(map[string][]domain.Transaction)}
}

func (m *MemoryLedger) ExistingKeys(ctx context.Context) (map[string]struct{}, error) {
	account := domain.AccountFromContext(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make(map[string]struct{})
	for _, tx := range m.accounts[account] {
		keys[tx.DedupKey()] = struct{}{}
	}
	return keys, nil
}

func (m *MemoryLedger) Insert(ctx context.Context, tx domain.Transaction) error {
	account := domain.AccountFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account] = append(m.accounts[account], tx)
	return nil
}

// Transactions returns a copy of the stored transactions for an
// account.
func (m *MemoryLedger) Transactions(accountID string) []domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Transaction, len(m.accounts[accountID]))
	copy(out, m.accounts[accountID])
	return out
}

func (m *MemoryLedger) Close() error { return nil }

var _ Ledger = (*MemoryLedger)(nil)
