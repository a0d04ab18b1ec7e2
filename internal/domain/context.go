package domain

import "context"

type contextKey string

const accountKey contextKey = "account"

// WithAccount returns a context carrying the account identity every
// pipeline stage and ledger call operates under.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountKey, accountID)
}

// AccountFromContext retrieves the account identity, or "" if absent.
func AccountFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(accountKey).(string); ok {
		return id
	}
	return ""
}
