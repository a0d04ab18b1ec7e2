package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/normalize"
)

// TransactionRow is the BigQuery schema for an imported transaction.
type TransactionRow struct {
	TransactionID string     `bigquery:"transaction_id"`
	AccountID     string     `bigquery:"account_id"`
	Date          civil.Date `bigquery:"transaction_date"`
	Description   string     `bigquery:"description"`
	Amount        *big.Rat   `bigquery:"amount"` // NUMERIC
	Direction     string     `bigquery:"direction"`
	Category      string     `bigquery:"category"`
	SourceParser  string     `bigquery:"source_parser"`
	RawMatch      string     `bigquery:"raw_match"`
	CreatedTS     time.Time  `bigquery:"created_ts"`
}

// BigQueryLedger is the concrete Ledger backed by a BigQuery table. It
// holds a shared client to avoid creating a new connection for each
// operation.
type BigQueryLedger struct {
	client  *bigquery.Client
	project string
	dataset string
	table   string
}

// NewBigQueryLedger creates a BigQueryLedger with a shared client.
func NewBigQueryLedger(ctx context.Context, project, dataset, table string) (*BigQueryLedger, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryLedger: creating client: %w", err)
	}
	return &BigQueryLedger{client: client, project: project, dataset: dataset, table: table}, nil
}

// Close closes the BigQuery client connection.
func (l *BigQueryLedger) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}

// Insert streams one transaction row into the table.
func (l *BigQueryLedger) Insert(ctx context.Context, tx domain.Transaction) error {
	amount, ok := new(big.Rat).SetString(normalize.FormatAmount(tx.Amount))
	if !ok {
		return fmt.Errorf("Insert: amount %q is not numeric", tx.Amount)
	}

	row := &TransactionRow{
		TransactionID: uuid.NewString(),
		AccountID:     domain.AccountFromContext(ctx),
		Date:          civil.DateOf(tx.Date),
		Description:   tx.Description,
		Amount:        amount,
		Direction:     string(tx.Direction),
		Category:      tx.Category,
		SourceParser:  tx.SourceParser,
		RawMatch:      tx.RawMatch,
		CreatedTS:     time.Now(),
	}

	inserter := l.client.DatasetInProject(l.project, l.dataset).Table(l.table).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("Insert: inserting row: %w", err)
	}
	return nil
}

// ExistingKeys queries the identity tuples of the account's stored
// transactions for duplicate flagging.
func (l *BigQueryLedger) ExistingKeys(ctx context.Context) (map[string]struct{}, error) {
	q := l.client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_date,
			t.description,
			t.amount,
			t.direction
		FROM %s.%s t
		WHERE t.account_id = @account_id
	`, l.dataset, l.table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: domain.AccountFromContext(ctx)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExistingKeys: query read: %w", err)
	}

	keys := make(map[string]struct{})
	for {
		var r struct {
			Date        civil.Date `bigquery:"transaction_date"`
			Description string     `bigquery:"description"`
			Amount      *big.Rat   `bigquery:"amount"`
			Direction   string     `bigquery:"direction"`
		}
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ExistingKeys: iter next: %w", err)
		}

		key := r.Date.String() + "|" + r.Amount.FloatString(2) + "|" + r.Direction + "|" + r.Description
		keys[key] = struct{}{}
	}
	return keys, nil
}

var _ Ledger = (*BigQueryLedger)(nil)
