package parser

import (
	"context"
	"regexp"
	"strings"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
	"github.com/asharma-dev/statement-pipeline/internal/normalize"
)

// GenericParser extracts transactions from free-form statement text by
// pattern matching, and from tabular documents through their inferred
// column roles. It knows nothing about any particular bank.
type GenericParser struct{}

func NewGenericParser() *GenericParser { return &GenericParser{} }

func (p *GenericParser) Name() string { return "generic" }

// Ordered date patterns: slash, dash, ISO, month name.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`),
	regexp.MustCompile(`\b(\d{2}-\d{2}-\d{4})\b`),
	regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
	regexp.MustCompile(`\b(\d{1,2} [A-Za-z]{3} \d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2}-[A-Za-z]{3}-\d{4})\b`),
}

// Ordered amount patterns: currency-marked amounts are preferred over
// bare decimals so running balances without markers lose to the
// transaction amount. Bare amounts may carry Indian pair grouping
// (1,23,456.78) or no separators at all (1200.00).
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:₹|Rs\.?|INR)\s*([0-9][0-9,]*\.[0-9]{2})`),
	regexp.MustCompile(`\b([0-9][0-9,]*\.[0-9]{2})\b`),
}

// Direction lexicons. Longer keywords are matched first so "upi cr"
// claims its text before the bare debit keyword "upi" can see it.
var (
	creditKeywords = []string{
		"interest credited", "neft cr", "imps cr", "rtgs cr", "upi cr",
		"cr txn", "credit", "deposit", "salary", "refund",
	}
	debitKeywords = []string{
		"neft dr", "imps dr", "rtgs dr", "dr txn", "withdrawal",
		"payment", "charges", "debit", "atm", "pos", "emi", "upi",
	}
)

// DetectDirection resolves credit vs debit from the description text.
// Credit keyword occurrences are consumed first; any debit keyword
// surviving outside them wins. Both hitting independently, or neither
// hitting, defaults to debit.
func DetectDirection(text string) domain.Direction {
	lower := strings.ToLower(text)

	creditHit := false
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			creditHit = true
			lower = strings.ReplaceAll(lower, kw, " ")
		}
	}
	for _, kw := range debitKeywords {
		if strings.Contains(lower, kw) {
			return domain.DirectionDebit
		}
	}
	if creditHit {
		return domain.DirectionCredit
	}
	return domain.DirectionDebit
}

func (p *GenericParser) Parse(ctx context.Context, doc *intake.RawDocument) ([]domain.Transaction, error) {
	if doc.Rows != nil && doc.Rows.Cols.Usable() {
		return p.parseTable(doc.Rows), nil
	}
	return p.parseLines(doc.Lines), nil
}

func (p *GenericParser) parseLines(lines []string) []domain.Transaction {
	var txs []domain.Transaction
	for _, line := range lines {
		rawDate := firstMatch(datePatterns, line)
		if rawDate == "" {
			continue
		}
		rawAmount := firstMatch(amountPatterns, line)
		if rawAmount == "" {
			continue
		}

		desc := descriptionFrom(line, rawDate)
		txs = append(txs, domain.Transaction{
			RawDate:      rawDate,
			RawAmount:    rawAmount,
			Description:  desc,
			Direction:    DetectDirection(line),
			RawMatch:     line,
			SourceParser: p.Name(),
		})
	}
	return txs
}

func (p *GenericParser) parseTable(table *intake.RowTable) []domain.Transaction {
	cols := table.Cols
	var txs []domain.Transaction
	for _, row := range table.Records {
		tx := domain.Transaction{
			RawDate:      intake.Cell(row, cols.Date),
			Description:  intake.Cell(row, cols.Description),
			RawMatch:     strings.Join(row, ","),
			SourceParser: p.Name(),
		}
		if tx.Description == "" {
			tx.Description = tx.RawMatch
		}

		debit := intake.Cell(row, cols.Debit)
		credit := intake.Cell(row, cols.Credit)
		amount := intake.Cell(row, cols.Amount)

		switch {
		case debit != "" && !zeroAmount(debit):
			tx.RawAmount = debit
			tx.Direction = domain.DirectionDebit
		case credit != "" && !zeroAmount(credit):
			tx.RawAmount = credit
			tx.Direction = domain.DirectionCredit
		case amount != "":
			tx.RawAmount = amount
			if strings.HasPrefix(amount, "-") {
				tx.Direction = domain.DirectionDebit
			} else if strings.HasPrefix(amount, "+") {
				tx.Direction = domain.DirectionCredit
			} else {
				tx.Direction = DetectDirection(tx.Description)
			}
		default:
			// No amount in this row; not a transaction.
			continue
		}

		txs = append(txs, tx)
	}
	return txs
}

// zeroAmount reports whether a cell parses to exactly zero, as in the
// empty side of a debit/credit column pair rendered as "0.00".
func zeroAmount(cell string) bool {
	d, err := normalize.ParseAmount(cell)
	return err == nil && d.IsZero()
}

func firstMatch(patterns []*regexp.Regexp, line string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// descriptionFrom strips the date and all amount tokens from the line,
// leaving the narration.
func descriptionFrom(line, rawDate string) string {
	s := strings.Replace(line, rawDate, "", 1)
	for _, re := range amountPatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = strings.Trim(s, " -|,\t")
	return strings.Join(strings.Fields(s), " ")
}
