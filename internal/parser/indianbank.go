package parser

import (
	"context"
	"regexp"
	"strings"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
)

// IndianBankParser handles the Indian Bank statement layout: an
// "ACCOUNT ACTIVITY" section with "DD Mon YYYY" dates and INR amounts
// laid out in Debit / Credit / Balance column order.
type IndianBankParser struct{}

func NewIndianBankParser() *IndianBankParser { return &IndianBankParser{} }

func (p *IndianBankParser) Name() string { return "indian_bank" }

// Match recognizes the layout by its section heading.
func (p *IndianBankParser) Match(doc *intake.RawDocument) bool {
	return containsAll(doc.Text(), "account activity")
}

var (
	ibDatePattern   = regexp.MustCompile(`\b(\d{1,2} [A-Za-z]{3} \d{4})\b`)
	ibAmountPattern = regexp.MustCompile(`([-+])?\s*INR\s*([0-9][0-9,]*\.[0-9]{2})`)
)

func (p *IndianBankParser) Parse(ctx context.Context, doc *intake.RawDocument) ([]domain.Transaction, error) {
	lines := activitySection(doc.Lines)
	var txs []domain.Transaction

	for _, line := range lines {
		dateMatch := ibDatePattern.FindStringSubmatch(line)
		if dateMatch == nil {
			continue
		}
		amounts := ibAmountPattern.FindAllStringSubmatch(line, -1)

		tx := domain.Transaction{
			RawDate:      dateMatch[1],
			Description:  ibDescription(line, dateMatch[1]),
			RawMatch:     line,
			SourceParser: p.Name(),
		}

		switch len(amounts) {
		case 3:
			// Debit / Credit / Balance columns; the non-zero side of
			// the first two decides the direction.
			debit, credit := amounts[0][2], amounts[1][2]
			if !zeroAmount(debit) {
				tx.RawAmount = debit
				tx.Direction = domain.DirectionDebit
			} else if !zeroAmount(credit) {
				tx.RawAmount = credit
				tx.Direction = domain.DirectionCredit
			} else {
				continue
			}
		case 2:
			// Transaction amount followed by the running balance.
			tx.RawAmount = amounts[0][2]
			switch amounts[0][1] {
			case "-":
				tx.Direction = domain.DirectionDebit
			case "+":
				tx.Direction = domain.DirectionCredit
			default:
				tx.Direction = DetectDirection(line)
			}
		default:
			// One amount is a balance-only line; none is a narration
			// continuation. Neither is a transaction.
			continue
		}

		txs = append(txs, tx)
	}
	return txs, nil
}

// activitySection returns the lines following the "ACCOUNT ACTIVITY"
// heading, or nothing when the section is absent so the chain falls
// through.
func activitySection(lines []string) []string {
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), "account activity") {
			return lines[i+1:]
		}
	}
	return nil
}

func ibDescription(line, rawDate string) string {
	s := strings.Replace(line, rawDate, "", 1)
	s = ibAmountPattern.ReplaceAllString(s, "")
	s = strings.Trim(s, " -|,\t")
	return strings.Join(strings.Fields(s), " ")
}
