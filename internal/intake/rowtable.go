package intake

import "strings"

// RowTable is a header-bearing table extracted from a CSV or XLSX
// document, with column roles inferred from the header names.
type RowTable struct {
	Headers []string
	Records [][]string
	Cols    ColumnRoles
}

// ColumnRoles maps statement concepts to column indexes. -1 means the
// column is absent.
type ColumnRoles struct {
	Date        int
	Description int
	Debit       int
	Credit      int
	Amount      int
	Balance     int
}

var headerAliases = map[string][]string{
	"date":        {"date", "txn date", "transaction date", "value date", "posting date"},
	"description": {"description", "narration", "particulars", "details", "remarks", "transaction details"},
	"debit":       {"debit", "withdrawal", "withdrawals", "dr", "paid out", "money out"},
	"credit":      {"credit", "deposit", "deposits", "cr", "paid in", "money in"},
	"amount":      {"amount", "transaction amount", "value"},
	"balance":     {"balance", "closing balance", "running balance", "available balance"},
}

// InferColumns resolves column roles from header names. Matching is
// case-insensitive and checks aliases in declared order, so "txn date"
// wins over a later "value date" column. A column claimed by one role
// is excluded from later searches, so the "value" amount alias cannot
// substring-match a "Value Date" header already bound to Date.
func InferColumns(headers []string) ColumnRoles {
	roles := ColumnRoles{Date: -1, Description: -1, Debit: -1, Credit: -1, Amount: -1, Balance: -1}

	find := func(role string, claimed ...int) int {
		taken := func(i int) bool {
			for _, c := range claimed {
				if i == c {
					return true
				}
			}
			return false
		}
		for _, alias := range headerAliases[role] {
			for i, h := range headers {
				if !taken(i) && normalizeHeader(h) == alias {
					return i
				}
			}
		}
		// Second pass: substring match for decorated headers like
		// "Debit (INR)".
		for _, alias := range headerAliases[role] {
			for i, h := range headers {
				if !taken(i) && strings.Contains(normalizeHeader(h), alias) {
					return i
				}
			}
		}
		return -1
	}

	roles.Date = find("date")
	roles.Description = find("description", roles.Date)
	roles.Debit = find("debit", roles.Date, roles.Description)
	roles.Credit = find("credit", roles.Date, roles.Description, roles.Debit)
	roles.Balance = find("balance", roles.Date, roles.Description, roles.Debit, roles.Credit)
	roles.Amount = find("amount", roles.Date, roles.Description, roles.Debit, roles.Credit, roles.Balance)
	return roles
}

// Usable reports whether the table carries enough structure to parse:
// a date column plus either a single amount column or a debit/credit
// pair.
func (c ColumnRoles) Usable() bool {
	if c.Date < 0 {
		return false
	}
	return c.Amount >= 0 || c.Debit >= 0 || c.Credit >= 0
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// newRowTable builds a RowTable from raw rows, treating the first
// non-empty row as the header.
func newRowTable(rows [][]string) *RowTable {
	start := 0
	for start < len(rows) && rowEmpty(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil
	}

	headers := rows[start]
	var records [][]string
	for _, r := range rows[start+1:] {
		if rowEmpty(r) {
			continue
		}
		records = append(records, r)
	}

	return &RowTable{
		Headers: headers,
		Records: records,
		Cols:    InferColumns(headers),
	}
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Cell returns the trimmed cell at idx, tolerating short rows.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
