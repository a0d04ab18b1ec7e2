// Package categorize assigns every transaction a category from a closed
// taxonomy. Assignment is total and deterministic: longest keyword match
// over a per-category lexicon, with "others" for anything unmatched.
package categorize

import (
	"sort"
	"strings"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// CategoryOthers is the fallback for descriptions no keyword matches.
const CategoryOthers = "others"

// Categories is the closed taxonomy. Parsers, the AI extractor and the
// validator all constrain category values to this set.
var Categories = []string{
	"salary",
	"groceries",
	"fuel",
	"food_dining",
	"utilities",
	"medical",
	"shopping",
	"transfer",
	"loan",
	"cash_withdrawal",
	"entertainment",
	"transportation",
	"education",
	"investment",
	CategoryOthers,
}

// Known reports whether c is part of the taxonomy.
func Known(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// defaultLexicon maps each category to the keywords that select it.
// Matching is case-insensitive substring; ties go to the longest
// keyword, so "interest credited" beats "credit".
var defaultLexicon = map[string][]string{
	"salary":          {"salary", "sal credit", "payroll", "wages", "stipend"},
	"groceries":       {"grocery", "groceries", "supermarket", "bigbasket", "dmart", "d-mart", "reliance fresh", "more retail", "kirana"},
	"fuel":            {"fuel", "petrol", "diesel", "hpcl", "bpcl", "indian oil", "ioc", "shell"},
	"food_dining":     {"swiggy", "zomato", "restaurant", "food order", "dining", "cafe", "dominos", "mcdonald", "kfc", "eatery"},
	"utilities":       {"electricity", "electricity bill", "water bill", "gas bill", "broadband", "internet bill", "mobile recharge", "dth", "postpaid", "rent payment", "rent"},
	"medical":         {"hospital", "pharmacy", "medical", "medicine", "apollo", "clinic", "diagnostic", "lab test"},
	"shopping":        {"amazon", "flipkart", "myntra", "ajio", "shopping", "mall", "store purchase"},
	"transfer":        {"neft", "imps", "rtgs", "upi transfer", "fund transfer", "transfer to", "transfer from", "self transfer"},
	"loan":            {"emi", "loan", "loan repayment", "home loan", "car loan", "personal loan"},
	"cash_withdrawal": {"atm", "cash withdrawal", "atm wdl", "cash wdl", "self cheque"},
	"entertainment":   {"netflix", "prime video", "hotstar", "spotify", "bookmyshow", "movie", "cinema", "pvr", "inox"},
	"transportation":  {"uber", "ola", "irctc", "metro", "bus ticket", "cab", "auto fare", "toll", "fastag"},
	"education":       {"school fee", "tuition", "college", "university", "course", "udemy", "coursera", "exam fee"},
	"investment":      {"mutual fund", "sip", "zerodha", "groww", "upstox", "fixed deposit", "fd booking", "rd installment", "ppf", "nps", "shares"},
}

// keywordEntry is one lexicon row flattened for longest-first matching.
type keywordEntry struct {
	keyword  string
	category string
}

// Categorizer holds the flattened lexicon. Read-only after
// construction, so a single instance is safe across concurrent
// pipelines.
type Categorizer struct {
	entries []keywordEntry
}

// New builds a Categorizer from the default lexicon.
func New() *Categorizer {
	return build(defaultLexicon, nil)
}

func build(base map[string][]string, extra map[string][]string) *Categorizer {
	var entries []keywordEntry
	add := func(lex map[string][]string) {
		for category, keywords := range lex {
			if !Known(category) {
				continue
			}
			for _, kw := range keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw == "" {
					continue
				}
				entries = append(entries, keywordEntry{keyword: kw, category: category})
			}
		}
	}
	add(base)
	add(extra)

	// Longest keyword first; equal lengths ordered lexically so the
	// result never depends on map iteration order.
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].keyword) != len(entries[j].keyword) {
			return len(entries[i].keyword) > len(entries[j].keyword)
		}
		return entries[i].keyword < entries[j].keyword
	})

	return &Categorizer{entries: entries}
}

// Categorize returns the category for a transaction description.
func (c *Categorizer) Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, e := range c.entries {
		if strings.Contains(desc, e.keyword) {
			return e.category
		}
	}
	return CategoryOthers
}

// Apply categorizes every transaction that does not already carry a
// valid category. AI-extracted transactions arrive pre-categorized;
// anything outside the taxonomy is re-resolved here.
func (c *Categorizer) Apply(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		if tx.Category == "" || !Known(tx.Category) {
			tx.Category = c.Categorize(tx.Description)
		}
		out[i] = tx
	}
	return out
}
