package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

func TestCategorize(t *testing.T) {
	c := New()

	tests := []struct {
		description string
		want        string
	}{
		{"SALARY CREDIT JULY", "salary"},
		{"UPI-SWIGGY-FOOD ORDER", "food_dining"},
		{"ATM CASH WITHDRAWAL", "cash_withdrawal"},
		{"ELECTRICITY BILL PAYMENT", "utilities"},
		{"NEFT-RENT PAYMENT", "utilities"},
		{"AMAZON PURCHASE", "shopping"},
		{"HPCL PETROL PUMP", "fuel"},
		{"APOLLO PHARMACY", "medical"},
		{"ZERODHA SIP INSTALLMENT", "investment"},
		{"IRCTC TICKET BOOKING", "transportation"},
		{"HOME LOAN EMI", "loan"},
		{"NETFLIX SUBSCRIPTION", "entertainment"},
		{"SCHOOL FEE TERM 2", "education"},
		{"BIGBASKET ORDER", "groceries"},
		{"IMPS FUND TRANSFER", "transfer"},
		{"SOMETHING COMPLETELY UNKNOWN", CategoryOthers},
		{"", CategoryOthers},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := c.Categorize(tt.description); got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

// The assignment must be deterministic: repeated runs over the same
// input always agree.
func TestCategorizeDeterministic(t *testing.T) {
	descriptions := []string{
		"UPI-SWIGGY-FOOD ORDER", "NEFT-RENT PAYMENT", "RANDOM NARRATION",
	}
	first := make([]string, len(descriptions))
	for i, d := range descriptions {
		first[i] = New().Categorize(d)
	}
	for run := 0; run < 5; run++ {
		c := New()
		for i, d := range descriptions {
			if got := c.Categorize(d); got != first[i] {
				t.Fatalf("run %d: Categorize(%q) = %q, previously %q", run, d, got, first[i])
			}
		}
	}
}

// "rent payment" must win over the shorter "neft" match.
func TestCategorizeLongestKeywordWins(t *testing.T) {
	c := New()
	if got := c.Categorize("NEFT-RENT PAYMENT JULY"); got != "utilities" {
		t.Errorf("Categorize() = %q, want utilities (longest keyword)", got)
	}
}

// Every result must come from the closed taxonomy.
func TestCategorizeTotal(t *testing.T) {
	c := New()
	for _, d := range []string{"abc", "xyz 123", "UPI UPI UPI", "!!", "salary atm swiggy"} {
		got := c.Categorize(d)
		if !Known(got) {
			t.Errorf("Categorize(%q) = %q, outside taxonomy", d, got)
		}
	}
}

func TestApplyKeepsValidPresetCategory(t *testing.T) {
	c := New()
	txs := c.Apply([]domain.Transaction{
		{Description: "UNKNOWN NARRATION", Category: "fuel"},
		{Description: "UPI-SWIGGY-FOOD ORDER", Category: "not_a_category"},
		{Description: "UNMATCHED"},
	})

	if txs[0].Category != "fuel" {
		t.Errorf("preset category overwritten: %q", txs[0].Category)
	}
	if txs[1].Category != "food_dining" {
		t.Errorf("invalid preset not re-resolved: %q", txs[1].Category)
	}
	if txs[2].Category != CategoryOthers {
		t.Errorf("unmatched should default to others: %q", txs[2].Category)
	}
}

func TestNewFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := "categories:\n  utilities:\n    - society maintenance\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewFromYAML(path)
	if err != nil {
		t.Fatalf("NewFromYAML() error = %v", err)
	}
	if got := c.Categorize("SOCIETY MAINTENANCE Q3"); got != "utilities" {
		t.Errorf("Categorize() = %q, want utilities from YAML keyword", got)
	}
	// Defaults still present.
	if got := c.Categorize("SALARY CREDIT"); got != "salary" {
		t.Errorf("Categorize() = %q, want salary", got)
	}
}

func TestNewFromYAMLRejectsUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := "categories:\n  gambling:\n    - casino\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFromYAML(path); err == nil {
		t.Fatal("NewFromYAML() should reject categories outside the taxonomy")
	}
}
