package intake

import (
	"errors"
	"strings"
	"testing"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     Format
		wantErr  error
	}{
		{
			name:     "pdf by signature",
			filename: "statement.pdf",
			data:     []byte("%PDF-1.7 rest"),
			want:     FormatPDF,
		},
		{
			name:     "signature wins over extension",
			filename: "statement.csv",
			data:     []byte("%PDF-1.4 binary"),
			want:     FormatPDF,
		},
		{
			name:     "xlsx by zip signature",
			filename: "statement.xlsx",
			data:     []byte("PK\x03\x04rest"),
			want:     FormatXLSX,
		},
		{
			name:     "png image",
			filename: "scan.png",
			data:     []byte("\x89PNG\r\n\x1a\nrest"),
			want:     FormatImage,
		},
		{
			name:     "jpeg image",
			filename: "scan.jpg",
			data:     []byte("\xff\xd8\xffrest"),
			want:     FormatImage,
		},
		{
			name:     "csv has no signature, extension decides",
			filename: "statement.csv",
			data:     []byte("Date,Description,Amount\n"),
			want:     FormatCSV,
		},
		{
			name:     "pdf extension without pdf content",
			filename: "statement.pdf",
			data:     []byte("plain text, not a pdf"),
			wantErr:  domain.ErrUnsupportedFormat,
		},
		{
			name:     "unknown extension and content",
			filename: "statement.docx",
			data:     []byte("whatever"),
			wantErr:  domain.ErrUnsupportedFormat,
		},
		{
			name:     "legacy xls by ole signature",
			filename: "statement.xls",
			data:     []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1rest"),
			wantErr:  domain.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.filename, tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Detect() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadSizeGate(t *testing.T) {
	data := []byte("Date,Description,Amount\n01/07/2025,TEST,10.00\n")

	if _, err := Read("s.csv", data, int64(len(data))); err != nil {
		t.Fatalf("Read() at limit: %v", err)
	}

	_, err := Read("s.csv", data, int64(len(data))-1)
	if !errors.Is(err, domain.ErrExtractionFailure) {
		t.Fatalf("Read() over limit error = %v, want ErrExtractionFailure", err)
	}
}

func TestReadCSVRowTable(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Narration,Withdrawal,Deposit,Balance",
		"01/07/2025,SALARY CREDIT,,75000.00,95000.00",
		"05/07/2025,ATM CASH WITHDRAWAL,10000.00,,85000.00",
	}, "\n")

	doc, err := Read("statement.csv", []byte(csvData), 0)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if doc.Rows == nil {
		t.Fatal("Read() produced no row table")
	}

	cols := doc.Rows.Cols
	if cols.Date != 0 {
		t.Errorf("date column = %d, want 0", cols.Date)
	}
	if cols.Description != 1 {
		t.Errorf("description column = %d, want 1", cols.Description)
	}
	if cols.Debit != 2 {
		t.Errorf("debit column = %d, want 2", cols.Debit)
	}
	if cols.Credit != 3 {
		t.Errorf("credit column = %d, want 3", cols.Credit)
	}
	if cols.Balance != 4 {
		t.Errorf("balance column = %d, want 4", cols.Balance)
	}
	if !cols.Usable() {
		t.Error("column roles should be usable")
	}
	if len(doc.Rows.Records) != 2 {
		t.Errorf("records = %d, want 2", len(doc.Rows.Records))
	}
	if !doc.HasText() {
		t.Error("csv document should carry text lines")
	}
}

func TestInferColumnsAmountOnly(t *testing.T) {
	cols := InferColumns([]string{"Txn Date", "Particulars", "Amount", "Closing Balance"})
	if cols.Date != 0 || cols.Description != 1 || cols.Amount != 2 || cols.Balance != 3 {
		t.Errorf("unexpected roles: %+v", cols)
	}
	if cols.Debit != -1 || cols.Credit != -1 {
		t.Errorf("debit/credit should be absent: %+v", cols)
	}
	if !cols.Usable() {
		t.Error("date+amount should be usable")
	}
}

func TestInferColumnsValueDateStaysDate(t *testing.T) {
	cols := InferColumns([]string{"Value Date", "Narration", "Debit", "Credit"})
	if cols.Date != 0 {
		t.Errorf("date column = %d, want 0", cols.Date)
	}
	// The "value" amount alias must not rebind the date column.
	if cols.Amount != -1 {
		t.Errorf("amount column = %d, want -1", cols.Amount)
	}
	if cols.Debit != 2 || cols.Credit != 3 {
		t.Errorf("unexpected debit/credit roles: %+v", cols)
	}
}

func TestInferColumnsValueDateAloneUnusable(t *testing.T) {
	cols := InferColumns([]string{"Value Date", "Narration"})
	if cols.Amount != -1 {
		t.Errorf("amount column = %d, want -1", cols.Amount)
	}
	if cols.Usable() {
		t.Error("date-only table must not be usable")
	}
}

func TestInferColumnsUnusable(t *testing.T) {
	cols := InferColumns([]string{"Notes", "Reference"})
	if cols.Usable() {
		t.Error("table without date or amount columns must not be usable")
	}
}
