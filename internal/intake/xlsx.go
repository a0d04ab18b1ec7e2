package intake

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// readXLSX stages the first sheet of an XLSX workbook as a row table,
// mirroring the CSV path.
func readXLSX(doc *RawDocument, data []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("readXLSX %q: %v: %w", doc.Filename, err, domain.ErrExtractionFailure)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("readXLSX %q: workbook has no sheets: %w", doc.Filename, domain.ErrExtractionFailure)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("readXLSX %q: reading sheet %q: %v: %w", doc.Filename, sheets[0], err, domain.ErrExtractionFailure)
	}

	for _, row := range rows {
		line := strings.TrimSpace(strings.Join(row, " "))
		if line != "" {
			doc.Lines = append(doc.Lines, line)
		}
	}
	doc.Rows = newRowTable(rows)
	return nil
}
