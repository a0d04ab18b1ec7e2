package intake

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// readCSV stages a CSV document as both raw lines and a row table.
// Field counts vary across bank exports, so the reader is lenient.
func readCSV(doc *RawDocument, data []byte) error {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("readCSV %q: %v: %w", doc.Filename, err, domain.ErrExtractionFailure)
		}
		rows = append(rows, record)
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
