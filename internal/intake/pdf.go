package intake

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// readPDF extracts text from a PDF in page order, one line per text
// row. Scanned PDFs yield no lines; those fall through to the vision or
// placeholder stage rather than failing here.
func readPDF(doc *RawDocument, data []byte) (err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("readPDF %q: %v: %w", doc.Filename, r, domain.ErrExtractionFailure)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("readPDF %q: %v: %w", doc.Filename, err, domain.ErrExtractionFailure)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				doc.Lines = append(doc.Lines, line)
			}
		}
	}
	return nil
}
