package intake

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
)

// Format is the detected document format.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatImage Format = "image"
)

// RawDocument is a statement document after intake: format resolved,
// size checked, and content staged for the parser chain. Text documents
// carry Lines; tabular documents additionally carry Rows. Images carry
// only Bytes (no OCR; the vision stage or the placeholder path serves
// them).
type RawDocument struct {
	Format   Format
	Filename string
	Size     int64
	Bytes    []byte
	Lines    []string
	Rows     *RowTable
}

// Text joins the document lines into a single block for parsers and
// prompts that want the whole statement at once.
func (d *RawDocument) Text() string {
	return strings.Join(d.Lines, "\n")
}

// HasText reports whether intake produced any usable text.
func (d *RawDocument) HasText() bool {
	for _, l := range d.Lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

// Content signatures. The signature wins over the declared extension
// when the two disagree.
var (
	sigPDF  = []byte("%PDF-")
	sigZIP  = []byte("PK\x03\x04") // xlsx is a zip container
	sigOLE  = []byte("\xd0\xcf\x11\xe0") // legacy xls (OLE compound file)
	sigPNG  = []byte("\x89PNG\r\n\x1a\n")
	sigJPEG = []byte("\xff\xd8\xff")
)

// Detect resolves the document format from the declared filename and the
// leading bytes. Unknown formats return domain.ErrUnsupportedFormat.
func Detect(filename string, data []byte) (Format, error) {
	byExt, extKnown := formatFromExtension(filename)

	switch {
	case bytes.HasPrefix(data, sigPDF):
		return FormatPDF, nil
	case bytes.HasPrefix(data, sigZIP):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, sigPNG), bytes.HasPrefix(data, sigJPEG):
		return FormatImage, nil
	case bytes.HasPrefix(data, sigOLE):
		// Legacy binary xls; excelize reads only the zip-based format.
		return "", fmt.Errorf("detect %q: legacy xls (OLE container) is not supported, export as xlsx or csv: %w",
			filename, domain.ErrUnsupportedFormat)
	}

	if extKnown {
		// No binary signature matched. CSV has none, so trust the
		// extension; for binary formats the content is not what the
		// extension claims.
		if byExt == FormatCSV {
			return FormatCSV, nil
		}
		return "", fmt.Errorf("detect %q: content does not look like %s: %w", filename, byExt, domain.ErrUnsupportedFormat)
	}

	return "", fmt.Errorf("detect %q: %w", filename, domain.ErrUnsupportedFormat)
}

func formatFromExtension(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, true
	case ".csv", ".txt":
		return FormatCSV, true
	case ".xlsx", ".xls":
		return FormatXLSX, true
	case ".jpg", ".jpeg", ".png":
		return FormatImage, true
	default:
		return "", false
	}
}

// Read runs the full intake: size gate, format detection, and content
// extraction into a RawDocument. maxSize <= 0 disables the gate.
func Read(filename string, data []byte, maxSize int64) (*RawDocument, error) {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("read %q: size %d exceeds limit %d: %w",
			filename, len(data), maxSize, domain.ErrExtractionFailure)
	}

	format, err := Detect(filename, data)
	if err != nil {
		return nil, err
	}

	doc := &RawDocument{
		Format:   format,
		Filename: filename,
		Size:     int64(len(data)),
		Bytes:    data,
	}

	switch format {
	case FormatCSV:
		if err := readCSV(doc, data); err != nil {
			return nil, err
		}
	case FormatXLSX:
		if err := readXLSX(doc, data); err != nil {
			return nil, err
		}
	case FormatPDF:
		if err := readPDF(doc, data); err != nil {
			return nil, err
		}
	case FormatImage:
		// Kept as bytes only.
	}

	return doc, nil
}
