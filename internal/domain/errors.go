package domain

import "errors"

// Error taxonomy for the ingestion pipeline.
//
// Fatal at intake: ErrUnsupportedFormat, ErrExtractionFailure. Nothing
// downstream can recover from an unreadable document.
//
// Recoverable inside the parser chain: ErrEmptyResult escalates to the
// next stage; ErrExternalService and ErrSchemaMismatch are treated as an
// empty result at the AI stage.
//
// Validation failures are data (FieldError), not errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrExtractionFailure = errors.New("document text extraction failed")
	ErrEmptyResult       = errors.New("parser produced no transactions")
	ErrExternalService   = errors.New("external extraction service unavailable")
	ErrSchemaMismatch    = errors.New("extraction response does not match expected schema")
)

// Recoverable reports whether the parser chain may continue to its next
// stage after err, as opposed to aborting the whole parse.
func Recoverable(err error) bool {
	return errors.Is(err, ErrEmptyResult) ||
		errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrSchemaMismatch)
}
