package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds reported by Ingest. Match them with errors.Is.
var (
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
	ErrSheetNotFound      = errors.New("sheet not found")
	ErrHeaderNotFound     = errors.New("header row not found")
	ErrUnknownDataset     = errors.New("unknown dataset")
)

// IngestError is the error returned by Ingest. A failed ingestion never
// produces partial records and never touches the cache.
type IngestError struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Message is shown to the user.
	Message string

	// Available lists the workbook's sheets when Kind is ErrSheetNotFound.
	Available []string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *IngestError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (available sheets: %s)", strings.Join(e.Available, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *IngestError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Retryable reports whether a different file or sheet could succeed without
// changing the program, e.g. a workbook missing the expected sheet.
func (e *IngestError) Retryable() bool {
	return errors.Is(e.Kind, ErrSheetNotFound) || errors.Is(e.Kind, ErrHeaderNotFound)
}
