package importers

import "fmt"

// FormatError reports input broken at the file level: wrong extension,
// undecodable bytes, or a malformed document. It aborts the whole batch
// before any record is persisted, unlike per-record failures which are
// collected into the import result.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return e.Reason
}

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
