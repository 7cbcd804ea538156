package record

import (
	"errors"
	"fmt"
)

// ErrAlreadyDecided signals that a decision was already taken for a record.
// The router uses it as the double-delivery guard: a second action event for
// the same record is rejected before any side effect runs.
var ErrAlreadyDecided = errors.New("record already decided")

// ExtractionError marks a fatal extraction failure: the mandatory
// summary/key-points step produced nothing usable. It is surfaced to the
// operator channel, unlike enrichment failures which are only logged.
type ExtractionError struct {
	Stage string // which extraction step failed
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed at %s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NewExtractionError wraps err as a fatal extraction failure.
func NewExtractionError(stage string, err error) *ExtractionError {
	return &ExtractionError{Stage: stage, Err: err}
}

// IsExtractionError reports whether err is (or wraps) an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
