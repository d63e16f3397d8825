package aggregator

import (
	"errors"
	"fmt"

	"docuvert/core"
)

// ErrNoPagesFound indicates aggregation was requested for a session whose
// output directory holds no completed pages.
var ErrNoPagesFound = errors.New("no pages found for session")

// AggregationError reports a failed aggregation run. Rendering happens in
// memory before any file is touched, so an AggregationError guarantees that
// previously aggregated files are intact.
type AggregationError struct {
	SessionID string
	Format    core.Format
	Err       error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed for session %s (format %s): %v", e.SessionID, e.Format, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

func newAggregationError(sessionID string, format core.Format, err error) *AggregationError {
	return &AggregationError{SessionID: sessionID, Format: format, Err: err}
}

// IsAggregationError reports whether err is or wraps an AggregationError.
func IsAggregationError(err error) bool {
	var target *AggregationError
	return errors.As(err, &target)
}
