package extraction

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials indicates the inference endpoint rejected the API
// key. Distinguished from other failures so callers can surface an
// actionable message instead of a generic extraction error.
var ErrInvalidCredentials = errors.New("extraction: invalid API credentials")

// ErrEmptyResponse indicates the model returned no content for a page.
var ErrEmptyResponse = errors.New("extraction: empty response from model")

// ExtractionError is the per-page failure signal. It wraps the underlying
// cause (network error, model error, missing image) and identifies the page
// so the driver can record it and continue with the rest of the batch.
type ExtractionError struct {
	SessionID string
	Page      int
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for page %d of session %s: %v", e.Page, e.SessionID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// newExtractionError wraps err for one page.
func newExtractionError(sessionID string, page int, err error) *ExtractionError {
	return &ExtractionError{SessionID: sessionID, Page: page, Err: err}
}

// IsExtractionError reports whether err is (or wraps) an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
