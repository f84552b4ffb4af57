package extract

import "fmt"

// ExtractionError reports a document that could not be read or analysed.
// Page is 1-based; 0 means the failure was not tied to a single page.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("extract page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("extract: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
