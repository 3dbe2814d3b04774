package pptx

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports malformed input: an empty deck, broken slide
	// numbering, or an invalid DesignSpec value such as a bad color hex.
	ErrValidation = errors.New("pptx: validation failed")

	// ErrLimitExceeded reports input that is structurally valid but larger
	// than the configured Limits allow.
	ErrLimitExceeded = errors.New("pptx: limit exceeded")

	// ErrPackagingIO reports a disk or archive failure while staging or
	// compressing the package.
	ErrPackagingIO = errors.New("pptx: packaging I/O failed")

	// ErrContentTypeConflict reports two different MIME types registered for
	// the same extension. Internal invariant violation; never expected with a
	// correct caller.
	ErrContentTypeConflict = errors.New("pptx: conflicting content type")

	// ErrUnknownScope reports a relationship allocation against a scope that
	// was never opened. Internal invariant violation.
	ErrUnknownScope = errors.New("pptx: unknown relationship scope")
)

// ExportError wraps any failure raised during Export with the slide and
// pipeline step it occurred at. Slide is 0 for failures outside any slide
// (validation, package-level parts, archiving).
type ExportError struct {
	Slide int
	Step  string
	Err   error
}

func (e *ExportError) Error() string {
	if e.Slide > 0 {
		return fmt.Sprintf("pptx: export failed at slide %d (%s): %v", e.Slide, e.Step, e.Err)
	}
	return fmt.Sprintf("pptx: export failed (%s): %v", e.Step, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func exportErr(slide int, step string, err error) error {
	return &ExportError{Slide: slide, Step: step, Err: err}
}
