package auction

import (
	"errors"

	"github.com/joseph-ayodele/auction-tracker/internal/core/pdftext"
)

var (
	ErrDocumentUnreadable = pdftext.ErrDocumentUnreadable
	ErrEmptyContent       = pdftext.ErrEmptyContent
	// ErrUnexpectedFailure wraps any fault that is not one of the above,
	// including recovered panics.
	ErrUnexpectedFailure = errors.New("unexpected extraction failure")
)
