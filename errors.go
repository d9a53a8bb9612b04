package docfetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Stage failures.
	ErrDirectFetch    = errors.New("direct download failed")
	ErrBrowserFetch   = errors.New("browser download failed")
	ErrInvalidContent = errors.New("server returned an error page instead of a PDF")
	ErrRender         = errors.New("page rendering failed")

	// Browser infrastructure errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Output errors.
	ErrWritePDF = errors.New("failed to write PDF")

	// Request validation errors.
	ErrEmptyURL         = errors.New("URL cannot be empty")
	ErrEmptyDestination = errors.New("destination path cannot be empty")
	ErrInvalidURL       = errors.New("invalid URL")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
)

// StatusError reports a non-200 answer to the browser-context fetch.
// It matches ErrBrowserFetch with errors.Is.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: HTTP %d", ErrBrowserFetch, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrBrowserFetch
}
