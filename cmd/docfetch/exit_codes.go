package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/alnah/go-docfetch"
	"github.com/alnah/go-docfetch/internal/config"
	"github.com/alnah/go-docfetch/internal/hints"
	"github.com/alnah/go-docfetch/internal/layout"
)

// Exit codes for the docfetch CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Document saved
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Output directory or file write failure
	ExitBrowser = 4 // Browser/Chrome errors
	ExitFetch   = 5 // Site refused or served something other than a PDF
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, layout.ErrInvalidQuarter) ||
		errors.Is(err, layout.ErrInvalidDocType) ||
		errors.Is(err, layout.ErrEmptyTicker) ||
		errors.Is(err, docfetch.ErrEmptyURL) ||
		errors.Is(err, docfetch.ErrEmptyDestination) ||
		errors.Is(err, docfetch.ErrInvalidURL) ||
		errors.Is(err, docfetch.ErrInvalidPageSize) ||
		errors.Is(err, docfetch.ErrInvalidOrientation) ||
		errors.Is(err, docfetch.ErrInvalidMargin) {
		return ExitUsage
	}

	// Browser errors (exit 4)
	if errors.Is(err, docfetch.ErrBrowserConnect) ||
		errors.Is(err, docfetch.ErrPageCreate) ||
		errors.Is(err, docfetch.ErrPageLoad) ||
		errors.Is(err, docfetch.ErrPDFGeneration) ||
		errors.Is(err, docfetch.ErrRender) {
		return ExitBrowser
	}

	// Fetch errors (exit 5)
	if errors.Is(err, docfetch.ErrBrowserFetch) ||
		errors.Is(err, docfetch.ErrDirectFetch) ||
		errors.Is(err, docfetch.ErrInvalidContent) {
		return ExitFetch
	}

	// I/O errors (exit 3)
	if errors.Is(err, ErrOutputDir) ||
		errors.Is(err, docfetch.ErrWritePDF) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var statusErr *docfetch.StatusError
	switch {
	case errors.As(err, &statusErr):
		return hints.ForBlocked(statusErr.Status)
	case errors.Is(err, docfetch.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, docfetch.ErrInvalidContent):
		return hints.ForInvalidContent()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(triedPaths(err))
	case errors.Is(err, ErrOutputDir), errors.Is(err, docfetch.ErrWritePDF):
		return hints.ForOutputDirectory()
	}
	return ""
}

// triedPaths extracts the "tried a, b" list from a config lookup error.
func triedPaths(err error) []string {
	msg := err.Error()
	i := strings.Index(msg, "tried ")
	if i < 0 {
		return nil
	}
	return strings.Split(msg[i+len("tried "):], ", ")
}
