package docfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docfetch/internal/fileutil"
)

// filePermissions is applied to every written PDF.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// stage acquires a PDF for url and writes it to dest.
type stage interface {
	Fetch(ctx context.Context, url, dest string) (Source, error)
}

// Compile-time interface checks
var (
	_ stage = (*directFetcher)(nil)
	_ stage = (*sessionFetcher)(nil)
	_ stage = (*pageRenderer)(nil)
	_ stage = (*fallbackFetcher)(nil)
)

// directFetcher downloads a PDF with a single HTTP GET.
type directFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Fetch returns ErrDirectFetch for every transport, status or content
// problem. Only write errors and caller cancellation are reported otherwise.
func (f *directFetcher) Fetch(ctx context.Context, url, dest string) (Source, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := newRequest(reqCtx, http.MethodGet, url)
	if err != nil {
		return SourceDirect, fmt.Errorf("%w: %v", ErrDirectFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return SourceDirect, ctxErr
		}
		return SourceDirect, fmt.Errorf("%w: %v", ErrDirectFetch, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return SourceDirect, ctxErr
		}
		return SourceDirect, fmt.Errorf("%w: %v", ErrDirectFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !fileutil.HasPDFSignature(body) {
		return SourceDirect, fmt.Errorf("%w: %s", ErrDirectFetch, describeResponse(resp.StatusCode, resp.Header, body))
	}

	return SourceDirect, writePDF(dest, body)
}

// fallbackFetcher tries primary and, when it fails with ErrDirectFetch,
// hands the same request to secondary exactly once.
type fallbackFetcher struct {
	primary   stage
	secondary stage
	logger    *zap.Logger
}

func (f *fallbackFetcher) Fetch(ctx context.Context, url, dest string) (Source, error) {
	src, err := f.primary.Fetch(ctx, url, dest)
	if err == nil || !errors.Is(err, ErrDirectFetch) {
		return src, err
	}

	f.logger.Info("direct download rejected, retrying in browser",
		zap.String("url", url),
		zap.String("reason", err.Error()))

	return f.secondary.Fetch(ctx, url, dest)
}

// writePDF checks the PDF signature and writes data atomically to dest.
// dest is left untouched when either step fails.
func writePDF(dest string, data []byte) error {
	if !fileutil.HasPDFSignature(data) {
		return ErrInvalidContent
	}
	if err := fileutil.WriteFileAtomic(dest, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return nil
}
