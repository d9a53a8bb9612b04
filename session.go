package docfetch

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// sessionFetcher downloads a PDF from inside a real browser page after
// visiting the origin, so anti-bot cookies and checks are satisfied first.
type sessionFetcher struct {
	launcher browserLauncher
	timeouts Timeouts
	logger   *zap.Logger
}

func (f *sessionFetcher) Fetch(ctx context.Context, url, dest string) (src Source, err error) {
	src = SourceBrowser

	origin, err := originOf(url)
	if err != nil {
		return src, err
	}

	session, err := f.launcher.Launch(ctx, modeSession)
	if err != nil {
		return src, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			f.logger.Debug("closing browser", zap.Error(cerr))
		}
	}()

	if err := session.Navigate(ctx, origin, f.timeouts.Warmup); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return src, ctxErr
		}
		return src, fmt.Errorf("%w: %s: %v", ErrPageLoad, origin, err)
	}
	if err := sleepCtx(ctx, f.timeouts.SessionSettle); err != nil {
		return src, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeouts.Direct)
	defer cancel()

	status, body, err := session.FetchInPage(fetchCtx, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return src, ctxErr
		}
		return src, fmt.Errorf("%w: %v", ErrBrowserFetch, err)
	}
	if status != http.StatusOK {
		return src, &StatusError{Status: status}
	}

	return src, writePDF(dest, body)
}
