package docfetch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// pageRenderer prints an HTML page to PDF in a headless browser.
type pageRenderer struct {
	launcher browserLauncher
	timeouts Timeouts
	page     *PageSettings
	logger   *zap.Logger
}

func (r *pageRenderer) Fetch(ctx context.Context, url, dest string) (src Source, err error) {
	src = SourceRender

	session, err := r.launcher.Launch(ctx, modeRender)
	if err != nil {
		return src, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			r.logger.Debug("closing browser", zap.Error(cerr))
		}
	}()

	if err := session.Navigate(ctx, url, r.timeouts.Navigate); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return src, ctxErr
		}
		return src, fmt.Errorf("%w: %w: %v", ErrRender, ErrPageLoad, err)
	}
	if err := sleepCtx(ctx, r.timeouts.RenderSettle); err != nil {
		return src, err
	}

	pdf, err := session.PrintPDF(ctx, r.page)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return src, ctxErr
		}
		return src, fmt.Errorf("%w: %w: %v", ErrRender, ErrPDFGeneration, err)
	}

	return src, writePDF(dest, pdf)
}
