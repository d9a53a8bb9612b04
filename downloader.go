package docfetch

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Downloader runs the acquisition pipeline.
// It holds no per-call state; every browser-backed call launches and closes
// its own browser.
type Downloader struct {
	timeouts Timeouts
	page     *PageSettings
	browser  BrowserOptions
	client   *http.Client
	logger   *zap.Logger
	launcher browserLauncher

	pdfRoute  stage
	pageRoute stage
}

// New creates a Downloader with default configuration.
// Use options to customize behavior (e.g., WithTimeouts).
func New(opts ...Option) *Downloader {
	d := &Downloader{
		timeouts: DefaultTimeouts(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.client == nil {
		d.client = newHTTPClient()
	}
	// Create browser launcher if not injected (e.g., by tests)
	if d.launcher == nil {
		d.launcher = newRodLauncher(d.browser)
	}

	d.pdfRoute = &fallbackFetcher{
		primary: &directFetcher{client: d.client, timeout: d.timeouts.Direct},
		secondary: &sessionFetcher{
			launcher: d.launcher,
			timeouts: d.timeouts,
			logger:   d.logger,
		},
		logger: d.logger,
	}
	d.pageRoute = &pageRenderer{
		launcher: d.launcher,
		timeouts: d.timeouts,
		page:     d.page,
		logger:   d.logger,
	}

	return d
}

// Download fetches req.URL into req.DestinationPath.
// It never panics on bad input and always returns an Outcome.
func (d *Downloader) Download(ctx context.Context, req DownloadRequest) Outcome {
	if err := req.Validate(); err != nil {
		return Outcome{Err: err}
	}
	if err := d.page.Validate(); err != nil {
		return Outcome{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{Err: err}
	}

	start := time.Now()
	log := d.logger.With(zap.String("url", req.URL))

	route := d.pageRoute
	isPDF := d.IsPDF(ctx, req.URL)
	if isPDF {
		route = d.pdfRoute
	}
	log.Debug("classified", zap.Bool("pdf", isPDF))

	src, err := route.Fetch(ctx, req.URL, req.DestinationPath)
	if err != nil {
		log.Warn("download failed",
			zap.String("stage", string(src)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Outcome{Source: src, Err: err}
	}

	log.Info("download complete",
		zap.String("stage", string(src)),
		zap.String("path", req.DestinationPath),
		zap.Duration("elapsed", time.Since(start)))
	return Outcome{Path: req.DestinationPath, Source: src}
}
