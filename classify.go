package docfetch

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// IsPDF reports whether url points at a PDF resource.
// A path ending in .pdf is trusted without a request. Otherwise a HEAD probe
// bounded by the classify timeout decides; any failure means false.
func (d *Downloader) IsPDF(ctx context.Context, rawURL string) bool {
	if hasPDFExtension(rawURL) {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Classify)
	defer cancel()

	req, err := newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		d.logger.Debug("classification ambiguous", zap.String("url", rawURL), zap.Error(err))
		return false
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Debug("classification ambiguous", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Debug("classification ambiguous",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode))
		return false
	}
	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/pdf")
}

// hasPDFExtension checks the URL path, ignoring query and fragment.
func hasPDFExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
