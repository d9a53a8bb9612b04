package docfetch

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DownloadRequest describes one acquisition.
type DownloadRequest struct {
	URL             string // http(s) resource or page (required)
	DestinationPath string // file to create or replace; parent must exist
}

// Validate checks that the request is complete and the URL is usable.
func (r DownloadRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrEmptyURL
	}
	if strings.TrimSpace(r.DestinationPath) == "" {
		return ErrEmptyDestination
	}
	if _, err := originOf(r.URL); err != nil {
		return err
	}
	return nil
}

// originOf returns scheme://host for an http(s) URL.
func originOf(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q (must be an http or https URL)", ErrInvalidURL, raw)
	}
	return scheme + "://" + u.Host, nil
}

// Source names the stage that produced a file.
type Source string

const (
	SourceDirect  Source = "direct"
	SourceBrowser Source = "browser"
	SourceRender  Source = "render"
)

// Outcome is the result of Downloader.Download.
// Path is set on success, Err on failure.
type Outcome struct {
	Path   string // written file on success
	Source Source // stage that wrote the file or failed; empty if none ran
	Err    error  // failure reason
}

// OK reports whether the download succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures the paper used when a page is printed to PDF.
// Zero values fall back to DefaultPageSettings.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	// Empty values mean defaults.
	if p.Size != "" && !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if p.Orientation != "" && !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin != 0 && (p.Margin < MinMargin || p.Margin > MaxMargin) {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Timeouts bounds each network or browser step.
// Settle pauses may be zero; every other field must be positive.
type Timeouts struct {
	Classify      time.Duration // HEAD probe
	Direct        time.Duration // direct GET, also bounds the browser-context fetch
	Warmup        time.Duration // origin navigation before the browser-context fetch
	Navigate      time.Duration // page navigation before printing
	SessionSettle time.Duration // pause after warm-up
	RenderSettle  time.Duration // pause before printing
}

// DefaultTimeouts returns the stage timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Classify:      15 * time.Second,
		Direct:        120 * time.Second,
		Warmup:        30 * time.Second,
		Navigate:      60 * time.Second,
		SessionSettle: 2 * time.Second,
		RenderSettle:  3 * time.Second,
	}
}

// Validate checks that every timeout is usable.
func (t Timeouts) Validate() error {
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"classify", t.Classify},
		{"direct", t.Direct},
		{"warmup", t.Warmup},
		{"navigate", t.Navigate},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("%s timeout must be positive, got %v", p.name, p.d)
		}
	}
	if t.SessionSettle < 0 || t.RenderSettle < 0 {
		return fmt.Errorf("settle delays must not be negative")
	}
	return nil
}

// BrowserOptions controls how Chrome is launched.
type BrowserOptions struct {
	Bin        string // path to Chrome; empty = ROD_BROWSER_BIN or auto-detect
	NoSandbox  bool   // also enabled by CI=true, ROD_NO_SANDBOX=1 or a custom Bin
	ShowWindow bool   // visible window for the session fetcher
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeouts sets the stage timeouts.
// Panics if t is invalid (programmer error, similar to time.NewTicker).
func WithTimeouts(t Timeouts) Option {
	if err := t.Validate(); err != nil {
		panic("docfetch: WithTimeouts: " + err.Error())
	}
	return func(d *Downloader) {
		d.timeouts = t
	}
}

// WithLogger sets the logger used for stage decisions.
func WithLogger(l *zap.Logger) Option {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithHTTPClient replaces the Chrome-fingerprinted client used for the
// classifier and the direct fetcher.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) {
		if c != nil {
			d.client = c
		}
	}
}

// WithPageSettings sets the paper used by the page renderer.
// Invalid settings are reported by Download.
func WithPageSettings(p *PageSettings) Option {
	return func(d *Downloader) {
		d.page = p
	}
}

// WithBrowser sets the Chrome launch options.
func WithBrowser(b BrowserOptions) Option {
	return func(d *Downloader) {
		d.browser = b
	}
}

// withLauncher injects a browser launcher (tests).
func withLauncher(l browserLauncher) Option {
	return func(d *Downloader) {
		d.launcher = l
	}
}
