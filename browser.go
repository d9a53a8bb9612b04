package docfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/alnah/go-docfetch/internal/process"
)

// browserLauncher starts one browser with one page.
type browserLauncher interface {
	Launch(ctx context.Context, mode launchMode) (browserSession, error)
}

// browserSession is a live browser process and page owned by one stage.
// Close must be safe to call more than once.
type browserSession interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	FetchInPage(ctx context.Context, url string) (status int, body []byte, err error)
	PrintPDF(ctx context.Context, page *PageSettings) ([]byte, error)
	Close() error
}

// launchMode selects how a stage wants its browser.
type launchMode int

const (
	// modeSession is a full browser with a stealth page, used to pass
	// anti-bot checks before fetching a resource.
	modeSession launchMode = iota
	// modeRender is a plain headless browser used to print pages.
	modeRender
)

func (m launchMode) String() string {
	if m == modeSession {
		return "session"
	}
	return "render"
}

// Compile-time interface checks
var (
	_ browserLauncher = (*rodLauncher)(nil)
	_ browserSession  = (*rodSession)(nil)
)

// rodLauncher implements browserLauncher using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodLauncher struct {
	opts BrowserOptions
}

func newRodLauncher(opts BrowserOptions) *rodLauncher {
	return &rodLauncher{opts: opts}
}

// newLauncher configures Chrome flags for the requested mode.
func (r *rodLauncher) newLauncher(mode launchMode) *launcher.Launcher {
	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := r.opts.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if r.opts.NoSandbox || bin != "" || os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	switch {
	case mode == modeSession && r.opts.ShowWindow:
		l = l.Headless(false)
	case mode == modeSession:
		// New headless mode runs the full browser, not the headless shell.
		l = l.Set(flags.Headless, "new")
	default:
		l = l.Headless(true)
	}

	return l.Set("disable-blink-features", "AutomationControlled")
}

// Launch starts Chrome and opens a page. On failure nothing is left running.
func (r *rodLauncher) Launch(ctx context.Context, mode launchMode) (browserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := r.newLauncher(mode)
	u, err := l.Launch()
	s := &rodSession{launcher: l}
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	s.browser = rod.New().ControlURL(u)
	if err := s.browser.Connect(); err != nil {
		s.browser = nil
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	if mode == modeSession {
		s.page, err = stealth.Page(s.browser)
	} else {
		s.page, err = s.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	return s, nil
}

// rodSession owns one Chrome process and its page.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	closeOnce sync.Once
	closeErr  error
}

// Navigate loads url and waits for DOMContentLoaded within timeout.
func (s *rodSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := s.page.Context(navCtx)
	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return err
	}
	wait()

	// WaitNavigation returns silently when its context ends.
	if err := navCtx.Err(); err != nil {
		return fmt.Errorf("waiting for %s: %w", url, err)
	}
	return nil
}

// FetchInPage issues a GET through the browser's network stack for the
// page's frame, with the cookies and TLS state established by earlier
// navigation. The request is not a page script fetch, so CORS does not apply
// when the origin redirected the page to another host.
func (s *rodSession) FetchInPage(ctx context.Context, url string) (int, []byte, error) {
	p := s.page.Context(ctx)
	res, err := proto.NetworkLoadNetworkResource{
		FrameID: p.FrameID,
		URL:     url,
		Options: &proto.NetworkLoadNetworkResourceOptions{
			DisableCache:       true,
			IncludeCredentials: true,
		},
	}.Call(p)
	if err != nil {
		return 0, nil, err
	}

	status, err := resourceStatus(res.Resource)
	if err != nil {
		return status, nil, err
	}
	if res.Resource.Stream == "" {
		return status, nil, nil
	}

	stream := rod.NewStreamReader(p, res.Resource.Stream)
	defer func() { _ = stream.Close() }()
	body, err := io.ReadAll(stream)
	if err != nil {
		return status, nil, fmt.Errorf("reading response stream: %w", err)
	}
	return status, body, nil
}

// resourceStatus extracts the HTTP status of a loaded resource. A load that
// failed before any response arrived is an error carrying the network error.
func resourceStatus(r *proto.NetworkLoadNetworkResourcePageResult) (int, error) {
	if r == nil {
		return 0, errors.New("browser returned no resource")
	}
	if r.HTTPStatusCode != nil {
		return int(*r.HTTPStatusCode), nil
	}
	if r.Success {
		return 0, errors.New("browser returned no status code")
	}
	if r.NetErrorName != "" {
		return 0, fmt.Errorf("network error: %s", r.NetErrorName)
	}
	return 0, errors.New("network error")
}

// PrintPDF renders the current page to PDF bytes.
func (s *rodSession) PrintPDF(ctx context.Context, page *PageSettings) ([]byte, error) {
	reader, err := s.page.Context(ctx).PDF(buildPDFOptions(page))
	if err != nil {
		return nil, err
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return pdfBuf, nil
}

// Close tears down the page, the browser and every Chrome child process,
// then removes the temporary profile directory. Only the first call acts.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if s.page != nil {
			_ = s.page.Close()
		}
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		// Cleanup blocks until the process exits, so skip it when Chrome
		// never started.
		if s.launcher != nil && s.launcher.PID() > 0 {
			process.KillProcessGroup(s.launcher.PID())
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
	})
	return s.closeErr
}

// paperSize returns width and height in inches for a portrait page.
func paperSize(size string) (float64, float64) {
	switch strings.ToLower(size) {
	case PageSizeA4:
		return 8.27, 11.69
	case PageSizeLegal:
		return 8.5, 14
	default:
		return 8.5, 11
	}
}

// buildPDFOptions constructs proto.PagePrintToPDF from page settings.
func buildPDFOptions(page *PageSettings) *proto.PagePrintToPDF {
	if page == nil {
		page = DefaultPageSettings()
	}
	width, height := paperSize(page.Size)
	margin := page.Margin
	if margin == 0 {
		margin = DefaultMargin
	}

	return &proto.PagePrintToPDF{
		Landscape:       strings.EqualFold(page.Orientation, OrientationLandscape),
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(margin),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// sleepCtx pauses for d or until ctx ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
