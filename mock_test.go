package docfetch

// Notes:
// - Shared test doubles for the pipeline stages and the browser.
// - mockLauncher records every launch and hands out mockSessions that count
//   Close calls, so tests can assert each browser is torn down exactly once.

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var (
	validPDF = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
	htmlPage = []byte("<html><head><title>Just a moment...</title></head><body>checking</body></html>")
)

// ---------------------------------------------------------------------------
// Browser doubles
// ---------------------------------------------------------------------------

type mockSession struct {
	mu sync.Mutex

	navErr      error
	navigated   []string
	navTimeouts []time.Duration

	fetchStatus int
	fetchBody   []byte
	fetchErr    error
	fetched     []string

	pdf      []byte
	printErr error
	printed  *PageSettings

	closes int
}

func (m *mockSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigated = append(m.navigated, url)
	m.navTimeouts = append(m.navTimeouts, timeout)
	return m.navErr
}

func (m *mockSession) FetchInPage(ctx context.Context, url string) (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, url)
	if m.fetchErr != nil {
		return 0, nil, m.fetchErr
	}
	return m.fetchStatus, m.fetchBody, nil
}

func (m *mockSession) PrintPDF(ctx context.Context, page *PageSettings) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.printed = page
	if m.printErr != nil {
		return nil, m.printErr
	}
	return m.pdf, nil
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *mockSession) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

type mockLauncher struct {
	mu       sync.Mutex
	session  *mockSession
	err      error
	launches []launchMode
}

func (m *mockLauncher) Launch(ctx context.Context, mode launchMode) (browserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launches = append(m.launches, mode)
	if m.err != nil {
		return nil, m.err
	}
	if m.session == nil {
		m.session = &mockSession{}
	}
	return m.session, nil
}

func (m *mockLauncher) launchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.launches)
}

// ---------------------------------------------------------------------------
// Stage and transport doubles
// ---------------------------------------------------------------------------

type mockStage struct {
	source Source
	err    error
	write  []byte
	calls  []string
}

func (m *mockStage) Fetch(ctx context.Context, url, dest string) (Source, error) {
	m.calls = append(m.calls, url+" -> "+dest)
	if m.err != nil {
		return m.source, m.err
	}
	if m.write != nil {
		if err := writePDF(dest, m.write); err != nil {
			return m.source, err
		}
	}
	return m.source, nil
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// httpBody wraps b as a response body.
func httpBody(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}

// failingClient returns a client that fails the test on any request.
func failingClient(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Errorf("unexpected network call: %s %s", r.Method, r.URL)
		return nil, errors.New("network disabled")
	})}
}

// zeroSettle returns default timeouts without settle pauses.
func zeroSettle() Timeouts {
	t := DefaultTimeouts()
	t.SessionSettle = 0
	t.RenderSettle = 0
	return t
}

// ---------------------------------------------------------------------------
// File helpers
// ---------------------------------------------------------------------------

func destIn(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "out.pdf")
}

func assertFileContent(t *testing.T, path string, want []byte) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(got) != string(want) {
		t.Errorf("file content = %q, want %q", got, want)
	}
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no file at %s, stat err = %v", path, err)
	}
}
