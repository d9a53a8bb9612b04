package docfetch

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// maxRedirects caps redirect chains followed by the HTTP client.
const maxRedirects = 10

// userAgent is sent by the classifier and the direct fetcher.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

// chromeHeaders mirrors the request headers of a desktop Chrome navigation.
// Order matters for some fingerprinting proxies.
var chromeHeaders = [][2]string{
	{"User-Agent", userAgent},
	{"Accept", "application/pdf,*/*"},
	{"Accept-Language", "en-US,en;q=0.9"},
	{"Accept-Encoding", "gzip, deflate, br"},
	{"Sec-Ch-Ua", `"Chromium";v="133", "Not(A:Brand";v="99", "Google Chrome";v="133"`},
	{"Sec-Ch-Ua-Mobile", "?0"},
	{"Sec-Ch-Ua-Platform", `"Windows"`},
	{"Sec-Fetch-Site", "none"},
	{"Sec-Fetch-Mode", "navigate"},
	{"Sec-Fetch-User", "?1"},
	{"Sec-Fetch-Dest", "document"},
	{"Upgrade-Insecure-Requests", "1"},
}

// errNoH2 signals that the origin did not negotiate HTTP/2 over ALPN.
var errNoH2 = errors.New("server did not negotiate h2")

// chromeTransport sends HTTPS requests with a Chrome TLS ClientHello over
// HTTP/2. Origins that refuse h2, and plain http URLs, go through a standard
// transport.
type chromeTransport struct {
	hello   utls.ClientHelloID
	rootCAs *x509.CertPool
	h2      *http2.Transport
	h1      *http.Transport
}

// newChromeTransport creates a transport impersonating Chrome's TLS
// fingerprint. A nil rootCAs verifies servers against the system roots.
func newChromeTransport(rootCAs *x509.CertPool) *chromeTransport {
	rt := &chromeTransport{hello: utls.HelloChrome_Auto, rootCAs: rootCAs}

	// The *tls.Config parameter is ignored since the handshake uses uTLS.
	rt.h2 = &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return rt.dialTLS(ctx, network, addr)
		},
	}

	rt.h1 = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout: 15 * time.Second,
		TLSClientConfig:     &tls.Config{RootCAs: rootCAs, MinVersion: tls.VersionTLS12},
		DisableCompression:  true,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	return rt
}

// dialTLS creates a uTLS connection and keeps it only if h2 was negotiated.
func (rt *chromeTransport) dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{Timeout: 30 * time.Second}
	tcpConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	tlsConn := utls.UClient(tcpConn, &utls.Config{
		ServerName: host,
		RootCAs:    rt.rootCAs,
		NextProtos: []string{"h2", "http/1.1"},
	}, rt.hello)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = tcpConn.Close()
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}
	if tlsConn.ConnectionState().NegotiatedProtocol != http2.NextProtoTLS {
		_ = tlsConn.Close()
		return nil, errNoH2
	}
	return tlsConn, nil
}

// RoundTrip routes https through HTTP/2 and retries over HTTP/1.1 when the
// origin does not speak h2.
func (rt *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return rt.h1.RoundTrip(req)
	}
	resp, err := rt.h2.RoundTrip(req)
	if errors.Is(err, errNoH2) {
		return rt.h1.RoundTrip(req.Clone(req.Context()))
	}
	return resp, err
}

// newHTTPClient returns the client used by the classifier and direct fetcher.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport:     newChromeTransport(nil),
		CheckRedirect: limitRedirects,
	}
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// newRequest builds a request carrying the Chrome header profile.
func newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	for _, h := range chromeHeaders {
		req.Header.Set(h[0], h[1])
	}
	return req, nil
}

// readBody reads resp.Body, decoding the Content-Encoding set by the server.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode failed: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		dr, err := newDeflateReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate decode failed: %w", err)
		}
		defer dr.Close()
		reader = dr
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	return body, nil
}

// newDeflateReader decodes "deflate" bodies. The encoding is zlib-wrapped per
// RFC 9110, but some servers send raw DEFLATE, so the zlib header is checked
// first.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	if hdr, err := br.Peek(2); err == nil && isZlibHeader(hdr[0], hdr[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// isZlibHeader reports whether cmf and flg form a valid zlib header:
// compression method 8 and a check value divisible by 31.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
