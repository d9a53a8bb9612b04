package docfetch

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// challengeKind classifies bot-protection pages returned instead of a PDF.
type challengeKind int

const (
	challengeNone challengeKind = iota
	challengeJS
	challengeCaptcha
)

func (c challengeKind) String() string {
	switch c {
	case challengeNone:
		return "none"
	case challengeJS:
		return "js"
	case challengeCaptcha:
		return "captcha"
	default:
		return "unknown"
	}
}

var (
	captchaMarkers = [][]byte{
		[]byte("turnstile"),
		[]byte("challenges.cloudflare.com"),
		[]byte("h-captcha"),
		[]byte("data-sitekey"),
		[]byte("g-recaptcha"),
		[]byte("www.google.com/recaptcha"),
	}
	cloudflareMarkers = [][]byte{
		[]byte("Just a moment"),
		[]byte("_cf_chl"),
		[]byte("cf-challenge"),
		[]byte("jschl_vc"),
		[]byte("jschl_answer"),
	}
	scriptGateMarkers = [][]byte{
		[]byte("<noscript>"),
		[]byte("document.cookie"),
	}
)

// detectChallenge inspects a response for known bot-protection pages.
func detectChallenge(status int, header http.Header, body []byte) challengeKind {
	if containsAny(body, captchaMarkers) {
		return challengeCaptcha
	}

	isCloudflare := strings.Contains(strings.ToLower(header.Get("Server")), "cloudflare")
	if isCloudflare && (status == http.StatusServiceUnavailable || status == http.StatusForbidden) &&
		containsAny(body, cloudflareMarkers) {
		return challengeJS
	}

	if status == http.StatusServiceUnavailable && containsAny(body, scriptGateMarkers) && len(body) < 10000 {
		return challengeJS
	}

	return challengeNone
}

func containsAny(body []byte, patterns [][]byte) bool {
	for _, p := range patterns {
		if bytes.Contains(body, p) {
			return true
		}
	}
	return false
}

// maxTitleLength truncates page titles quoted in error messages.
const maxTitleLength = 80

// pageTitle returns the trimmed <title> of an HTML body, or "".
func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength] + "..."
	}
	return title
}

// describeResponse summarizes a response that did not carry a PDF.
func describeResponse(status int, header http.Header, body []byte) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("HTTP %d", status))
	if ct := header.Get("Content-Type"); ct != "" {
		parts = append(parts, "content-type "+ct)
	}
	if kind := detectChallenge(status, header, body); kind != challengeNone {
		parts = append(parts, kind.String()+" challenge")
	}
	if strings.Contains(strings.ToLower(header.Get("Content-Type")), "html") || bytes.Contains(body, []byte("<html")) {
		if title := pageTitle(body); title != "" {
			parts = append(parts, fmt.Sprintf("page %q", title))
		}
	}
	return strings.Join(parts, ", ")
}
