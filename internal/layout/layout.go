// Package layout names downloaded documents and places them in the output tree.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors for layout operations.
var (
	ErrInvalidQuarter = errors.New("cannot parse quarter")
	ErrInvalidDocType = errors.New("invalid document type")
	ErrEmptyTicker    = errors.New("ticker cannot be empty")
	ErrInvalidTicker  = errors.New("invalid ticker")
)

// QuarterFormats lists the accepted quarter spellings for error messages.
const QuarterFormats = "Q1_2025, 2025Q1, 2025_Q1, q12025"

var (
	quarterFirst = regexp.MustCompile(`^[Qq]([1-4])[\s_-]*(\d{4})$`)
	yearFirst    = regexp.MustCompile(`^(\d{4})[\s_-]*[Qq]([1-4])$`)

	// tickerPattern keeps the ticker a single path segment: letters, digits,
	// dots and dashes, never starting with a dot.
	tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.-]{0,14}$`)
)

// ParseQuarter parses a flexible quarter string into year and quarter.
// Accepted: Q1_2025, Q12025, q1 2025, 2025Q1, 2025_Q1, 2025-q1.
func ParseQuarter(raw string) (year, quarter int, err error) {
	s := strings.TrimSpace(raw)

	if m := quarterFirst.FindStringSubmatch(s); m != nil {
		return atoi(m[2]), atoi(m[1]), nil
	}
	if m := yearFirst.FindStringSubmatch(s); m != nil {
		return atoi(m[1]), atoi(m[2]), nil
	}
	return 0, 0, fmt.Errorf("%w %q (expected formats: %s)", ErrInvalidQuarter, raw, QuarterFormats)
}

// atoi is only called on regexp digit groups.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// DocType identifies what kind of document is stored.
type DocType string

const (
	TypeNone       DocType = ""
	TypeTranscript DocType = "transcript"
	TypeRelease    DocType = "release"
)

// ParseDocType accepts the CLI names and the web form values ("1", "2").
func ParseDocType(s string) (DocType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TypeNone, nil
	case "1", "transcript":
		return TypeTranscript, nil
	case "2", "release", "earning_release", "earnings_release":
		return TypeRelease, nil
	default:
		return TypeNone, fmt.Errorf("%w: %q (must be transcript or release)", ErrInvalidDocType, s)
	}
}

// Suffix returns the file name suffix for the type.
func (t DocType) Suffix() string {
	switch t {
	case TypeTranscript:
		return "_transcript"
	case TypeRelease:
		return "_earning_release"
	default:
		return ""
	}
}

// Document identifies one downloaded file.
type Document struct {
	Ticker  string
	Year    int
	Quarter int
	Type    DocType
}

// NewDocument normalizes the ticker and validates the period. Tickers are
// limited to 15 letters, digits, dots or dashes so the document always lands
// under the output root.
func NewDocument(ticker string, year, quarter int, typ DocType) (Document, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return Document{}, ErrEmptyTicker
	}
	if !tickerPattern.MatchString(t) {
		return Document{}, fmt.Errorf("%w: %q (letters, digits, dots and dashes only)", ErrInvalidTicker, ticker)
	}
	if quarter < 1 || quarter > 4 {
		return Document{}, fmt.Errorf("%w: quarter %d out of range", ErrInvalidQuarter, quarter)
	}
	if year < 1000 || year > 9999 {
		return Document{}, fmt.Errorf("%w: year %d out of range", ErrInvalidQuarter, year)
	}
	return Document{Ticker: t, Year: year, Quarter: quarter, Type: typ}, nil
}

// FileName returns {year}_Q{q}_{TICKER}{suffix}.pdf.
func (d Document) FileName() string {
	return fmt.Sprintf("%d_Q%d_%s%s.pdf", d.Year, d.Quarter, d.Ticker, d.Type.Suffix())
}

// RelPath returns TICKER/YEAR/Qn/FileName using forward slashes.
func (d Document) RelPath() string {
	return fmt.Sprintf("%s/%d/Q%d/%s", d.Ticker, d.Year, d.Quarter, d.FileName())
}

// Path returns the absolute location of the document under root.
func (d Document) Path(root string) string {
	return filepath.Join(root, filepath.FromSlash(d.RelPath()))
}

// EnsureParent creates the parent directory of path.
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
