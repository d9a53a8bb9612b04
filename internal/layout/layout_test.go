package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseQuarter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input       string
		wantYear    int
		wantQuarter int
		wantErr     bool
	}{
		{"Q1_2025", 2025, 1, false},
		{"Q12025", 2025, 1, false},
		{"q1 2025", 2025, 1, false},
		{"Q4-2024", 2024, 4, false},
		{"2025Q1", 2025, 1, false},
		{"2025_Q2", 2025, 2, false},
		{"2025-q3", 2025, 3, false},
		{"  Q2_2026  ", 2026, 2, false},
		{"Q5_2025", 0, 0, true},
		{"Q0_2025", 0, 0, true},
		{"2025", 0, 0, true},
		{"Q1_25", 0, 0, true},
		{"Q1_2025x", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			y, q, err := ParseQuarter(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuarter) {
					t.Fatalf("expected ErrInvalidQuarter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if y != tt.wantYear || q != tt.wantQuarter {
				t.Errorf("ParseQuarter(%q) = %d, %d; want %d, %d", tt.input, y, q, tt.wantYear, tt.wantQuarter)
			}
		})
	}
}

func TestParseDocType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    DocType
		wantErr bool
	}{
		{"", TypeNone, false},
		{"1", TypeTranscript, false},
		{"Transcript", TypeTranscript, false},
		{"2", TypeRelease, false},
		{"release", TypeRelease, false},
		{"3", TypeNone, true},
		{"slides", TypeNone, true},
	}

	for _, tt := range tests {
		got, err := ParseDocType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDocType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDocType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDocumentNaming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		typ      DocType
		wantFile string
		wantRel  string
	}{
		{"transcript", TypeTranscript, "2025_Q1_AAPL_transcript.pdf", "AAPL/2025/Q1/2025_Q1_AAPL_transcript.pdf"},
		{"release", TypeRelease, "2025_Q1_AAPL_earning_release.pdf", "AAPL/2025/Q1/2025_Q1_AAPL_earning_release.pdf"},
		{"untyped", TypeNone, "2025_Q1_AAPL.pdf", "AAPL/2025/Q1/2025_Q1_AAPL.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := NewDocument(" aapl ", 2025, 1, tt.typ)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := doc.FileName(); got != tt.wantFile {
				t.Errorf("FileName() = %q, want %q", got, tt.wantFile)
			}
			if got := doc.RelPath(); got != tt.wantRel {
				t.Errorf("RelPath() = %q, want %q", got, tt.wantRel)
			}
			want := filepath.Join("/out", filepath.FromSlash(tt.wantRel))
			if got := doc.Path("/out"); got != want {
				t.Errorf("Path() = %q, want %q", got, want)
			}
		})
	}
}

func TestNewDocumentErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewDocument("  ", 2025, 1, TypeNone); !errors.Is(err, ErrEmptyTicker) {
		t.Errorf("expected ErrEmptyTicker, got %v", err)
	}
	if _, err := NewDocument("MSFT", 2025, 5, TypeNone); !errors.Is(err, ErrInvalidQuarter) {
		t.Errorf("expected ErrInvalidQuarter for quarter 5, got %v", err)
	}
	if _, err := NewDocument("MSFT", 25, 1, TypeNone); !errors.Is(err, ErrInvalidQuarter) {
		t.Errorf("expected ErrInvalidQuarter for year 25, got %v", err)
	}
}

func TestNewDocument_TickerStaysInRoot(t *testing.T) {
	t.Parallel()

	valid := []string{"AAPL", "brk.b", "RDS-A", "7203", "A"}
	for _, ticker := range valid {
		if _, err := NewDocument(ticker, 2025, 1, TypeTranscript); err != nil {
			t.Errorf("NewDocument(%q) unexpected error: %v", ticker, err)
		}
	}

	invalid := []string{
		"../../../../tmp/evil",
		"..",
		".hidden",
		"AAPL/MSFT",
		`AAPL\MSFT`,
		"/etc",
		"AA PL",
		"AAPL\x00",
		"ABCDEFGHIJKLMNOP",
	}
	root := filepath.Join(t.TempDir(), "output")
	for _, ticker := range invalid {
		doc, err := NewDocument(ticker, 2025, 1, TypeTranscript)
		if !errors.Is(err, ErrInvalidTicker) {
			t.Errorf("NewDocument(%q) error = %v, want ErrInvalidTicker (path %q)", ticker, err, doc.Path(root))
		}
	}
}

func TestEnsureParent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	doc, _ := NewDocument("NVDA", 2024, 4, TypeTranscript)
	path := doc.Path(root)

	if err := EnsureParent(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("parent not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("parent is not a directory")
	}

	// Idempotent.
	if err := EnsureParent(path); err != nil {
		t.Errorf("second call failed: %v", err)
	}
}
