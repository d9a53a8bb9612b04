package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-docfetch/internal/yamlutil"
)

type testConfig struct {
	OutputDir string `yaml:"output_dir"`
	Server    struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Margin float64 `yaml:"margin"`
}

// ---------------------------------------------------------------------------
// TestDecodeStrict - Strict YAML decoding
// ---------------------------------------------------------------------------

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       string
		dest       any
		wantErr    error
		wantAnyErr bool
		check      func(t *testing.T, cfg *testConfig)
	}{
		{
			name: "nested document",
			data: "output_dir: ./output\nserver:\n  addr: 127.0.0.1:5000\nmargin: 0.75\n",
			dest: &testConfig{},
			check: func(t *testing.T, cfg *testConfig) {
				if cfg.OutputDir != "./output" {
					t.Errorf("OutputDir = %q", cfg.OutputDir)
				}
				if cfg.Server.Addr != "127.0.0.1:5000" {
					t.Errorf("Server.Addr = %q", cfg.Server.Addr)
				}
				if cfg.Margin != 0.75 {
					t.Errorf("Margin = %v", cfg.Margin)
				}
			},
		},
		{
			name:       "unknown key rejected",
			data:       "output_dir: ./output\nouput: typo\n",
			dest:       &testConfig{},
			wantAnyErr: true,
		},
		{
			name:       "syntax error",
			data:       "server: [unclosed",
			dest:       &testConfig{},
			wantAnyErr: true,
		},
		{
			name:    "empty input",
			data:    "  \n",
			dest:    &testConfig{},
			wantErr: yamlutil.ErrEmptyInput,
		},
		{
			name:    "nil destination",
			data:    "output_dir: x",
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name: "comments only",
			data: "# nothing configured yet\n",
			dest: &testConfig{},
			check: func(t *testing.T, cfg *testConfig) {
				if cfg.OutputDir != "" {
					t.Errorf("OutputDir = %q, want empty", cfg.OutputDir)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.DecodeStrict([]byte(tt.data), tt.dest)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if tt.wantAnyErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.HasPrefix(err.Error(), "yamlutil:") {
					t.Errorf("error should be prefixed, got %q", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest.(*testConfig))
			}
		})
	}
}

func TestDecodeStrict_TooLarge(t *testing.T) {
	t.Parallel()

	data := "output_dir: " + strings.Repeat("a", yamlutil.MaxInputSize) + "\n"
	err := yamlutil.DecodeStrict([]byte(data), &testConfig{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge, got %v", err)
	}
}

func TestReadStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.ReadStrict(strings.NewReader("output_dir: /srv/docs\n"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutputDir != "/srv/docs" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}
