package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.OutputDir != "./output" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "./output")
	}
	if cfg.Server.Addr != "127.0.0.1:5000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Page.Size != "letter" || cfg.Page.Orientation != "portrait" || cfg.Page.Margin != 0.5 {
		t.Errorf("Page = %+v", cfg.Page)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestTimeoutAccessors(t *testing.T) {
	t.Parallel()

	def := DefaultConfig().Timeouts
	checks := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"classify", def.GetClassifyTimeout(), 15 * time.Second},
		{"direct", def.GetDirectTimeout(), 120 * time.Second},
		{"warmup", def.GetWarmupTimeout(), 30 * time.Second},
		{"navigate", def.GetNavigateTimeout(), 60 * time.Second},
		{"session settle", def.GetSessionSettle(), 2 * time.Second},
		{"render settle", def.GetRenderSettle(), 3 * time.Second},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	zero := TimeoutsConfig{RenderSettle: "0s", Classify: "bogus"}
	if got := zero.GetRenderSettle(); got != 0 {
		t.Errorf("explicit 0s should be kept, got %v", got)
	}
	if got := zero.GetClassifyTimeout(); got != 15*time.Second {
		t.Errorf("malformed value should fall back, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty output dir", func(c *Config) { c.OutputDir = " " }, "output_dir"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad duration", func(c *Config) { c.Timeouts.Direct = "two minutes" }, "timeouts.direct"},
		{"negative duration", func(c *Config) { c.Timeouts.Warmup = "-1s" }, "timeouts.warmup"},
		{"zero stage timeout", func(c *Config) { c.Timeouts.Classify = "0s" }, "timeouts.classify"},
		{"zero settle allowed", func(c *Config) { c.Timeouts.RenderSettle = "0s" }, ""},
		{"negative margin", func(c *Config) { c.Page.Margin = -1 }, "page.margin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "docfetch.yaml")
		content := "output_dir: transcripts\ntimeouts:\n  direct: 30s\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OutputDir != filepath.Join(dir, "transcripts") {
			t.Errorf("OutputDir = %q, want resolved against config dir", cfg.OutputDir)
		}
		if got := cfg.Timeouts.GetDirectTimeout(); got != 30*time.Second {
			t.Errorf("direct timeout = %v", got)
		}
		if got := cfg.Timeouts.GetWarmupTimeout(); got != 30*time.Second {
			t.Errorf("warmup default lost, got %v", got)
		}
		if cfg.Path() == "" {
			t.Error("Path() should be set")
		}
	})

	t.Run("absolute output dir kept", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		out := filepath.Join(t.TempDir(), "pdfs")
		path := filepath.Join(dir, "c.yaml")
		if err := os.WriteFile(path, []byte("output_dir: "+out+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OutputDir != out {
			t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, out)
		}
	})

	t.Run("relative assets dir resolved", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "c.yaml")
		if err := os.WriteFile(path, []byte("server:\n  assets_dir: ui\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Server.AssetsDir != filepath.Join(dir, "ui") {
			t.Errorf("AssetsDir = %q", cfg.Server.AssetsDir)
		}
		if cfg.Server.Addr != "127.0.0.1:5000" {
			t.Errorf("addr default lost, got %q", cfg.Server.Addr)
		}
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "c.yaml")
		if err := os.WriteFile(path, []byte("outptu_dir: x\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("expected ErrConfigParse, got %v", err)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "c.yaml")
		if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("docfetch-test-does-not-exist")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "tried") {
			t.Errorf("error should list tried paths: %v", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("expected ErrEmptyConfigName, got %v", err)
		}
	})
}

func TestLoadDefault(t *testing.T) {
	t.Parallel()

	t.Run("no file uses defaults", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg, err := LoadDefault(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OutputDir != filepath.Join(dir, "output") {
			t.Errorf("OutputDir = %q", cfg.OutputDir)
		}
		if cfg.Path() != "" {
			t.Errorf("Path() = %q, want empty", cfg.Path())
		}
	})

	t.Run("config.yaml picked up", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("server:\n  addr: \":8080\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadDefault(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("Server.Addr = %q", cfg.Server.Addr)
		}
	})

	t.Run("comment-only file uses defaults", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("# nothing yet\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadDefault(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Server.Addr != "127.0.0.1:5000" {
			t.Errorf("Server.Addr = %q", cfg.Server.Addr)
		}
	})
}
