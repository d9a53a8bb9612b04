// Package config loads the docfetch YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docfetch/internal/fileutil"
	"github.com/alnah/go-docfetch/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// DefaultFileName is the optional config file looked up in the working
// directory when no --config is given.
const DefaultFileName = "config.yaml"

// AppDirName is the directory under os.UserConfigDir searched for named configs.
const AppDirName = "docfetch"

// Config holds all configuration for document acquisition.
type Config struct {
	OutputDir string         `yaml:"output_dir"`
	Server    ServerConfig   `yaml:"server"`
	Logging   LoggingConfig  `yaml:"logging"`
	Browser   BrowserConfig  `yaml:"browser"`
	Timeouts  TimeoutsConfig `yaml:"timeouts"`
	Page      PageConfig     `yaml:"page"`

	// path is the file the config was loaded from, empty for defaults.
	path string
}

// ServerConfig defines the web form listener.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	AssetsDir string `yaml:"assets_dir"` // optional template overrides
}

// LoggingConfig defines logger options.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// BrowserConfig defines how Chrome is launched.
type BrowserConfig struct {
	Bin        string `yaml:"bin"`         // empty = auto-detect
	NoSandbox  bool   `yaml:"no_sandbox"`  // required in most containers
	ShowWindow bool   `yaml:"show_window"` // visible window for the session fetcher
}

// TimeoutsConfig holds stage timeouts as duration strings ("15s", "2m").
type TimeoutsConfig struct {
	Classify      string `yaml:"classify"`
	Direct        string `yaml:"direct"`
	Warmup        string `yaml:"warmup"`
	Navigate      string `yaml:"navigate"`
	SessionSettle string `yaml:"session_settle"`
	RenderSettle  string `yaml:"render_settle"`
}

// PageConfig defines PDF page settings for rendered pages.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "./output",
		Server:    ServerConfig{Addr: "127.0.0.1:5000"},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Timeouts: TimeoutsConfig{
			Classify:      "15s",
			Direct:        "120s",
			Warmup:        "30s",
			Navigate:      "60s",
			SessionSettle: "2s",
			RenderSettle:  "3s",
		},
		Page: PageConfig{Size: "letter", Orientation: "portrait", Margin: 0.5},
	}
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// Validate checks enumerations and duration strings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q (must be debug, info, warn, or error)", ErrInvalidConfig, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q (must be console or json)", ErrInvalidConfig, c.Logging.Format)
	}

	// Settle pauses may be zero; stage timeouts may not.
	durations := []struct {
		field, value string
		positive     bool
	}{
		{"timeouts.classify", c.Timeouts.Classify, true},
		{"timeouts.direct", c.Timeouts.Direct, true},
		{"timeouts.warmup", c.Timeouts.Warmup, true},
		{"timeouts.navigate", c.Timeouts.Navigate, true},
		{"timeouts.session_settle", c.Timeouts.SessionSettle, false},
		{"timeouts.render_settle", c.Timeouts.RenderSettle, false},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: invalid %s: %v", ErrInvalidConfig, d.field, err)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, d.field)
		}
		if d.positive && v == 0 {
			return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidConfig, d.field)
		}
	}

	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin must not be negative", ErrInvalidConfig)
	}
	return nil
}

// GetClassifyTimeout returns the HEAD probe timeout.
func (c *TimeoutsConfig) GetClassifyTimeout() time.Duration {
	return parseOr(c.Classify, 15*time.Second)
}

// GetDirectTimeout returns the direct GET timeout.
func (c *TimeoutsConfig) GetDirectTimeout() time.Duration {
	return parseOr(c.Direct, 120*time.Second)
}

// GetWarmupTimeout returns the origin warm-up navigation timeout.
func (c *TimeoutsConfig) GetWarmupTimeout() time.Duration {
	return parseOr(c.Warmup, 30*time.Second)
}

// GetNavigateTimeout returns the page render navigation timeout.
func (c *TimeoutsConfig) GetNavigateTimeout() time.Duration {
	return parseOr(c.Navigate, 60*time.Second)
}

// GetSessionSettle returns the pause after the origin warm-up.
func (c *TimeoutsConfig) GetSessionSettle() time.Duration {
	return parseOr(c.SessionSettle, 2*time.Second)
}

// GetRenderSettle returns the pause before printing a rendered page.
func (c *TimeoutsConfig) GetRenderSettle() time.Duration {
	return parseOr(c.RenderSettle, 3*time.Second)
}

// parseOr parses s, falling back to def when s is empty or malformed.
// An explicit "0s" is kept.
func parseOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) || strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	return loadFile(configPath)
}

// LoadDefault loads config.yaml from dir when present, otherwise returns
// DefaultConfig with output_dir resolved against dir.
func LoadDefault(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultFileName)
	if fileutil.FileExists(path) {
		return loadFile(path)
	}

	cfg := DefaultConfig()
	cfg.OutputDir = resolveOutputDir(cfg.OutputDir, dir)
	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(data, cfg); err != nil && !errors.Is(err, yamlutil.ErrEmptyInput) {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}
	cfg.path = abs
	cfg.OutputDir = resolveOutputDir(cfg.OutputDir, filepath.Dir(abs))
	if cfg.Server.AssetsDir != "" {
		cfg.Server.AssetsDir = resolveOutputDir(cfg.Server.AssetsDir, filepath.Dir(abs))
	}

	return cfg, nil
}

// resolveOutputDir makes a relative directory relative to base.
func resolveOutputDir(dir, base string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/docfetch/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
