package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-docfetch/internal/config"
)

// envPrefix is shared by every recognized variable.
const envPrefix = "DOCFETCH_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // DOCFETCH_CONFIG: config name or path
	OutputDir  string // DOCFETCH_OUTPUT_DIR: output directory
	Addr       string // DOCFETCH_ADDR: web form listen address

	// Tier 2 - Logging
	LogLevel  string // DOCFETCH_LOG_LEVEL: debug, info, warn, error
	LogFormat string // DOCFETCH_LOG_FORMAT: console, json

	// Tier 3 - Browser and page
	BrowserBin string // DOCFETCH_BROWSER_BIN: Chrome binary
	NoSandbox  *bool  // DOCFETCH_NO_SANDBOX: 1/true to disable the sandbox
	PageSize   string // DOCFETCH_PAGE_SIZE: letter, a4, legal

	// Tier 4 - Timeouts (duration strings)
	DirectTimeout   string // DOCFETCH_DIRECT_TIMEOUT
	NavigateTimeout string // DOCFETCH_NAVIGATE_TIMEOUT
}

// knownEnvVars lists valid DOCFETCH_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"DOCFETCH_CONFIG":     true,
	"DOCFETCH_OUTPUT_DIR": true,
	"DOCFETCH_ADDR":       true,
	// Tier 2 - Logging
	"DOCFETCH_LOG_LEVEL":  true,
	"DOCFETCH_LOG_FORMAT": true,
	// Tier 3 - Browser and page
	"DOCFETCH_BROWSER_BIN": true,
	"DOCFETCH_NO_SANDBOX":  true,
	"DOCFETCH_PAGE_SIZE":   true,
	// Tier 4 - Timeouts
	"DOCFETCH_DIRECT_TIMEOUT":   true,
	"DOCFETCH_NAVIGATE_TIMEOUT": true,
	// Detection override read by doctor
	"DOCFETCH_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized DOCFETCH_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:      os.Getenv("DOCFETCH_CONFIG"),
		OutputDir:       os.Getenv("DOCFETCH_OUTPUT_DIR"),
		Addr:            os.Getenv("DOCFETCH_ADDR"),
		LogLevel:        os.Getenv("DOCFETCH_LOG_LEVEL"),
		LogFormat:       os.Getenv("DOCFETCH_LOG_FORMAT"),
		BrowserBin:      os.Getenv("DOCFETCH_BROWSER_BIN"),
		PageSize:        os.Getenv("DOCFETCH_PAGE_SIZE"),
		DirectTimeout:   os.Getenv("DOCFETCH_DIRECT_TIMEOUT"),
		NavigateTimeout: os.Getenv("DOCFETCH_NAVIGATE_TIMEOUT"),
	}

	// Unparseable booleans are ignored rather than guessed.
	if v := os.Getenv("DOCFETCH_NO_SANDBOX"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NoSandbox = &b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOCFETCH_* variables.
// Helps catch typos like DOCFETCH_OUTPUTDIR instead of DOCFETCH_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				unknown = append(unknown, name)
			}
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables replace file values; flags are applied after this.
// This ensures: CLI flags > env vars > config file > defaults
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1
	if env.OutputDir != "" {
		cfg.OutputDir = env.OutputDir
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}

	// Tier 2
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = env.LogFormat
	}

	// Tier 3
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.NoSandbox != nil {
		cfg.Browser.NoSandbox = *env.NoSandbox
	}
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}

	// Tier 4
	if env.DirectTimeout != "" {
		cfg.Timeouts.Direct = env.DirectTimeout
	}
	if env.NavigateTimeout != "" {
		cfg.Timeouts.Navigate = env.NavigateTimeout
	}
}
