package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/alnah/go-docfetch/internal/config"
	"github.com/alnah/go-docfetch/internal/fileutil"
	"github.com/alnah/go-docfetch/internal/hints"
)

// ErrNotReady is returned by doctor when a blocking problem was found.
var ErrNotReady = errors.New("environment not ready")

// versionProbeTimeout bounds "chrome --version".
const versionProbeTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Source  string `json:"source,omitempty"` // which variable or lookup found it
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
	DocfetchBin   string `json:"docfetch_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool   `json:"temp_writable"`
	WorkDir      string `json:"work_dir,omitempty"`
	WorkWritable bool   `json:"work_dir_writable"`
}

func newDoctorCmd(env *Environment, common *commonFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check Chrome and the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A broken config must not stop the diagnostics; it is reported
			// as a warning instead.
			cfg, err := resolveConfig(env, common, cmd.Flags().Changed("env-file"))
			if err == nil {
				env.Config = cfg
			}
			return runDoctorCmd(cmd.Context(), env, jsonOutput, err)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "machine-readable output")
	return cmd
}

// runDoctorCmd prints the diagnostics and returns ErrNotReady on errors.
// Warnings alone do not fail the command. configErr is the outcome of loading
// the configuration; env.Config is only consulted when it is nil.
func runDoctorCmd(ctx context.Context, env *Environment, jsonOutput bool, configErr error) error {
	result := runDoctor(ctx, env, configErr)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ErrNotReady
	}
	return nil
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment, configErr error) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			NoSandbox:   os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin:  os.Getenv("ROD_BROWSER_BIN"),
			DocfetchBin: os.Getenv("DOCFETCH_BROWSER_BIN"),
		},
	}

	var cfg *config.Config
	if configErr != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Config not loaded, browser settings from it are not checked: %v", configErr))
	} else {
		cfg = env.Config
	}

	checkChrome(ctx, result, cfg)
	checkEnvironment(result, cfg)
	checkSystem(env, result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
// Lookup order matches the downloader: browser.bin (DOCFETCH_BROWSER_BIN
// overrides the file), ROD_BROWSER_BIN, then rod's well-known install
// locations.
func checkChrome(ctx context.Context, result *doctorResult, cfg *config.Config) {
	chromePath, source := result.Env.DocfetchBin, "DOCFETCH_BROWSER_BIN"
	if cfg != nil && cfg.Browser.Bin != "" && cfg.Browser.Bin != chromePath {
		chromePath, source = cfg.Browser.Bin, "config browser.bin"
	}
	if chromePath == "" {
		chromePath, source = result.Env.BrowserBin, "ROD_BROWSER_BIN"
	}
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
		source = "auto-detected"
	}

	if !fileutil.FileExists(chromePath) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s (%s)", chromePath, source))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Source = source

	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, chromePath, "--version").Output() // #nosec G204 -- path from user environment
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// The launcher disables the sandbox for any explicit binary.
	explicitBin := source != "auto-detected"
	configNoSandbox := cfg != nil && cfg.Browser.NoSandbox
	result.Chrome.Sandbox = !explicitBin && !configNoSandbox &&
		result.Env.NoSandbox != "1" && os.Getenv("CI") != "true"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, cfg *config.Config) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = hints.InCI() || os.Getenv("CIRCLECI") != ""

	configNoSandbox := cfg != nil && cfg.Browser.NoSandbox
	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && !configNoSandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1 or browser.no_sandbox: true")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("DOCFETCH_CONTAINER") == "1" {
		return true, "DOCFETCH_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp and working directories are writable.
// Atomic writes create their temp file next to the destination, so the
// working directory (default output root) matters as much as os.TempDir.
func checkSystem(env *Environment, result *doctorResult) {
	if fileutil.DirWritable(os.TempDir()) {
		result.System.TempWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	}

	if env.Getwd == nil {
		return
	}
	wd, err := env.Getwd()
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Cannot resolve working directory: %v", err))
		return
	}
	result.System.WorkDir = wd
	result.System.WorkWritable = fileutil.DirWritable(wd)
	if !result.System.WorkWritable {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Working directory not writable: %s (set output_dir)", wd))
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docfetch doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s (%s)\n", r.Chrome.Path, r.Chrome.Source)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.WorkDir != "" {
		if r.System.WorkWritable {
			fmt.Fprintf(w, "  [OK] Working directory: writable (%s)\n", r.System.WorkDir)
		} else {
			fmt.Fprintf(w, "  [WARN] Working directory: not writable (%s)\n", r.System.WorkDir)
		}
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to download")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
