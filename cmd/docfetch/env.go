package main

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docfetch"
	"github.com/alnah/go-docfetch/internal/config"
	"github.com/alnah/go-docfetch/internal/opener"
	"github.com/alnah/go-docfetch/internal/webui"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and the acquisition pipeline.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Getwd  func() (string, error)
	Config *config.Config // set by the root command before any RunE

	// NewDownloader builds the pipeline from the resolved config.
	NewDownloader func(cfg *config.Config, logger *zap.Logger, showBrowser bool) webui.Downloader
	Opener        webui.FolderOpener
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:           time.Now,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Getwd:         os.Getwd,
		Config:        config.DefaultConfig(),
		NewDownloader: newDownloader,
		Opener:        opener.New(),
	}
}

// newDownloader translates the config file into library options.
func newDownloader(cfg *config.Config, logger *zap.Logger, showBrowser bool) webui.Downloader {
	t := cfg.Timeouts
	return docfetch.New(
		docfetch.WithLogger(logger),
		docfetch.WithTimeouts(docfetch.Timeouts{
			Classify:      t.GetClassifyTimeout(),
			Direct:        t.GetDirectTimeout(),
			Warmup:        t.GetWarmupTimeout(),
			Navigate:      t.GetNavigateTimeout(),
			SessionSettle: t.GetSessionSettle(),
			RenderSettle:  t.GetRenderSettle(),
		}),
		docfetch.WithPageSettings(&docfetch.PageSettings{
			Size:        cfg.Page.Size,
			Orientation: cfg.Page.Orientation,
			Margin:      cfg.Page.Margin,
		}),
		docfetch.WithBrowser(docfetch.BrowserOptions{
			Bin:        cfg.Browser.Bin,
			NoSandbox:  cfg.Browser.NoSandbox,
			ShowWindow: cfg.Browser.ShowWindow || showBrowser,
		}),
	)
}
