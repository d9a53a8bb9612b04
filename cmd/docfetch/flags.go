package main

import (
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	envFile  string
	logLevel string
	verbose  bool
}

// downloadFlags holds flags for the download command.
type downloadFlags struct {
	url         string
	ticker      string
	quarter     string
	docType     string
	output      string
	outputDir   string
	showBrowser bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	addr      string
	outputDir string
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config name or path (default: ./config.yaml if present)")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file with DOCFETCH_* variables")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging (same as --log-level debug)")
}

func addDownloadFlags(fs *flag.FlagSet, f *downloadFlags) {
	fs.StringVarP(&f.url, "url", "u", "", "document or transcript page URL (required)")
	fs.StringVarP(&f.ticker, "ticker", "t", "", "stock ticker, e.g. AAPL (required)")
	fs.StringVarP(&f.quarter, "quarter", "q", "", "earnings quarter, e.g. Q1_2025 or 2025Q1 (required)")
	fs.StringVar(&f.docType, "type", "", "document type: transcript, release (adds suffix and TICKER/YEAR/Qn folders)")
	fs.StringVarP(&f.output, "output", "o", "", "exact output file, overrides naming")
	fs.StringVar(&f.outputDir, "output-dir", "", "output directory (default from config)")
	fs.BoolVar(&f.showBrowser, "show-browser", false, "show the Chrome window during browser downloads")
}

func addServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVar(&f.addr, "addr", "", "listen address (default from config)")
	fs.StringVar(&f.outputDir, "output-dir", "", "output directory (default from config)")
}
