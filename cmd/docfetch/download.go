package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-docfetch"
	"github.com/alnah/go-docfetch/internal/layout"
)

// ErrOutputDir reports a failure to prepare the destination directory.
var ErrOutputDir = errors.New("cannot create output directory")

func newDownloadCmd(env *Environment, _ *commonFlags) *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download --url URL --ticker TICKER --quarter QUARTER",
		Short: "Download one document as PDF",
		Example: `  docfetch download --url https://ir.example.com/q1.pdf --ticker AAPL --quarter Q1_2025
  docfetch download -u https://example.com/transcript -t msft -q 2025Q2 --type transcript`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDownload(cmd, env, &f)
		},
	}
	addDownloadFlags(cmd.Flags(), &f)
	return cmd
}

// runDownload resolves the destination, runs the pipeline and prints the
// progress lines.
func runDownload(cmd *cobra.Command, env *Environment, f *downloadFlags) error {
	var missing []string
	if strings.TrimSpace(f.url) == "" {
		missing = append(missing, "--url")
	}
	if strings.TrimSpace(f.ticker) == "" {
		missing = append(missing, "--ticker")
	}
	if strings.TrimSpace(f.quarter) == "" {
		missing = append(missing, "--quarter")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required flags not set: %s", ErrUsage, strings.Join(missing, ", "))
	}

	year, quarter, err := layout.ParseQuarter(f.quarter)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	typ, err := layout.ParseDocType(f.docType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	doc, err := layout.NewDocument(f.ticker, year, quarter, typ)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	outputDir := env.Config.OutputDir
	if f.outputDir != "" {
		outputDir = f.outputDir
	}
	dest := resolveDestination(doc, outputDir, f.output)
	if err := layout.EnsureParent(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	log, err := newLogger(env)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer func() { _ = log.Sync() }()

	fmt.Fprintf(env.Stdout, "Downloading: %s\n", f.url)
	fmt.Fprintf(env.Stdout, "Saving to:   %s\n", dest)

	dl := env.NewDownloader(env.Config, log, f.showBrowser)
	outcome := dl.Download(cmd.Context(), docfetch.DownloadRequest{
		URL:             strings.TrimSpace(f.url),
		DestinationPath: dest,
	})
	if !outcome.OK() {
		log.Debug("download failed", zap.String("source", string(outcome.Source)), zap.Error(outcome.Err))
		return outcome.Err
	}

	fmt.Fprintln(env.Stdout, "Done.")
	return nil
}

// resolveDestination picks the output file.
// An explicit --output wins. Without a document type the file sits directly
// in outputDir as {year}_Q{q}_{TICKER}.pdf; with one it goes under
// TICKER/YEAR/Qn like the web form.
func resolveDestination(doc layout.Document, outputDir, output string) string {
	if output != "" {
		return filepath.Clean(output)
	}
	if doc.Type == layout.TypeNone {
		return filepath.Join(outputDir, doc.FileName())
	}
	return doc.Path(outputDir)
}
