// Package docfetch downloads documents such as earnings call transcripts and
// releases as PDF files, getting past bot protection when it has to.
//
// # Quick Start
//
// Create a downloader and ask it for one file:
//
//	d := docfetch.New()
//	out := d.Download(ctx, docfetch.DownloadRequest{
//	    URL:             "https://investor.example.com/q1-2025-transcript.pdf",
//	    DestinationPath: "AAPL/2025/Q1/2025_Q1_AAPL_transcript.pdf",
//	})
//	if !out.OK() {
//	    log.Fatal(out.Err)
//	}
//	fmt.Println("saved", out.Path, "via", out.Source)
//
// The parent directory of DestinationPath must already exist.
//
// # Acquisition Pipeline
//
// Each call picks one of two routes:
//
//  1. Classification: a URL whose path ends in .pdf is a PDF; otherwise a
//     HEAD probe checks for an application/pdf content type.
//  2. PDF route: a direct GET with a Chrome TLS fingerprint. If the answer is
//     not a PDF (an anti-bot page, an error status, a network failure) the
//     same request is retried once from inside a real browser that first
//     visits the origin to collect its cookies.
//  3. Page route: the page is loaded in headless Chrome and printed to PDF.
//
// A file is only ever written after its bytes were checked to start with
// %PDF-, and it is written through a temporary file and a rename, so the
// destination never holds a partial or non-PDF payload.
//
// # Configuration
//
// Use functional options to customize the downloader:
//
//	d := docfetch.New(
//	    docfetch.WithTimeouts(timeouts),
//	    docfetch.WithPageSettings(&docfetch.PageSettings{Size: "a4", Orientation: "portrait", Margin: 0.5}),
//	    docfetch.WithBrowser(docfetch.BrowserOptions{ShowWindow: true}),
//	    docfetch.WithLogger(logger),
//	)
//
// # Errors
//
// Failures are reported through Outcome.Err and match the sentinel errors
// with errors.Is: ErrBrowserFetch (with *StatusError carrying the status),
// ErrInvalidContent, ErrRender, ErrBrowserConnect and ErrWritePDF.
// ErrDirectFetch never reaches the caller; it triggers the browser retry.
//
// # Browser Requirements
//
// The browser stages require Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package docfetch
