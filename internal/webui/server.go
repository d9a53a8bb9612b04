// Package webui serves the local download form.
package webui

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docfetch"
	"github.com/alnah/go-docfetch/internal/assets"
)

// Downloader is the acquisition pipeline the form drives.
type Downloader interface {
	Download(ctx context.Context, req docfetch.DownloadRequest) docfetch.Outcome
}

// FolderOpener reveals a directory in the desktop file manager.
type FolderOpener interface {
	Open(ctx context.Context, dir string) error
}

// Config contains HTTP server configuration.
type Config struct {
	Addr         string
	OutputDir    string
	AssetsDir    string // optional template overrides
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Now returns the current time; the year list is built from it.
	Now func() time.Time
}

// DefaultConfig returns default server configuration.
// WriteTimeout covers a full direct, browser and render attempt.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:5000",
		OutputDir:    "./output",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
		Now:          time.Now,
	}
}

// Server is the web form server.
type Server struct {
	config     *Config
	downloader Downloader
	opener     FolderOpener
	logger     *zap.Logger
	tmpl       *template.Template
	server     *http.Server

	// mu serializes downloads so two submissions never race on one browser.
	mu sync.Mutex
}

// New creates a Server. The index template is parsed once here.
func New(cfg *Config, dl Downloader, op FolderOpener, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	resolver, err := assets.NewAssetResolver(cfg.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	content, err := resolver.LoadTemplate(assets.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	tmpl, err := template.New(assets.IndexTemplate).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", assets.IndexTemplate, err)
	}

	s := &Server{
		config:     cfg,
		downloader: dl,
		opener:     op,
		logger:     logger,
		tmpl:       tmpl,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /download", s.handleDownload)
	mux.HandleFunc("POST /open-folder", s.handleOpenFolder)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Other sites the user visits must not be able to post to the form.
	csrf := http.NewCrossOriginProtection()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      RequestIDMiddleware(LoggingMiddleware(logger)(csrf.Handler(mux))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.String("output_dir", s.config.OutputDir))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
