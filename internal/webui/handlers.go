package webui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docfetch"
	"github.com/alnah/go-docfetch/internal/layout"
)

// Flash message classes understood by the index template.
const (
	classSuccess = "success"
	classError   = "error"
)

// Form echoes the submitted values back into the page.
type Form struct {
	URL     string
	Ticker  string
	Year    string
	Quarter string
	DocType string
}

// pageData is the index template's data.
type pageData struct {
	Message  string
	MsgClass string
	Form     Form
	Years    []int
	Quarters []int
}

// yearRange returns the selectable years, newest first:
// two years ahead down to five years back.
func yearRange(current int) []int {
	years := make([]int, 0, 8)
	for y := current + 2; y >= current-5; y-- {
		years = append(years, y)
	}
	return years
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	form := Form{Year: strconv.Itoa(s.config.Now().Year()), Quarter: "1", DocType: "1"}
	s.render(w, r, "", "", form)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := Form{
		URL:     strings.TrimSpace(r.PostFormValue("url")),
		Ticker:  strings.ToUpper(strings.TrimSpace(r.PostFormValue("ticker"))),
		Year:    r.PostFormValue("year"),
		Quarter: r.PostFormValue("quarter"),
		DocType: r.PostFormValue("doc_type"),
	}
	if form.DocType == "" {
		form.DocType = "1"
	}

	if form.URL == "" || form.Ticker == "" {
		s.render(w, r, "URL and Ticker are required.", classError, form)
		return
	}

	year, yearErr := strconv.Atoi(form.Year)
	quarter, quarterErr := strconv.Atoi(form.Quarter)
	if yearErr != nil || quarterErr != nil {
		s.render(w, r, "Invalid year or quarter.", classError, form)
		return
	}

	doc, err := layout.NewDocument(form.Ticker, year, quarter, formDocType(form.DocType))
	if errors.Is(err, layout.ErrInvalidTicker) {
		s.render(w, r, "Invalid ticker.", classError, form)
		return
	}
	if err != nil {
		s.render(w, r, "Invalid year or quarter.", classError, form)
		return
	}

	dest := doc.Path(s.config.OutputDir)
	if err := layout.EnsureParent(dest); err != nil {
		s.render(w, r, fmt.Sprintf("Download failed: %v", err), classError, form)
		return
	}

	log := s.logger.With(
		zap.String("request_id", RequestID(r.Context())),
		zap.String("url", form.URL),
		zap.String("path", doc.RelPath()))

	s.mu.Lock()
	outcome := s.downloader.Download(r.Context(), docfetch.DownloadRequest{
		URL:             form.URL,
		DestinationPath: dest,
	})
	s.mu.Unlock()

	if !outcome.OK() {
		log.Warn("download failed", zap.String("source", string(outcome.Source)), zap.Error(outcome.Err))
		s.render(w, r, fmt.Sprintf("Download failed: %v", outcome.Err), classError, form)
		return
	}

	log.Info("download saved", zap.String("source", string(outcome.Source)))
	s.render(w, r, "Saved: "+doc.RelPath(), classSuccess, form)
}

// formDocType maps the form's select value. "1" is a transcript, anything
// else an earnings release.
func formDocType(v string) layout.DocType {
	if v == "1" {
		return layout.TypeTranscript
	}
	return layout.TypeRelease
}

func (s *Server) handleOpenFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.opener.Open(r.Context(), s.config.OutputDir); err != nil {
		s.logger.Warn("open folder failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("dir", s.config.OutputDir),
			zap.Error(err))
		http.Error(w, "Could not open folder", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status    string `json:"status"`
	OutputDir string `json:"output_dir"`
	Time      string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:    "healthy",
		OutputDir: s.config.OutputDir,
		Time:      s.config.Now().Format(time.RFC3339),
	})
}

// render executes the index template into a buffer so a template error
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, message, class string, form Form) {
	data := pageData{
		Message:  message,
		MsgClass: class,
		Form:     form,
		Years:    yearRange(s.config.Now().Year()),
		Quarters: []int{1, 2, 3, 4},
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("rendering page failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
