// Package site serves the HTML console: an upload form and the
// rendered overlap listing for a submitted report.
package site

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/tandem/internal/domain/model"
)

// Error constants
var (
	ErrRender = errors.New("site render failed")
	ErrServe  = errors.New("site serve failed")
)

// reportField names the multipart form field carrying the CSV upload.
const reportField = "report"

// Dependencies required by the console pages.
type Dependencies interface {
	Overlaps(ctx context.Context, r io.Reader) (model.Report, error)
}

// Register attaches the console routes to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies, maxUploadBytes int64) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/", NewRootHandler().HandleRoot)
	mux.HandleFunc("/report", NewReportHandler(deps, maxUploadBytes).HandleReport)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests and serves the upload form.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	// "/" matches every otherwise unrouted path; only the root is ours
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	render(w, "index.html", nil)
}

// ReportHandler renders the overlap listing for an uploaded report.
type ReportHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{
		deps:           deps,
		maxUploadBytes: maxUploadBytes,
	}
}

// resultsPage is the template payload for results.html. A non-empty
// Error means the report could not be computed; the page explains why
// instead of showing a table.
type resultsPage struct {
	Error    string
	FileName string
	Report   model.Report
}

// HandleReport handles POST /report requests. Whatever goes wrong with
// the upload or the computation is rendered into the page rather than
// surfaced as an HTTP error, so the console never shows a bare failure.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		render(w, "results.html", resultsPage{Error: "could not read the upload: " + err.Error()})
		return
	}
	f, header, err := r.FormFile(reportField)
	if err != nil {
		render(w, "results.html", resultsPage{Error: "choose a CSV file to upload"})
		return
	}
	defer func() { _ = f.Close() }()

	rep, err := h.deps.Overlaps(r.Context(), f)
	if err != nil {
		render(w, "results.html", resultsPage{
			Error:    err.Error(),
			FileName: header.Filename,
		})
		return
	}

	render(w, "results.html", resultsPage{
		FileName: header.Filename,
		Report:   rep,
	})
}

// render executes a template into a buffer first so a template fault
// cannot leave a half-written page behind.
func render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
