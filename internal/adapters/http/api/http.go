// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/okian/tandem/internal/adapters/report"
	"github.com/okian/tandem/internal/domain/model"
	"github.com/okian/tandem/internal/domain/overlap"
	"github.com/okian/tandem/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Overlaps computes the full per-project overlap listing for one
	// CSV report.
	Overlaps(ctx context.Context, r io.Reader) (model.Report, error)

	// TopPair finds the single longest-working pair in one CSV report.
	TopPair(ctx context.Context, r io.Reader) (model.TopPair, error)

	// TopPairs lists up to limit pairs ranked by summed overlap.
	TopPairs(ctx context.Context, r io.Reader, limit int) ([]Entry, error)
}

// Entry mirrors the read shape returned by ranked pair queries.
type Entry = types.Entry

// reportField names the multipart form field carrying the CSV upload.
const reportField = "report"

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	overlapsHandler  *OverlapsHandler
	topPairHandler   *TopPairHandler
	topPairsHandler  *TopPairsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int, maxUploadBytes int64) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		overlapsHandler:  NewOverlapsHandler(deps, maxUploadBytes),
		topPairHandler:   NewTopPairHandler(deps, maxUploadBytes),
		topPairsHandler:  NewTopPairsHandler(deps, maxLimit, maxUploadBytes),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/overlaps", MetricsMiddleware(s.overlapsHandler.HandlePostOverlaps, "overlaps"))
	mux.HandleFunc("/toppair", MetricsMiddleware(s.topPairHandler.HandlePostTopPair, "toppair"))
	mux.HandleFunc("/toppairs", MetricsMiddleware(s.topPairsHandler.HandlePostTopPairs, "toppairs"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps upstream errors onto HTTP status codes and stable
// machine-readable codes.
func statusFor(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	var schemaErr *report.SchemaError
	var rowErr *report.RowParseError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, "invalid_report"
	case errors.As(err, &rowErr):
		return http.StatusUnprocessableEntity, "invalid_report"
	case errors.Is(err, overlap.ErrNoOverlap):
		return http.StatusNotFound, "no_overlap"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// reportBody extracts the CSV payload from a request. Clients either
// stream the CSV as the raw request body or upload it as the "report"
// file of a multipart form. The returned reader is capped at maxBytes.
func reportBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (io.ReadCloser, error) {
	const op = "api.report_body"
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	f, _, err := r.FormFile(reportField)
	if err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return f, nil
}
