// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"io"
	"net/http"

	"github.com/okian/tandem/internal/domain/model"
)

// OverlapsDependencies defines the interface for overlap listing operations.
type OverlapsDependencies interface {
	Overlaps(ctx context.Context, r io.Reader) (model.Report, error)
}

// OverlapsHandler handles overlap listing requests.
type OverlapsHandler struct {
	deps           OverlapsDependencies
	maxUploadBytes int64
}

// NewOverlapsHandler creates a new overlaps handler.
func NewOverlapsHandler(deps OverlapsDependencies, maxUploadBytes int64) *OverlapsHandler {
	return &OverlapsHandler{
		deps:           deps,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandlePostOverlaps handles POST /overlaps requests. The CSV report
// travels as the request body or as the "report" file of a multipart
// form; the response is the full per-project overlap listing.
func (h *OverlapsHandler) HandlePostOverlaps(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_overlaps"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := reportBody(w, r, h.maxUploadBytes)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	defer func() { _ = body.Close() }()

	rep, err := h.deps.Overlaps(r.Context(), body)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
