// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"io"
	"net/http"

	"github.com/okian/tandem/internal/domain/model"
)

// TopPairDependencies defines the interface for top pair operations.
type TopPairDependencies interface {
	TopPair(ctx context.Context, r io.Reader) (model.TopPair, error)
}

// TopPairHandler handles top pair requests.
type TopPairHandler struct {
	deps           TopPairDependencies
	maxUploadBytes int64
}

// NewTopPairHandler creates a new top pair handler.
func NewTopPairHandler(deps TopPairDependencies, maxUploadBytes int64) *TopPairHandler {
	return &TopPairHandler{
		deps:           deps,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandlePostTopPair handles POST /toppair requests. A report where no
// two employees ever overlap answers 404 with the no_overlap code.
func (h *TopPairHandler) HandlePostTopPair(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_toppair"
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

	top, err := h.deps.TopPair(r.Context(), body)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, top)
}
