// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
)

// TopPairsDependencies defines the interface for ranked pair listings.
type TopPairsDependencies interface {
	TopPairs(ctx context.Context, r io.Reader, limit int) ([]Entry, error)
}

// TopPairsHandler handles ranked pair listing requests.
type TopPairsHandler struct {
	deps           TopPairsDependencies
	maxLimit       int
	maxUploadBytes int64
}

// NewTopPairsHandler creates a new ranked listing handler.
func NewTopPairsHandler(deps TopPairsDependencies, maxLimit int, maxUploadBytes int64) *TopPairsHandler {
	return &TopPairsHandler{
		deps:           deps,
		maxLimit:       maxLimit,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandlePostTopPairs handles POST /toppairs?limit=N requests. The limit
// is optional; when absent the service default applies.
func (h *TopPairsHandler) HandlePostTopPairs(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_toppairs"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	body, err := reportBody(w, r, h.maxUploadBytes)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	defer func() { _ = body.Close() }()

	entries, err := h.deps.TopPairs(r.Context(), body, limit)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
