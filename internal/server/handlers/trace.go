// internal/server/handlers/trace.go

package handlers

import (
	"encoding/json"
	"net/http"

	"misintel/internal/domain/trace"
)

// TraceHandler handles origin trace requests
type TraceHandler struct {
	tracer trace.Tracer
}

// NewTraceHandler creates a new trace handler
func NewTraceHandler(tracer trace.Tracer) *TraceHandler {
	return &TraceHandler{
		tracer: tracer,
	}
}

type traceRequest struct {
	Content         string   `json:"content"`
	SuspectAccounts []string `json:"suspect_accounts,omitempty"`
}

// TraceOrigin runs a propagation trace for the submitted content. A
// trace_confidence of 0.0 in the response means no usable result.
func (h *TraceHandler) TraceOrigin(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.tracer.Trace(r.Context(), req.Content, req.SuspectAccounts)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to trace origin")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
