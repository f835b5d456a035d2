// internal/server/handlers/analysis.go

package handlers

import (
	"encoding/json"
	"net/http"

	"misintel/internal/domain/analysis"
)

// AnalysisHandler handles content risk scoring requests
type AnalysisHandler struct {
	scorer analysis.Scorer
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(scorer analysis.Scorer) *AnalysisHandler {
	return &AnalysisHandler{
		scorer: scorer,
	}
}

type analyzeRequest struct {
	Content string `json:"content"`
}

// AnalyzeContent scores one piece of content
func (h *AnalysisHandler) AnalyzeContent(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Empty content is allowed; the scorer substitutes a placeholder
	result := h.scorer.Score(r.Context(), req.Content)

	respondWithJSON(w, http.StatusOK, result)
}
