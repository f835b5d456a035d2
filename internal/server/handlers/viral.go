// internal/server/handlers/viral.go

package handlers

import (
	"encoding/json"
	"net/http"

	"misintel/internal/domain/post"
	"misintel/internal/domain/viral"
)

// ViralHandler handles viral amplification requests
type ViralHandler struct {
	tracker viral.Tracker
}

// NewViralHandler creates a new viral handler
func NewViralHandler(tracker viral.Tracker) *ViralHandler {
	return &ViralHandler{
		tracker: tracker,
	}
}

type viralRequest struct {
	Posts []post.Post `json:"posts"`
}

// FilterViral returns viral records for the submitted posts. An empty
// batch yields an empty list.
func (h *ViralHandler) FilterViral(w http.ResponseWriter, r *http.Request) {
	var req viralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	records := h.tracker.FilterViral(r.Context(), req.Posts)

	respondWithJSON(w, http.StatusOK, records)
}
