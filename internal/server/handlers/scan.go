// internal/server/handlers/scan.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"misintel/internal/adapter/storage"
	"misintel/internal/service/scan"
)

// ScanHandler handles scan pipeline requests
type ScanHandler struct {
	service *scan.Service
}

// NewScanHandler creates a new scan handler
func NewScanHandler(service *scan.Service) *ScanHandler {
	return &ScanHandler{
		service: service,
	}
}

type scanRequest struct {
	Query         string `json:"query"`
	MaxPosts      int    `json:"max_posts"`
	MinEngagement int    `json:"min_engagement"`
}

// RunScan collects and analyzes posts about a query
func (h *ScanHandler) RunScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respondWithError(w, http.StatusBadRequest, "Missing query")
		return
	}

	result, err := h.service.Run(r.Context(), req.Query, req.MaxPosts, req.MinEngagement)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to run scan")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListScans returns the most recent stored scans
func (h *ScanHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.service.ListScans(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list scans")
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}

// GetScan returns a stored scan by ID
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing scan ID")
		return
	}

	result, err := h.service.GetScan(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Scan not found")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get scan")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
