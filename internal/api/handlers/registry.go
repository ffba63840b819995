package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/pkg/logger"
)

// RegistryHandler handles ticker-registry API endpoints
type RegistryHandler struct {
	registry contracts.TickerRegistry
	logger   *logger.Logger
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registry contracts.TickerRegistry, log *logger.Logger) *RegistryHandler {
	return &RegistryHandler{
		registry: registry,
		logger:   log,
	}
}

// TickerListResponse wraps a ticker list with its count
type TickerListResponse struct {
	Tickers []string `json:"tickers"`
	Count   int      `json:"count"`
}

// ListCandidates returns the candidate ticker set
// GET /api/registry/candidates
func (h *RegistryHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.registry.ListCandidates(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list candidates")
		respondError(w, http.StatusInternalServerError, "Failed to list candidates")
		return
	}

	respondJSON(w, http.StatusOK, TickerListResponse{Tickers: tickers, Count: len(tickers)})
}

// AddCandidatesRequest names tickers to add to the candidate set
type AddCandidatesRequest struct {
	Tickers []string `json:"tickers"`
}

// AddCandidates adds tickers to the candidate set
// POST /api/registry/candidates
func (h *RegistryHandler) AddCandidates(w http.ResponseWriter, r *http.Request) {
	var req AddCandidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Tickers) == 0 {
		respondError(w, http.StatusBadRequest, "tickers is required")
		return
	}

	if err := h.registry.AddCandidates(r.Context(), req.Tickers); err != nil {
		h.logger.WithError(err).Error("Failed to add candidates")
		respondError(w, http.StatusInternalServerError, "Failed to add candidates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"added":  len(req.Tickers),
	})
}

// ListRejected returns the rejected ticker set
// GET /api/registry/rejected
func (h *RegistryHandler) ListRejected(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.registry.ListRejected(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list rejected tickers")
		respondError(w, http.StatusInternalServerError, "Failed to list rejected tickers")
		return
	}

	respondJSON(w, http.StatusOK, TickerListResponse{Tickers: tickers, Count: len(tickers)})
}

// ClearRejected moves every rejected ticker back to candidate status
// DELETE /api/registry/rejected
func (h *RegistryHandler) ClearRejected(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.ClearRejected(r.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to clear rejected tickers")
		respondError(w, http.StatusInternalServerError, "Failed to clear rejected tickers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
