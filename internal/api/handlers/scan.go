package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/internal/scan"
	"github.com/wonny/fundwatch/pkg/logger"
)

// ScanHandler handles scan-related API endpoints
// ⭐ SSOT: scan API handlers live only in this struct
type ScanHandler struct {
	service *scan.Service
	store   contracts.ResultStore
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(service *scan.Service, store contracts.ResultStore, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		service: service,
		store:   store,
		logger:  log,
	}
}

// GetResults returns the latest persisted result set
// GET /api/results
func (h *ScanHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	rs, err := h.store.Load(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load result set")
		respondError(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	respondJSON(w, http.StatusOK, rs)
}

// StatusResponse reports scan state and the latest progress
type StatusResponse struct {
	Scanning bool                `json:"scanning"`
	Progress *contracts.Progress `json:"progress,omitempty"`
}

// GetStatus returns whether a scan is running and how far along it is
// GET /api/status
func (h *ScanHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Scanning: h.service.Scanning()}
	if p, ok := h.service.Progress().Last(); ok && resp.Scanning {
		resp.Progress = &p
	}

	respondJSON(w, http.StatusOK, resp)
}

// ScanResponse acknowledges an accepted scan trigger
type ScanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TriggerFullScan starts a full scan in the background
// POST /api/scan
func (h *ScanHandler) TriggerFullScan(w http.ResponseWriter, r *http.Request) {
	if h.service.Scanning() {
		respondError(w, http.StatusConflict, "Scan already in progress")
		return
	}

	go func() {
		// Detached from the request context; the scan outlives it
		if _, err := h.service.RunFullScan(context.Background()); err != nil {
			if !errors.Is(err, contracts.ErrScanInProgress) {
				h.logger.WithError(err).Error("Background full scan failed")
			}
		}
	}()

	respondJSON(w, http.StatusAccepted, ScanResponse{
		Status:  "accepted",
		Message: "Full scan started",
	})
}

// IncrementalScanRequest names the tickers to rescan
type IncrementalScanRequest struct {
	Tickers []string `json:"tickers"`
}

// TriggerIncrementalScan starts an incremental scan in the background
// POST /api/scan/incremental
func (h *ScanHandler) TriggerIncrementalScan(w http.ResponseWriter, r *http.Request) {
	var req IncrementalScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Tickers) == 0 {
		respondError(w, http.StatusBadRequest, "tickers is required")
		return
	}

	if h.service.Scanning() {
		respondError(w, http.StatusConflict, "Scan already in progress")
		return
	}

	tickers := req.Tickers
	go func() {
		if _, err := h.service.RunIncrementalScan(context.Background(), tickers); err != nil {
			if !errors.Is(err, contracts.ErrScanInProgress) {
				h.logger.WithError(err).Error("Background incremental scan failed")
			}
		}
	}()

	respondJSON(w, http.StatusAccepted, ScanResponse{
		Status:  "accepted",
		Message: "Incremental scan started",
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
