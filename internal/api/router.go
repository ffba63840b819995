package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/fundwatch/internal/api/handlers"
	"github.com/wonny/fundwatch/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: route registration happens only in this function
func NewRouter(scanHandler *handlers.ScanHandler, registryHandler *handlers.RegistryHandler, wsHub *ProgressHub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Scan endpoints
	api.HandleFunc("/results", scanHandler.GetResults).Methods("GET")
	api.HandleFunc("/status", scanHandler.GetStatus).Methods("GET")
	api.HandleFunc("/scan", scanHandler.TriggerFullScan).Methods("POST")
	api.HandleFunc("/scan/incremental", scanHandler.TriggerIncrementalScan).Methods("POST")

	// Registry endpoints
	api.HandleFunc("/registry/candidates", registryHandler.ListCandidates).Methods("GET")
	api.HandleFunc("/registry/candidates", registryHandler.AddCandidates).Methods("POST")
	api.HandleFunc("/registry/rejected", registryHandler.ListRejected).Methods("GET")
	api.HandleFunc("/registry/rejected", registryHandler.ClearRejected).Methods("DELETE")

	// Live scan progress over websocket
	r.HandleFunc("/ws/progress", wsHub.HandleProgress)

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "fundwatch-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
