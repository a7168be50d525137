// handlers/vessel_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/balticwatch/ais-collector/config"
	"github.com/balticwatch/ais-collector/database"
	"github.com/balticwatch/ais-collector/models"
	"github.com/balticwatch/ais-collector/utils"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// RegisterRoutes wires the read-only API. The collector itself stays a
// one-shot batch process; serve mode only exposes what previous runs
// already persisted, plus an on-demand collection trigger.
func RegisterRoutes(router *mux.Router) {
	router.Use(countRequests)

	router.HandleFunc("/api/health", HealthHandler).Methods("GET")
	router.HandleFunc("/api/latest", GetLatestSnapshotHandler).Methods("GET")
	router.HandleFunc("/api/runs", GetRunsHandler).Methods("GET")
	router.HandleFunc("/api/vessels/{mmsi}/history", GetVesselHistoryHandler).Methods("GET")
	router.HandleFunc("/api/admin/collect", CollectNowHandler).Methods("POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// HealthHandler reports whether the store is reachable.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if database.DB == nil {
		respondWithError(w, http.StatusServiceUnavailable, "database not initialized")
		return
	}
	if err := database.DB.Ping(); err != nil {
		log.Printf("Health check failed: DB ping error: %v", err)
		respondWithError(w, http.StatusServiceUnavailable, "database connection error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetLatestSnapshotHandler serves the latest.json snapshot as written by
// the most recent collection run. The file is replaced atomically by the
// exporter, so this handler can stream it without coordination.
func GetLatestSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	path := config.AppConfig.Output.SnapshotPath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			respondWithError(w, http.StatusNotFound, "no snapshot available yet")
			return
		}
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read snapshot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetRunsHandler returns recent collection summaries, newest first.
func GetRunsHandler(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultHistoryLimit)
	runs, err := database.GetRecentRuns(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load runs: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// historyEntry decorates a stored position with the human-readable ship
// type label for API consumers.
type historyEntry struct {
	Position      models.StoredPosition `json:"position"`
	ShipTypeLabel string                `json:"ship_type_label,omitempty"`
}

// GetVesselHistoryHandler returns the stored track of one vessel,
// newest first.
func GetVesselHistoryHandler(w http.ResponseWriter, r *http.Request) {
	mmsiStr := mux.Vars(r)["mmsi"]
	mmsi, err := strconv.ParseInt(mmsiStr, 10, 64)
	if err != nil || mmsi <= 0 {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid mmsi %q", mmsiStr))
		return
	}

	limit := parseLimit(r, defaultHistoryLimit)
	positions, err := database.GetVesselHistory(mmsi, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load history: %v", err))
		return
	}

	entries := make([]historyEntry, 0, len(positions))
	for _, pos := range positions {
		entry := historyEntry{Position: pos}
		if pos.ShipType != nil {
			entry.ShipTypeLabel = utils.ShipTypeLabel(int(*pos.ShipType))
		}
		entries = append(entries, entry)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mmsi":    mmsi,
		"count":   len(entries),
		"history": entries,
	})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
