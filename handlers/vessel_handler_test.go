package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/balticwatch/ais-collector/config"
	"github.com/gorilla/mux"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 100},
		{"limit=10", 10},
		{"limit=0", 100},
		{"limit=-5", 100},
		{"limit=abc", 100},
		{"limit=99999", maxHistoryLimit},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/runs?"+tc.query, nil)
		if got := parseLimit(r, 100); got != tc.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}

func TestHealthHandlerWithoutDB(t *testing.T) {
	w := httptest.NewRecorder()
	HealthHandler(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without database", w.Code)
	}
}

func TestGetLatestSnapshotHandler(t *testing.T) {
	dir := t.TempDir()
	config.AppConfig.Output.SnapshotPath = filepath.Join(dir, "latest.json")

	t.Run("missing snapshot", func(t *testing.T) {
		w := httptest.NewRecorder()
		GetLatestSnapshotHandler(w, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404 before first run", w.Code)
		}
	})

	t.Run("existing snapshot", func(t *testing.T) {
		content := `{"timestamp":"2026-08-29T12:00:00Z","vessel_count":1,"vessels":[]}`
		if err := os.WriteFile(config.AppConfig.Output.SnapshotPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		w := httptest.NewRecorder()
		GetLatestSnapshotHandler(w, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if payload["vessel_count"].(float64) != 1 {
			t.Errorf("vessel_count = %v, want 1", payload["vessel_count"])
		}
	})
}

func TestVesselHistoryHandlerInvalidMMSI(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/vessels/{mmsi}/history", GetVesselHistoryHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vessels/notanumber/history", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid mmsi", w.Code)
	}
}
