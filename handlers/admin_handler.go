// handlers/admin_handler.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/balticwatch/ais-collector/config"
	"github.com/balticwatch/ais-collector/services"
)

// CollectNowHandler triggers one collection run on demand. Scheduling
// stays with the external scheduler; this endpoint exists for operators
// who want a fresh snapshot without waiting for the next trigger. Runs
// are sequential by design, so overlapping requests simply queue on the
// single database writer.
func CollectNowHandler(w http.ResponseWriter, r *http.Request) {
	collectionRuns.Inc()

	result, err := services.RunCollection(r.Context(), &config.AppConfig)
	if err != nil {
		collectionFailures.Inc()
		respondWithError(w, http.StatusBadGateway, fmt.Sprintf("collection run failed: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "collection run completed",
		"timestamp":          result.Run.Timestamp,
		"vessel_count":       result.Run.VesselCount,
		"skipped_features":   result.Skipped,
		"metadata_matches":   result.Matched,
		"collection_time_ms": result.Run.CollectionTimeMS,
	})
}
