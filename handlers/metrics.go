// handlers/metrics.go
package handlers

import (
	"net/http"

	"github.com/balticwatch/ais-collector/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ais_api_requests_total",
		Help: "Total number of API requests served.",
	})
	collectionRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ais_collection_runs_total",
		Help: "Total number of collection runs triggered via the API.",
	})
	collectionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ais_collection_failures_total",
		Help: "Total number of API-triggered collection runs that failed.",
	})
	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ais_last_run_vessel_count",
		Help: "Vessel count recorded by the most recent collection run.",
	}, lastRunVesselCount)
)

// lastRunVesselCount is evaluated at scrape time so the gauge always
// reflects the store, including runs made by separate collect invocations.
func lastRunVesselCount() float64 {
	if database.DB == nil {
		return 0
	}
	run, err := database.GetLatestRun()
	if err != nil || run == nil {
		return 0
	}
	return float64(run.VesselCount)
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsTotal.Inc()
		next.ServeHTTP(w, r)
	})
}
