// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/balticwatch/ais-collector/config"
	"github.com/balticwatch/ais-collector/database"
	"github.com/balticwatch/ais-collector/handlers"
	"github.com/balticwatch/ais-collector/services"
)

func main() {
	log.Println("Starting Baltic AIS Collector...")

	// .env is optional; environment overrides are applied by LoadConfig.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	if err := config.LoadConfig(findConfigPath()); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Driver: %s, bounding box: lon %.1f..%.1f lat %.1f..%.1f",
		config.AppConfig.Database.Driver,
		config.AppConfig.BoundingBox.MinLon, config.AppConfig.BoundingBox.MaxLon,
		config.AppConfig.BoundingBox.MinLat, config.AppConfig.BoundingBox.MaxLat)

	if err := database.InitDB(config.AppConfig.Database); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	command := "collect"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "collect":
		runCollect()
	case "serve":
		runServe()
	case "export-csv":
		runExportCSV(os.Args[2:])
	default:
		log.Fatalf("Unknown command %q. Use collect, serve, or export-csv.", command)
	}
}

// findConfigPath returns the configuration file to load, or empty when
// none exists (defaults apply).
func findConfigPath() string {
	if path := os.Getenv("AIS_CONFIG"); path != "" {
		return path
	}
	for _, path := range []string{"config.yaml", "config/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// runCollect performs exactly one collection run. An unreachable
// positions endpoint aborts the run cleanly (nothing written, exit 0,
// the external scheduler will simply try again next cycle); storage or
// export failures exit non-zero.
func runCollect() {
	result, err := services.RunCollection(context.Background(), &config.AppConfig)
	if err != nil {
		var stageErr *services.StageError
		if errors.As(err, &stageErr) && stageErr.Stage == services.StageFetchPositions {
			log.Printf("Collection aborted, position data unavailable: %v", err)
			return
		}
		log.Fatalf("Collection run failed: %v", err)
	}

	log.Printf("Collection run done: %d vessels stored, %d distinct with metadata, %d features skipped, %dms",
		result.Run.VesselCount, result.Matched, result.Skipped, result.Run.CollectionTimeMS)
}

func runServe() {
	router := mux.NewRouter()
	handlers.RegisterRoutes(router)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}

func runExportCSV(args []string) {
	fs := flag.NewFlagSet("export-csv", flag.ExitOnError)
	mmsi := fs.Int64("mmsi", 0, "Export history for this MMSI only (0 = all vessels)")
	limit := fs.Int("limit", 10000, "Maximum number of rows to export")
	out := fs.String("out", config.AppConfig.Output.CSVExportPath, "Output CSV path")
	fs.Parse(args)

	count, err := services.ExportHistoryCSV(*out, *mmsi, *limit)
	if err != nil {
		log.Fatalf("CSV export failed: %v", err)
	}
	fmt.Printf("Exported %d rows to %s\n", count, *out)
}
