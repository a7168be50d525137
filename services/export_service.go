// services/export_service.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/balticwatch/ais-collector/database"
	"github.com/balticwatch/ais-collector/models"
	"github.com/jszwec/csvutil"
)

// BuildSnapshot reduces the enriched record set to the field set the map
// frontend consumes. Metadata fields are null when the join found no
// vessel record.
func BuildSnapshot(records []models.EnrichedRecord, run models.CollectionRun) models.Snapshot {
	vessels := make([]models.SnapshotVessel, 0, len(records))
	for _, rec := range records {
		pos := rec.Position
		v := models.SnapshotVessel{
			MMSI:    pos.MMSI,
			Lon:     pos.Longitude,
			Lat:     pos.Latitude,
			SOG:     pos.SOG,
			COG:     pos.COG,
			Heading: pos.Heading,
		}
		if meta := rec.Metadata; meta != nil {
			name := meta.Name
			shipType := meta.ShipType
			destination := meta.Destination
			v.Name = &name
			v.ShipType = &shipType
			v.Destination = &destination
		}
		vessels = append(vessels, v)
	}

	return models.Snapshot{
		Timestamp:   run.Timestamp.UTC().Format(time.RFC3339),
		VesselCount: len(vessels),
		Vessels:     vessels,
	}
}

// WriteSnapshot serializes the snapshot and atomically replaces the file
// at path: the document is written to a temporary file in the same
// directory and renamed into place, so a reader never observes a
// partially written snapshot.
func WriteSnapshot(path string, records []models.EnrichedRecord, run models.CollectionRun) error {
	snapshot := BuildSnapshot(records, run)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}
	// CreateTemp files are 0600; the snapshot is read by a separate web
	// frontend, so it must stay world-readable after the rename.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary snapshot file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move snapshot into place at %s: %w", path, err)
	}

	log.Printf("Service: Exported snapshot with %d vessels to %s\n", snapshot.VesselCount, path)
	return nil
}

// ExportHistoryCSV dumps stored positions to a CSV file for offline
// analysis. With mmsi set it exports that vessel's history; with mmsi
// zero it exports the most recent positions across all vessels, bounded
// by limit.
func ExportHistoryCSV(path string, mmsi int64, limit int) (int, error) {
	var positions []models.StoredPosition
	var err error
	if mmsi != 0 {
		positions, err = database.GetVesselHistory(mmsi, limit)
	} else {
		positions, err = database.GetRecentPositions(limit)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load positions for CSV export: %w", err)
	}

	data, err := csvutil.Marshal(positions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal positions to CSV: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for CSV export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write CSV export to %s: %w", path, err)
	}

	log.Printf("Service: Exported %d positions to %s\n", len(positions), path)
	return len(positions), nil
}
