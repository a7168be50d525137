package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/balticwatch/ais-collector/models"
)

func testRecords() []models.EnrichedRecord {
	return []models.EnrichedRecord{
		{
			Position: models.PositionReport{MMSI: 100, Longitude: 20, Latitude: 60, SOG: 10.5, COG: 90, Heading: 91},
			Metadata: &models.VesselMetadata{MMSI: 100, Name: "AURORA", ShipType: 70, Destination: "TALLINN"},
		},
		{
			Position: models.PositionReport{MMSI: 200, Longitude: 25, Latitude: 62, SOG: 0, COG: 0, Heading: 511},
		},
	}
}

func testRun(count int) models.CollectionRun {
	return models.CollectionRun{
		Timestamp:        time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		VesselCount:      count,
		CollectionTimeMS: 1234,
	}
}

func TestBuildSnapshot(t *testing.T) {
	records := testRecords()
	snapshot := BuildSnapshot(records, testRun(len(records)))

	if snapshot.VesselCount != 2 {
		t.Errorf("VesselCount = %d, want 2", snapshot.VesselCount)
	}
	if snapshot.Timestamp != "2026-08-29T12:00:00Z" {
		t.Errorf("Timestamp = %q, want RFC3339 UTC", snapshot.Timestamp)
	}

	withMeta := snapshot.Vessels[0]
	if withMeta.Name == nil || *withMeta.Name != "AURORA" {
		t.Errorf("Name = %v, want AURORA", withMeta.Name)
	}
	if withMeta.ShipType == nil || *withMeta.ShipType != 70 {
		t.Errorf("ShipType = %v, want 70", withMeta.ShipType)
	}

	withoutMeta := snapshot.Vessels[1]
	if withoutMeta.Name != nil || withoutMeta.ShipType != nil || withoutMeta.Destination != nil {
		t.Errorf("metadata fields should be nil for unmatched vessel: %+v", withoutMeta)
	}
	if withoutMeta.Lon != 25 || withoutMeta.Lat != 62 {
		t.Errorf("position fields missing: %+v", withoutMeta)
	}
}

func TestWriteSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.json")
	records := testRecords()

	if err := WriteSnapshot(path, records, testRun(len(records))); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read snapshot back: %v", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snapshot.VesselCount != len(records) {
		t.Errorf("VesselCount = %d, want %d", snapshot.VesselCount, len(records))
	}
	if len(snapshot.Vessels) != len(records) {
		t.Errorf("len(Vessels) = %d, want %d", len(snapshot.Vessels), len(records))
	}

	// Null metadata must survive the round trip as JSON null.
	if snapshot.Vessels[1].Name != nil {
		t.Errorf("unmatched vessel name = %v, want null", snapshot.Vessels[1].Name)
	}

	// The file is consumed by a separate web frontend and must be
	// world-readable, not left at the temp file's 0600.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0644 {
		t.Errorf("snapshot permissions = %04o, want 0644", perm)
	}
}

func TestWriteSnapshotReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.json")

	// A previous snapshot is fully replaced, never appended.
	if err := os.WriteFile(path, []byte(`{"vessel_count": 999}`), 0644); err != nil {
		t.Fatal(err)
	}

	records := testRecords()
	if err := WriteSnapshot(path, records, testRun(len(records))); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	var snapshot models.Snapshot
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("replaced snapshot is not valid JSON: %v", err)
	}
	if snapshot.VesselCount != 2 {
		t.Errorf("VesselCount = %d, want 2 (old content must be gone)", snapshot.VesselCount)
	}

	// No temporary files may be left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "latest.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only latest.json", names)
	}
}

func TestWriteSnapshotEmptyRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.json")

	if err := WriteSnapshot(path, nil, testRun(0)); err != nil {
		t.Fatalf("WriteSnapshot failed for empty run: %v", err)
	}

	var snapshot models.Snapshot
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatal(err)
	}
	if snapshot.VesselCount != 0 || len(snapshot.Vessels) != 0 {
		t.Errorf("empty run snapshot = %+v, want zero vessels", snapshot)
	}
}
