// services/collection_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/balticwatch/ais-collector/config"
	"github.com/balticwatch/ais-collector/database"
	"github.com/balticwatch/ais-collector/fetcher"
	"github.com/balticwatch/ais-collector/models"
)

// Stage identifies one step of a collection run. The run advances
// unconditionally through the stages except FETCH_POSITIONS, whose
// failure aborts the whole run, and FETCH_METADATA, whose failure is
// tolerated (the run continues with empty metadata).
type Stage string

const (
	StageFetchPositions Stage = "FETCH_POSITIONS"
	StageFetchMetadata  Stage = "FETCH_METADATA"
	StageFilter         Stage = "FILTER"
	StageJoin           Stage = "JOIN"
	StagePersist        Stage = "PERSIST"
	StageExport         Stage = "EXPORT"
)

// StageError reports which stage a collection run failed in, so the
// caller can distinguish the clean-abort case (positions unavailable)
// from hard failures (store or snapshot unwritable).
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// CollectionResult summarizes a completed run.
type CollectionResult struct {
	Run      models.CollectionRun
	Filtered int // features inside the bounding box
	Skipped  int // features dropped for missing geometry
	Matched  int // distinct vessels with metadata found
}

// FilterFeatures returns the features whose coordinates fall inside the
// bounding box, bounds inclusive on all four edges. Features without a
// usable coordinate pair are skipped and counted, never fatal. Pure
// function: same input, same output.
func FilterFeatures(fc *models.FeatureCollection, box config.BoundingBoxConfig) (filtered []models.Feature, skipped int) {
	if fc == nil {
		return nil, 0
	}
	for _, feature := range fc.Features {
		if !feature.HasCoordinates() {
			skipped++
			continue
		}
		coords := feature.Geometry.Coordinates
		if box.Contains(coords[0], coords[1]) {
			filtered = append(filtered, feature)
		}
	}
	return filtered, skipped
}

// BuildMetadataLookup indexes vessel metadata by MMSI, restricted to the
// vessels actually present in the filtered feature set. Vessels outside
// the region of interest are never indexed, so the lookup is never
// larger than the distinct filtered MMSI set.
func BuildMetadataLookup(features []models.Feature, vessels []models.VesselMetadata) map[int64]models.VesselMetadata {
	wanted := make(map[int64]struct{}, len(features))
	for _, feature := range features {
		if mmsi := feature.VesselID(); mmsi != 0 {
			wanted[mmsi] = struct{}{}
		}
	}

	lookup := make(map[int64]models.VesselMetadata)
	for _, vessel := range vessels {
		if _, ok := wanted[vessel.MMSI]; ok {
			lookup[vessel.MMSI] = vessel
		}
	}
	return lookup
}

// EnrichRecords joins each filtered feature with its metadata. A feature
// with no matching vessel keeps a nil Metadata (outer join); the position
// fields are always populated.
func EnrichRecords(features []models.Feature, lookup map[int64]models.VesselMetadata) []models.EnrichedRecord {
	records := make([]models.EnrichedRecord, 0, len(features))
	for _, feature := range features {
		coords := feature.Geometry.Coordinates
		props := feature.Properties
		rec := models.EnrichedRecord{
			Position: models.PositionReport{
				MMSI:      feature.VesselID(),
				Longitude: coords[0],
				Latitude:  coords[1],
				SOG:       props.SOG,
				COG:       props.COG,
				Heading:   props.Heading,
				NavStat:   props.NavStat,
				PosAcc:    props.PosAcc,
			},
		}
		if meta, ok := lookup[rec.Position.MMSI]; ok {
			rec.Metadata = &meta
		}
		records = append(records, rec)
	}
	return records
}

// RunCollection executes one collection run: fetch, filter, join,
// persist, export. Persist happens before export so a storage failure
// never leaves a snapshot implying durability. The summary row records
// the wall-clock span of the fetch, filter and join stages.
func RunCollection(ctx context.Context, cfg *config.Config) (*CollectionResult, error) {
	start := time.Now().UTC()
	client := fetcher.New(cfg.API)

	log.Printf("Service: Stage %s\n", StageFetchPositions)
	fc, err := client.FetchLocations(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageFetchPositions, Err: err}
	}

	log.Printf("Service: Stage %s\n", StageFetchMetadata)
	vessels, err := client.FetchVessels(ctx)
	if err != nil {
		// Soft failure: the run proceeds, all metadata fields stay null.
		log.Printf("WARN Service: Could not fetch vessel metadata, continuing without: %v\n", err)
		vessels = nil
	}

	log.Printf("Service: Stage %s\n", StageFilter)
	filtered, skipped := FilterFeatures(fc, cfg.BoundingBox)
	if skipped > 0 {
		log.Printf("WARN Service: Skipped %d features with missing or malformed geometry\n", skipped)
	}
	log.Printf("Service: %d of %d features inside bounding box\n", len(filtered), len(fc.Features))

	log.Printf("Service: Stage %s\n", StageJoin)
	lookup := BuildMetadataLookup(filtered, vessels)
	records := EnrichRecords(filtered, lookup)

	run := models.CollectionRun{
		Timestamp:        start,
		VesselCount:      len(records),
		CollectionTimeMS: time.Since(start).Milliseconds(),
	}

	log.Printf("Service: Stage %s\n", StagePersist)
	if err := database.SaveCollection(records, run); err != nil {
		return nil, &StageError{Stage: StagePersist, Err: err}
	}

	log.Printf("Service: Stage %s\n", StageExport)
	if err := WriteSnapshot(cfg.Output.SnapshotPath, records, run); err != nil {
		return nil, &StageError{Stage: StageExport, Err: err}
	}

	result := &CollectionResult{
		Run:      run,
		Filtered: len(filtered),
		Skipped:  skipped,
		Matched:  len(lookup),
	}
	log.Printf("Service: Collection complete: %d vessels, %d distinct with metadata, %dms\n",
		run.VesselCount, result.Matched, run.CollectionTimeMS)
	return result, nil
}
