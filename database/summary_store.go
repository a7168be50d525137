// database/summary_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/balticwatch/ais-collector/models"
)

// GetRecentRuns returns the latest collection summaries, newest first.
func GetRecentRuns(limit int) ([]models.CollectionRun, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query(`
		SELECT id, timestamp, vessel_count, collection_time_ms
		FROM collection_summary
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection summaries: %w", err)
	}
	defer rows.Close()

	var runs []models.CollectionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan collection summary row: %v", err)
			continue
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection summary rows: %w", err)
	}
	return runs, nil
}

// GetLatestRun returns the most recent collection summary, or nil when
// no run has been recorded yet.
func GetLatestRun() (*models.CollectionRun, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	row := DB.QueryRow(`
		SELECT id, timestamp, vessel_count, collection_time_ms
		FROM collection_summary
		ORDER BY id DESC
		LIMIT 1
	`)

	var run models.CollectionRun
	var timestampStr string
	var elapsed sql.NullInt64
	err := row.Scan(&run.ID, &timestampStr, &run.VesselCount, &elapsed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest collection summary: %w", err)
	}
	run.Timestamp = parseRunTimestamp(timestampStr)
	if elapsed.Valid {
		run.CollectionTimeMS = elapsed.Int64
	}
	return &run, nil
}

func scanRun(rows *sql.Rows) (models.CollectionRun, error) {
	var run models.CollectionRun
	var timestampStr string
	var elapsed sql.NullInt64
	if err := rows.Scan(&run.ID, &timestampStr, &run.VesselCount, &elapsed); err != nil {
		return models.CollectionRun{}, err
	}
	run.Timestamp = parseRunTimestamp(timestampStr)
	if elapsed.Valid {
		run.CollectionTimeMS = elapsed.Int64
	}
	return run, nil
}

func parseRunTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Printf("WARN Database: Unparseable run timestamp %q: %v", value, err)
		return time.Time{}
	}
	return ts
}
