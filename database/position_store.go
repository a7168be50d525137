// database/position_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/balticwatch/ais-collector/models"
)

// SaveCollection appends one row per enriched record plus exactly one
// summary row, all inside a single transaction: either the whole run is
// visible or none of it. Duplicate-looking rows across runs are accepted,
// there is no uniqueness constraint on (mmsi, timestamp).
func SaveCollection(records []models.EnrichedRecord, run models.CollectionRun) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for collection run: %w", err)
	}
	defer tx.Rollback()

	timestampStr := run.Timestamp.UTC().Format(time.RFC3339)

	stmt, err := tx.Prepare(`
		INSERT INTO vessel_positions (
			timestamp, mmsi, name, longitude, latitude, sog, cog, heading,
			nav_stat, ship_type, destination, eta, draught, pos_acc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare position insert statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var name, destination sql.NullString
		var shipType, eta sql.NullInt64
		var draught sql.NullFloat64
		if meta := rec.Metadata; meta != nil {
			name = sql.NullString{String: meta.Name, Valid: true}
			destination = sql.NullString{String: meta.Destination, Valid: true}
			shipType = sql.NullInt64{Int64: int64(meta.ShipType), Valid: true}
			draught = sql.NullFloat64{Float64: meta.Draught, Valid: true}
			if meta.ETA != nil {
				eta = sql.NullInt64{Int64: *meta.ETA, Valid: true}
			}
		}

		pos := rec.Position
		_, err := stmt.Exec(
			timestampStr, pos.MMSI, name, pos.Longitude, pos.Latitude,
			pos.SOG, pos.COG, pos.Heading, pos.NavStat,
			shipType, destination, eta, draught, pos.PosAcc,
		)
		if err != nil {
			return fmt.Errorf("failed to insert position for mmsi %d: %w", pos.MMSI, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO collection_summary (timestamp, vessel_count, collection_time_ms)
		VALUES (?, ?, ?)
	`, timestampStr, run.VesselCount, run.CollectionTimeMS)
	if err != nil {
		return fmt.Errorf("failed to insert collection summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection run: %w", err)
	}

	log.Printf("Database: Saved %d vessel positions and summary for run %s\n", len(records), timestampStr)
	return nil
}

// GetVesselHistory returns the most recent stored positions for one MMSI,
// newest first. Served by the (mmsi, timestamp) index.
func GetVesselHistory(mmsi int64, limit int) ([]models.StoredPosition, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query(`
		SELECT id, timestamp, mmsi, name, longitude, latitude, sog, cog, heading,
		       nav_stat, ship_type, destination, eta, draught, pos_acc, created_at
		FROM vessel_positions
		WHERE mmsi = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, mmsi, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for mmsi %d: %w", mmsi, err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// GetRecentPositions returns the most recently stored positions across all
// vessels, newest first.
func GetRecentPositions(limit int) ([]models.StoredPosition, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query(`
		SELECT id, timestamp, mmsi, name, longitude, latitude, sog, cog, heading,
		       nav_stat, ship_type, destination, eta, draught, pos_acc, created_at
		FROM vessel_positions
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

func scanPositions(rows *sql.Rows) ([]models.StoredPosition, error) {
	var positions []models.StoredPosition
	for rows.Next() {
		var p models.StoredPosition
		var name, destination sql.NullString
		var shipType, eta sql.NullInt64
		var draught sql.NullFloat64
		var createdAt sql.NullTime

		err := rows.Scan(
			&p.ID, &p.Timestamp, &p.MMSI, &name, &p.Longitude, &p.Latitude,
			&p.SOG, &p.COG, &p.Heading, &p.NavStat,
			&shipType, &destination, &eta, &draught, &p.PosAcc, &createdAt,
		)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan vessel position row: %v", err)
			continue
		}
		if name.Valid {
			p.Name = &name.String
		}
		if destination.Valid {
			p.Destination = &destination.String
		}
		if shipType.Valid {
			p.ShipType = &shipType.Int64
		}
		if eta.Valid {
			p.ETA = &eta.Int64
		}
		if draught.Valid {
			p.Draught = &draught.Float64
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vessel position rows: %w", err)
	}
	return positions, nil
}
