// models/ais.go
package models

import "time"

// PositionReport is one AIS position as broadcast by a vessel.
// Reports are fetched fresh each collection run and never merged with
// earlier ones.
type PositionReport struct {
	MMSI      int64   `json:"mmsi"`
	Longitude float64 `json:"lon"`
	Latitude  float64 `json:"lat"`
	SOG       float64 `json:"sog"`     // speed over ground, knots
	COG       float64 `json:"cog"`     // course over ground, degrees
	Heading   int     `json:"heading"` // true heading, 511 = unavailable
	NavStat   int     `json:"navStat"` // coded navigational status
	PosAcc    bool    `json:"posAcc"`  // position accuracy flag
}

// VesselMetadata is the static voyage data reported separately from
// positions. It may be absent for any given MMSI.
type VesselMetadata struct {
	MMSI        int64   `json:"mmsi"`
	Name        string  `json:"name"`
	ShipType    int     `json:"shipType"`
	Destination string  `json:"destination"`
	ETA         *int64  `json:"eta"` // packed MMDDHHMM encoding, as reported
	Draught     float64 `json:"draught"`
}

// EnrichedRecord joins a position report with its vessel metadata.
// Metadata is nil when no matching vessel record was found; the record
// is still kept (outer join semantics).
type EnrichedRecord struct {
	Position PositionReport
	Metadata *VesselMetadata
}

// CollectionRun summarizes one invocation of the collector.
type CollectionRun struct {
	ID               int64     `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	VesselCount      int       `json:"vessel_count"`
	CollectionTimeMS int64     `json:"collection_time_ms"`
}

// StoredPosition is one row of the vessel_positions table. Metadata
// columns are pointers because they are NULL when no vessel record
// matched at collection time.
type StoredPosition struct {
	ID          int64    `json:"id" csv:"id"`
	Timestamp   string   `json:"timestamp" csv:"timestamp"`
	MMSI        int64    `json:"mmsi" csv:"mmsi"`
	Name        *string  `json:"name" csv:"name"`
	Longitude   float64  `json:"longitude" csv:"longitude"`
	Latitude    float64  `json:"latitude" csv:"latitude"`
	SOG         float64  `json:"sog" csv:"sog"`
	COG         float64  `json:"cog" csv:"cog"`
	Heading     int      `json:"heading" csv:"heading"`
	NavStat     int      `json:"nav_stat" csv:"nav_stat"`
	ShipType    *int64   `json:"ship_type" csv:"ship_type"`
	Destination *string  `json:"destination" csv:"destination"`
	ETA         *int64   `json:"eta" csv:"eta"`
	Draught     *float64 `json:"draught" csv:"draught"`
	PosAcc      bool     `json:"pos_acc" csv:"pos_acc"`
	CreatedAt   string   `json:"created_at" csv:"created_at"`
}
