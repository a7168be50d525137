// models/api_models.go
package models

// Wire types for the Digitraffic AIS endpoints and for the snapshot file
// the collector publishes.

// FeatureCollection is the GeoJSON document returned by the locations
// endpoint.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single position report feature. Digitraffic carries the
// MMSI both at the feature level and inside properties depending on API
// version, so both are decoded.
type Feature struct {
	Type       string            `json:"type"`
	MMSI       int64             `json:"mmsi"`
	Geometry   *Geometry         `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

type FeatureProperties struct {
	MMSI      int64   `json:"mmsi"`
	SOG       float64 `json:"sog"`
	COG       float64 `json:"cog"`
	NavStat   int     `json:"navStat"`
	Heading   int     `json:"heading"`
	PosAcc    bool    `json:"posAcc"`
	Timestamp int64   `json:"timestamp"`
}

// VesselID returns the MMSI of the feature regardless of which level the
// API reported it at. Zero means the feature carries no identifier.
func (f Feature) VesselID() int64 {
	if f.MMSI != 0 {
		return f.MMSI
	}
	return f.Properties.MMSI
}

// HasCoordinates reports whether the feature carries a usable coordinate
// pair. Features failing this are skipped by the filter, never fatal.
func (f Feature) HasCoordinates() bool {
	return f.Geometry != nil && len(f.Geometry.Coordinates) >= 2
}

// Snapshot is the latest.json document: the most recent run only, fully
// replaced on every collection.
type Snapshot struct {
	Timestamp   string           `json:"timestamp"`
	VesselCount int              `json:"vessel_count"`
	Vessels     []SnapshotVessel `json:"vessels"`
}

// SnapshotVessel is the reduced per-vessel field set exported for the map
// frontend. Metadata fields are null when the join found no vessel record.
type SnapshotVessel struct {
	MMSI        int64   `json:"mmsi"`
	Name        *string `json:"name"`
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	SOG         float64 `json:"sog"`
	COG         float64 `json:"cog"`
	Heading     int     `json:"heading"`
	ShipType    *int    `json:"ship_type"`
	Destination *string `json:"destination"`
}
