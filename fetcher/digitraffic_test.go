package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/balticwatch/ais-collector/config"
)

const locationsBody = `{
	"type": "FeatureCollection",
	"features": [
		{
			"mmsi": 230111222,
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [24.95, 60.17]},
			"properties": {"mmsi": 230111222, "sog": 8.4, "cog": 171.2, "navStat": 0, "heading": 172, "posAcc": true, "timestamp": 46}
		}
	]
}`

const vesselsBody = `[
	{"mmsi": 230111222, "name": "  AURORA  ", "shipType": 70, "destination": " TALLINN ", "eta": 1036800, "draught": 6.5},
	{"mmsi": 265000111, "name": "BALTIC STAR", "shipType": 60, "destination": "STOCKHOLM", "eta": null, "draught": 5.1}
]`

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.APIConfig{
		LocationsURL:   srv.URL + "/locations",
		VesselsURL:     srv.URL + "/vessels",
		RequestTimeout: 5 * time.Second,
		UserAgent:      "ais-collector-test/1.0",
	}
	return New(cfg), srv
}

func TestFetchLocations(t *testing.T) {
	var gotUser string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations" {
			http.NotFound(w, r)
			return
		}
		gotUser = r.Header.Get("Digitraffic-User")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(locationsBody))
	}))

	fc, err := client.FetchLocations(context.Background())
	if err != nil {
		t.Fatalf("FetchLocations failed: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("len(Features) = %d, want 1", len(fc.Features))
	}

	f := fc.Features[0]
	if f.VesselID() != 230111222 {
		t.Errorf("VesselID = %d, want 230111222", f.VesselID())
	}
	if !f.HasCoordinates() {
		t.Fatal("feature should have coordinates")
	}
	if f.Geometry.Coordinates[0] != 24.95 || f.Geometry.Coordinates[1] != 60.17 {
		t.Errorf("coordinates = %v", f.Geometry.Coordinates)
	}
	if f.Properties.SOG != 8.4 || f.Properties.Heading != 172 || !f.Properties.PosAcc {
		t.Errorf("properties = %+v", f.Properties)
	}
	if gotUser != "ais-collector-test/1.0" {
		t.Errorf("Digitraffic-User header = %q", gotUser)
	}
}

func TestFetchVessels(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(vesselsBody))
	}))

	vessels, err := client.FetchVessels(context.Background())
	if err != nil {
		t.Fatalf("FetchVessels failed: %v", err)
	}
	if len(vessels) != 2 {
		t.Fatalf("len(vessels) = %d, want 2", len(vessels))
	}

	// Name and destination are trimmed at fetch time.
	if vessels[0].Name != "AURORA" {
		t.Errorf("Name = %q, want trimmed AURORA", vessels[0].Name)
	}
	if vessels[0].Destination != "TALLINN" {
		t.Errorf("Destination = %q, want trimmed TALLINN", vessels[0].Destination)
	}
	if vessels[0].ETA == nil || *vessels[0].ETA != 1036800 {
		t.Errorf("ETA = %v, want 1036800", vessels[0].ETA)
	}
	if vessels[1].ETA != nil {
		t.Errorf("null ETA should decode to nil, got %v", *vessels[1].ETA)
	}
}

func TestFetchErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
		}))
		if _, err := client.FetchLocations(context.Background()); err == nil {
			t.Error("expected error for 503 response")
		}
		if _, err := client.FetchVessels(context.Background()); err == nil {
			t.Error("expected error for 503 response")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		if _, err := client.FetchLocations(context.Background()); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		client, srv := testClient(t, http.NotFoundHandler())
		srv.Close()
		if _, err := client.FetchLocations(context.Background()); err == nil {
			t.Error("expected error for closed server")
		}
	})
}
