// fetcher/digitraffic.go
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/balticwatch/ais-collector/config"
	"github.com/balticwatch/ais-collector/models"
)

// Client talks to the two read-only Digitraffic AIS endpoints. Each call
// is one GET with a bounded timeout; there are no retries, a failed call
// is reported to the caller who decides whether the run can continue.
type Client struct {
	httpClient *http.Client
	cfg        config.APIConfig
}

// New builds a Client from the api section of the configuration.
func New(cfg config.APIConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
	}
}

// FetchLocations retrieves the current position reports as a GeoJSON
// feature collection. Failure here is fatal to a collection run: nothing
// downstream can proceed without positions.
func (c *Client) FetchLocations(ctx context.Context) (*models.FeatureCollection, error) {
	var fc models.FeatureCollection
	if err := c.getJSON(ctx, c.cfg.LocationsURL, &fc); err != nil {
		return nil, fmt.Errorf("failed to fetch AIS locations: %w", err)
	}
	log.Printf("Fetcher: Retrieved %d position features from %s\n", len(fc.Features), c.cfg.LocationsURL)
	return &fc, nil
}

// FetchVessels retrieves the worldwide vessel metadata list. Name and
// destination are trimmed of surrounding whitespace here so every
// consumer sees clean values. Callers treat failure as soft: the run
// proceeds with an empty metadata set.
func (c *Client) FetchVessels(ctx context.Context) ([]models.VesselMetadata, error) {
	var vessels []models.VesselMetadata
	if err := c.getJSON(ctx, c.cfg.VesselsURL, &vessels); err != nil {
		return nil, fmt.Errorf("failed to fetch vessel metadata: %w", err)
	}
	for i := range vessels {
		vessels[i].Name = strings.TrimSpace(vessels[i].Name)
		vessels[i].Destination = strings.TrimSpace(vessels[i].Destination)
	}
	log.Printf("Fetcher: Retrieved metadata for %d vessels from %s\n", len(vessels), c.cfg.VesselsURL)
	return vessels, nil
}

// getJSON performs one GET request and decodes the JSON body into out.
// Non-200 responses include a snippet of the body in the error to make
// API-side failures diagnosable from the log alone.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		// Digitraffic asks API consumers to identify themselves.
		req.Header.Set("Digitraffic-User", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("received status %d from %s: %s", resp.StatusCode, url, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
