// Package geo resolves free-text place names to coordinates using the
// OpenStreetMap Nominatim search API. No API key is required; Nominatim
// asks callers to send an identifying User-Agent.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/outfitcal/daybook/internal/common"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

const userAgent = "daybook/1.0"

// Place is a single geocoding match.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a geocoding client. An empty baseURL selects the public
// Nominatim endpoint; tests point it at a local server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// nominatimResult mirrors the fields we consume. Nominatim serializes
// coordinates as strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search resolves a free-text place name to its best match. The query must
// be non-blank after trimming; blank input fails with ErrValidation before
// any network call. Zero matches fail with ErrNotFound, transport problems
// and non-2xx statuses with ErrServiceUnavailable.
func (c *Client) Search(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: place name is empty", common.ErrValidation)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: geocoding returned status %d", common.ErrServiceUnavailable, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no match for %q, try a more specific query (e.g. \"Shibuya, Tokyo\")", common.ErrNotFound, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad latitude %q", common.ErrServiceUnavailable, first.Lat)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad longitude %q", common.ErrServiceUnavailable, first.Lon)
	}

	display := first.DisplayName
	if display == "" {
		display = query
	}

	return &Place{Lat: lat, Lon: lon, DisplayName: display}, nil
}
