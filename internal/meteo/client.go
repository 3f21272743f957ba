// Package meteo fetches current weather conditions from the Open-Meteo
// forecast API. Only the "current" snapshot is requested, no forecast
// window.
package meteo

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

const defaultBaseURL = "https://api.open-meteo.com"

// Current is one current-conditions snapshot. TemperatureC and Code are nil
// when the upstream payload omits them; that is missing data, not an error.
type Current struct {
	TemperatureC *float64
	Code         *int
	ObservedAt   string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a weather client. An empty baseURL selects the public
// Open-Meteo endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WeatherCode *float64 `json:"weathercode"`
		Time        string   `json:"time"`
	} `json:"current_weather"`
}

// Fetch resolves (lat, lon) to the current conditions. No range validation
// is done beyond what the service itself enforces. Transport problems and
// non-2xx statuses fail with ErrServiceUnavailable.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Current, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: weather API returned status %d", common.ErrServiceUnavailable, resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}

	cur := &Current{}
	if cw := payload.CurrentWeather; cw != nil {
		cur.TemperatureC = cw.Temperature
		if cw.WeatherCode != nil {
			code := int(*cw.WeatherCode)
			cur.Code = &code
		}
		cur.ObservedAt = cw.Time
	}
	return cur, nil
}
