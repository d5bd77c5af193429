// Package aqi implements the Air Quality Fetcher (E): a single call to the
// Open-Meteo air-quality endpoint, grounded on the query-building idiom of
// the teacher's openmeteo forecast client and the simpler single-pollutant
// call in original_source/app/helpers.py's get_aqi.
package aqi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"treksafer/internal/types"
)

const baseURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

type httpGetter interface {
	Get(url string) ([]byte, error)
}

type Client struct {
	logger     *slog.Logger
	httpClient httpGetter
}

func NewClient(logger *slog.Logger, httpClient httpGetter) *Client {
	return &Client{logger: logger.With("component", "aqi.Client"), httpClient: httpClient}
}

type airQualityResponse struct {
	Timezone string `json:"timezone"`
	Hourly   struct {
		Time  []string `json:"time"`
		USAQI []*int   `json:"us_aqi"`
	} `json:"hourly"`
}

// Current returns the US AQI for point's current hour. A network failure
// or lookup miss yields ok=false: per §4.E, "any network/lookup failure
// yields a missing AQI value; callers must render the reply without it."
func (c *Client) Current(point types.Coordinate) (value int, ok bool) {
	u, err := url.Parse(baseURL)
	if err != nil {
		c.logger.Warn("could not build aqi url", "error", err)
		return 0, false
	}
	q := u.Query()
	q.Set("latitude", fmt.Sprintf("%.6f", point.Latitude))
	q.Set("longitude", fmt.Sprintf("%.6f", point.Longitude))
	q.Set("hourly", "us_aqi")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "1")
	u.RawQuery = q.Encode()

	body, err := c.httpClient.Get(u.String())
	if err != nil {
		c.logger.Warn("aqi fetch failed", "url", u.String(), "error", err)
		return 0, false
	}

	var resp airQualityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Warn("aqi response not decodable", "error", err)
		return 0, false
	}

	loc, err := time.LoadLocation(resp.Timezone)
	if err != nil {
		loc = time.UTC
	}
	target := time.Now().In(loc).Format("2006-01-02T15:00")
	for i, ts := range resp.Hourly.Time {
		if ts == target {
			if i >= len(resp.Hourly.USAQI) || resp.Hourly.USAQI[i] == nil {
				return 0, false
			}
			return *resp.Hourly.USAQI[i], true
		}
	}
	return 0, false
}
