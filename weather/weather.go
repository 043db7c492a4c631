// Package weather fetches hourly forecasts from the Open-Meteo API and
// converts meteorological wind readings into the east/north velocity
// components the physics core expects.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Hour is one fully resolved hourly forecast sample. Units are already
// normalized for the core: pressure in Pa, humidity as a fraction, wind
// speed in m/s.
type Hour struct {
	Index        int
	TemperatureC float64
	HumidityFrac float64
	PressurePa   float64
	WindSpeedMS  float64
	WindDirDeg   float64
}

// Client talks to an Open-Meteo-compatible endpoint. The zero value uses
// the public API with a 20-second timeout.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type hourlyResponse struct {
	Hourly struct {
		Temperature2M      []float64 `json:"temperature_2m"`
		RelativeHumidity2M []float64 `json:"relative_humidity_2m"`
		WindSpeed10M       []float64 `json:"wind_speed_10m"`
		WindDirection10M   []float64 `json:"wind_direction_10m"`
		PressureMSL        []float64 `json:"pressure_msl"`
	} `json:"hourly"`
}

// Hourly fetches the hourly forecast series for a location. The returned
// slice is indexed by forecast hour (UTC, starting at the current day).
func (c *Client) Hourly(ctx context.Context, lat, lon float64) ([]Hour, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.6f", lat))
	q.Set("longitude", fmt.Sprintf("%.6f", lon))
	q.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m,pressure_msl")
	q.Set("windspeed_unit", "ms")
	q.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload hourlyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	h := payload.Hourly
	n := len(h.Temperature2M)
	if n == 0 {
		return nil, fmt.Errorf("weather response contains no hourly samples")
	}
	if len(h.RelativeHumidity2M) != n || len(h.WindSpeed10M) != n ||
		len(h.WindDirection10M) != n || len(h.PressureMSL) != n {
		return nil, fmt.Errorf("weather response series lengths do not match")
	}

	hours := make([]Hour, n)
	for i := 0; i < n; i++ {
		hours[i] = Hour{
			Index:        i,
			TemperatureC: h.Temperature2M[i],
			HumidityFrac: h.RelativeHumidity2M[i] / 100.0,
			PressurePa:   h.PressureMSL[i] * 100.0, // hPa -> Pa
			WindSpeedMS:  h.WindSpeed10M[i],
			WindDirDeg:   h.WindDirection10M[i],
		}
	}
	return hours, nil
}

// WindComponents converts a meteorological wind reading (speed plus the
// direction the wind blows FROM, degrees clockwise from north) into the
// east (u) and north (v) components of the air's velocity vector. A wind
// from the north (0 deg) moves air southward: u=0, v=-speed.
func WindComponents(speedMS, dirFromDeg float64) (u, v float64) {
	rad := dirFromDeg * math.Pi / 180.0
	u = -speedMS * math.Sin(rad)
	v = -speedMS * math.Cos(rad)
	return u, v
}
