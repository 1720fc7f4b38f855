// Package openweather implements rainfall.Provider against the
// OpenWeatherMap current-weather API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/floodline/waterlog-monitor/internal/domain"
)

// Client fetches current weather for a fixed city. The HTTP client timeout
// bounds every request so a slow provider cannot stall a refresh.
type Client struct {
	apiKey     string
	city       string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey, city, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		city:    city,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch returns the current observation. Rainfall is the last hour's
// accumulation; missing rain data means no rain, not an error.
func (c *Client) Fetch(ctx context.Context) (domain.RainfallReading, error) {
	params := url.Values{
		"q":     {c.city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.RainfallReading{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RainfallReading{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.RainfallReading{}, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		return domain.RainfallReading{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.RainfallReading{
		RainfallMM: owm.Rain.OneHour,
		Humidity:   owm.Main.Humidity,
		Pressure:   owm.Main.Pressure,
	}, nil
}

// OpenWeatherMap API response types.

type response struct {
	Rain rainField `json:"rain"`
	Main mainField `json:"main"`
}

type rainField struct {
	OneHour float64 `json:"1h"`
}

type mainField struct {
	Humidity int `json:"humidity"`
	Pressure int `json:"pressure"`
}
