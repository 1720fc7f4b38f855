// Package nominatim implements domain.Geocoder against the OpenStreetMap
// Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/floodline/waterlog-monitor/internal/domain"
)

// Client resolves free-text locations to coordinates. A city suffix is
// appended to every query for better accuracy within the monitored area.
type Client struct {
	baseURL     string
	userAgent   string
	querySuffix string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a Nominatim geocoding client. Nominatim's usage policy
// requires an identifying User-Agent.
func NewClient(baseURL, userAgent, querySuffix string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		userAgent:   userAgent,
		querySuffix: querySuffix,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Resolve converts a location name to coordinates. A zero result means the
// provider found no match; only transport or decoding problems are errors.
func (c *Client) Resolve(ctx context.Context, query string) (domain.GeocodeResult, error) {
	if c.querySuffix != "" {
		query = fmt.Sprintf("%s, %s", query, c.querySuffix)
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodeResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		return domain.GeocodeResult{}, nil
	}

	p := places[0]
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lon, errLon := strconv.ParseFloat(p.Lon, 64)
	if errLat != nil || errLon != nil {
		return domain.GeocodeResult{}, fmt.Errorf("invalid coordinates %q,%q", p.Lat, p.Lon)
	}

	return domain.GeocodeResult{
		Lat:     lat,
		Lon:     lon,
		Address: p.DisplayName,
	}, nil
}

// Nominatim API response types. Coordinates arrive as strings.

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
