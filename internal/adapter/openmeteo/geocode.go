// Package openmeteo implements the geocoding and weather resolvers against
// the Open-Meteo public APIs.
package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
	"github.com/couchcryptid/city-spending-enricher/internal/httpclient"
)

// DefaultGeocodingBaseURL is the production geocoding search API.
const DefaultGeocodingBaseURL = "https://geocoding-api.open-meteo.com/v1"

// GeocodingClient implements domain.Geocoder using the Open-Meteo
// geocoding search endpoint.
type GeocodingClient struct {
	fetcher *httpclient.Client
	baseURL string
	retries int
	logger  *slog.Logger
}

// NewGeocodingClient creates a geocoding client. An empty baseURL selects
// the production endpoint; retries is the extra-attempt budget passed to
// the fetch client.
func NewGeocodingClient(fetcher *httpclient.Client, baseURL string, retries int, logger *slog.Logger) *GeocodingClient {
	if baseURL == "" {
		baseURL = DefaultGeocodingBaseURL
	}
	return &GeocodingClient{
		fetcher: fetcher,
		baseURL: baseURL,
		retries: retries,
		logger:  logger,
	}
}

// Geocode resolves a city and country code to coordinates, requesting a
// single result. Zero results is a normal outcome (found=false, nil error).
func (c *GeocodingClient) Geocode(ctx context.Context, city, countryCode string) (domain.Coordinates, bool, error) {
	params := url.Values{
		"name":    {city},
		"country": {countryCode},
		"count":   {"1"},
	}

	var resp searchResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/search", params, nil, c.retries, &resp); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode %q: %w", city, err)
	}

	if len(resp.Results) == 0 {
		c.logger.Debug("no geocoding match", "city", city, "country", countryCode)
		return domain.Coordinates{}, false, nil
	}

	first := resp.Results[0]
	return domain.Coordinates{Latitude: first.Latitude, Longitude: first.Longitude}, true, nil
}

// Open-Meteo geocoding API response types.

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
