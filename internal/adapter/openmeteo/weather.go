package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
	"github.com/couchcryptid/city-spending-enricher/internal/httpclient"
)

// DefaultForecastBaseURL is the production forecast API.
const DefaultForecastBaseURL = "https://api.open-meteo.com/v1"

// ForecastClient implements domain.WeatherProvider using the Open-Meteo
// forecast endpoint with current_weather=true.
type ForecastClient struct {
	fetcher *httpclient.Client
	baseURL string
	retries int
	logger  *slog.Logger
}

// NewForecastClient creates a weather client. An empty baseURL selects the
// production endpoint.
func NewForecastClient(fetcher *httpclient.Client, baseURL string, retries int, logger *slog.Logger) *ForecastClient {
	if baseURL == "" {
		baseURL = DefaultForecastBaseURL
	}
	return &ForecastClient{
		fetcher: fetcher,
		baseURL: baseURL,
		retries: retries,
		logger:  logger,
	}
}

// CurrentWeather fetches current temperature and wind speed for the given
// coordinates. Fields missing from the response stay nil individually.
func (c *ForecastClient) CurrentWeather(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	params := url.Values{
		"latitude":        {formatCoord(lat)},
		"longitude":       {formatCoord(lon)},
		"current_weather": {"true"},
	}

	var resp forecastResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/forecast", params, nil, c.retries, &resp); err != nil {
		return domain.Weather{}, fmt.Errorf("current weather (%s, %s): %w", formatCoord(lat), formatCoord(lon), err)
	}

	if resp.CurrentWeather.Temperature == nil && resp.CurrentWeather.Windspeed == nil {
		c.logger.Debug("no current weather in response", "lat", lat, "lon", lon)
	}

	return domain.Weather{
		TemperatureC: resp.CurrentWeather.Temperature,
		WindSpeedMps: resp.CurrentWeather.Windspeed,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Open-Meteo forecast API response types.

type forecastResponse struct {
	CurrentWeather currentWeather `json:"current_weather"`
}

type currentWeather struct {
	Temperature *float64 `json:"temperature"`
	Windspeed   *float64 `json:"windspeed"`
}
