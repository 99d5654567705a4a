package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Geocoder resolves a (city, country code) pair to coordinates.
// found is false when the provider has no match for the query; that is an
// expected outcome, not an error.
type Geocoder interface {
	Geocode(ctx context.Context, city, countryCode string) (coords Coordinates, found bool, err error)
}

// WeatherProvider resolves coordinates to current conditions.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (Weather, error)
}

// CurrencyConverter resolves a local-currency amount to USD.
// ok is false when every source in the converter's fallback chain was tried
// and none yielded a usable rate.
type CurrencyConverter interface {
	ConvertToUSD(ctx context.Context, currencyCode string, amount decimal.Decimal) (conv Conversion, ok bool, err error)
}

// Resolvers bundles the three enrichment dependencies. Any of them may be
// nil, which skips that category of enrichment entirely.
type Resolvers struct {
	Geocoder Geocoder
	Weather  WeatherProvider
	Currency CurrencyConverter
}
