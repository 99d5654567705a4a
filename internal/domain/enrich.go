package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Diagnostic is a structured warning produced while enriching one row.
// Resolvers degrade to absent values instead of failing the row; each
// degradation caused by an error is reported as a Diagnostic so the caller
// can route it to its logging sink.
type Diagnostic struct {
	Resolver string // "geocode", "weather", or "currency"
	Row      int    // 1-based input row index
	City     string
	Message  string
	Err      error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s failed for row %d (%s): %v", d.Resolver, d.Row, d.City, d.Err)
}

// EnrichRow resolves geolocation, weather, and currency conversion for one
// row and assembles the output record from whatever subset succeeded.
// amount must already be validated by ParseAmount. Resolver errors never
// propagate; they come back as diagnostics alongside a record whose
// corresponding fields are absent.
func EnrichRow(ctx context.Context, row SpendingRow, amount decimal.Decimal, r Resolvers, retrievedAt string) (EnrichedRecord, []Diagnostic) {
	rec := EnrichedRecord{
		City:          row.City,
		CountryCode:   row.CountryCode,
		LocalCurrency: row.LocalCurrency,
		AmountLocal:   amount,
		RetrievedAt:   retrievedAt,
	}
	var diags []Diagnostic

	coords, located, diag := resolveGeocode(ctx, row, r.Geocoder)
	if diag != nil {
		diags = append(diags, *diag)
	}
	if located {
		rec.Latitude = &coords.Latitude
		rec.Longitude = &coords.Longitude

		// Weather is only attempted when coordinates resolved.
		if r.Weather != nil {
			weather, err := r.Weather.CurrentWeather(ctx, coords.Latitude, coords.Longitude)
			if err != nil {
				diags = append(diags, Diagnostic{
					Resolver: "weather", Row: row.Line, City: row.City,
					Message: "weather lookup failed", Err: err,
				})
			} else {
				rec.TemperatureC = weather.TemperatureC
				rec.WindSpeedMps = weather.WindSpeedMps
			}
		}
	}

	// Currency conversion is independent of geocoding and weather.
	if r.Currency != nil {
		conv, ok, err := r.Currency.ConvertToUSD(ctx, row.LocalCurrency, amount)
		switch {
		case err != nil:
			diags = append(diags, Diagnostic{
				Resolver: "currency", Row: row.Line, City: row.City,
				Message: "currency conversion failed", Err: err,
			})
		case ok:
			rec.FxRateToUSD = &conv.Rate
			rec.AmountUSD = &conv.AmountUSD
		}
	}

	return rec, diags
}

func resolveGeocode(ctx context.Context, row SpendingRow, geocoder Geocoder) (Coordinates, bool, *Diagnostic) {
	if geocoder == nil {
		return Coordinates{}, false, nil
	}
	coords, found, err := geocoder.Geocode(ctx, row.City, row.CountryCode)
	if err != nil {
		return Coordinates{}, false, &Diagnostic{
			Resolver: "geocode", Row: row.Line, City: row.City,
			Message: "geocoding failed", Err: err,
		}
	}
	return coords, found, nil
}
