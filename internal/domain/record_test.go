package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichedRecord_JSON_FullyResolved(t *testing.T) {
	rate := decimal.RequireFromString("1.09")
	usd := decimal.RequireFromString("13.63")
	lat, lon, temp, wind := 38.7167, -9.1333, 21.4, 3.2

	rec := EnrichedRecord{
		City:          "Lisbon",
		CountryCode:   "PT",
		LocalCurrency: "EUR",
		AmountLocal:   decimal.RequireFromString("12.50"),
		FxRateToUSD:   &rate,
		AmountUSD:     &usd,
		Latitude:      &lat,
		Longitude:     &lon,
		TemperatureC:  &temp,
		WindSpeedMps:  &wind,
		RetrievedAt:   "2026-08-23T10:00:00Z",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	// Decimals serialize as JSON numbers, not strings.
	assert.JSONEq(t, `{
		"city": "Lisbon",
		"country_code": "PT",
		"local_currency": "EUR",
		"amount_local": 12.50,
		"fx_rate_to_usd": 1.09,
		"amount_usd": 13.63,
		"latitude": 38.7167,
		"longitude": -9.1333,
		"temperature_c": 21.4,
		"wind_speed_mps": 3.2,
		"retrieved_at": "2026-08-23T10:00:00Z"
	}`, string(data))
}

func TestEnrichedRecord_JSON_AbsentFieldsAreNull(t *testing.T) {
	rec := EnrichedRecord{
		City:          "Nowhere",
		CountryCode:   "XX",
		LocalCurrency: "XTS",
		AmountLocal:   decimal.RequireFromString("5"),
		RetrievedAt:   "2026-08-23T10:00:00Z",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"city": "Nowhere",
		"country_code": "XX",
		"local_currency": "XTS",
		"amount_local": 5,
		"fx_rate_to_usd": null,
		"amount_usd": null,
		"latitude": null,
		"longitude": null,
		"temperature_c": null,
		"wind_speed_mps": null,
		"retrieved_at": "2026-08-23T10:00:00Z"
	}`, string(data))
}

func TestRetrievalTimestamp_SecondPrecisionUTC(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 15, 10, 5, 700_000_000, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, "2024-04-26T15:10:05Z", RetrievalTimestamp())
}

func TestRetrievalTimestamp_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	fake := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 17, 0, 0, 0, loc))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, "2024-04-26T15:00:00Z", RetrievalTimestamp())
}
