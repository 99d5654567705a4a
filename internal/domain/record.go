package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The output schema serializes decimals as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// SpendingRow is one raw input row from the CSV. Fields are trimmed but
// otherwise unvalidated; Amount stays textual until ParseAmount.
type SpendingRow struct {
	City          string
	CountryCode   string
	LocalCurrency string
	Amount        string
	Line          int // 1-based data row index, used in diagnostics
}

// Coordinates is a WGS-84 latitude/longitude pair. The pair is atomic:
// a record carries both values or neither.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Weather holds current conditions. Temperature and wind speed are
// independently optional; a provider may report one without the other.
type Weather struct {
	TemperatureC *float64
	WindSpeedMps *float64
}

// Conversion is a resolved local-currency→USD conversion. AmountUSD is
// already quantized to two fractional digits, half-up.
type Conversion struct {
	Rate      decimal.Decimal
	AmountUSD decimal.Decimal
}

// EnrichedRecord is the fully assembled output row. It is built once per
// input row and never mutated afterwards. Optional fields are pointers so
// absence serializes as JSON null.
type EnrichedRecord struct {
	City          string           `json:"city"`
	CountryCode   string           `json:"country_code"`
	LocalCurrency string           `json:"local_currency"`
	AmountLocal   decimal.Decimal  `json:"amount_local"`
	FxRateToUSD   *decimal.Decimal `json:"fx_rate_to_usd"`
	AmountUSD     *decimal.Decimal `json:"amount_usd"`
	Latitude      *float64         `json:"latitude"`
	Longitude     *float64         `json:"longitude"`
	TemperatureC  *float64         `json:"temperature_c"`
	WindSpeedMps  *float64         `json:"wind_speed_mps"`
	RetrievedAt   string           `json:"retrieved_at"`
}
