// Command mockproviders serves local fakes of the four external APIs the
// enricher talks to, for demos and hermetic runs without network access or
// API keys.
//
// Usage:
//
//	go run ./cmd/mockproviders -addr :8089
//
//	GEOCODING_BASE_URL=http://localhost:8089/geocoding/v1 \
//	WEATHER_BASE_URL=http://localhost:8089/weather/v1 \
//	CURRENCYLAYER_BASE_URL=http://localhost:8089/currencylayer \
//	EXCHANGERATE_BASE_URL=http://localhost:8089/exchangerate \
//	go run ./cmd/enricher -input expenses.csv -pretty
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// city fixtures keyed by lowercase city name.
var cities = map[string]struct {
	lat, lon   float64
	temp, wind float64
}{
	"lisbon":    {38.7167, -9.1333, 21.4, 3.2},
	"tokyo":     {35.6895, 139.6917, 27.8, 1.9},
	"austin":    {30.2672, -97.7431, 33.1, 4.4},
	"reykjavik": {64.1355, -21.8954, 9.6, 8.7},
}

// usdPerUnit is the CUR→USD rate fixture shared by both fake providers.
var usdPerUnit = map[string]decimal.Decimal{
	"EUR": decimal.RequireFromString("1.09"),
	"JPY": decimal.RequireFromString("0.0066666666666667"),
	"GBP": decimal.RequireFromString("1.27"),
	"ISK": decimal.RequireFromString("0.0072"),
}

func main() {
	addr := flag.String("addr", ":8089", "listen address")
	flag.Parse()

	// Rates and results go out as JSON numbers, matching the real providers.
	decimal.MarshalJSONWithoutQuotes = true

	mux := http.NewServeMux()
	mux.HandleFunc("GET /geocoding/v1/search", handleGeocode)
	mux.HandleFunc("GET /weather/v1/forecast", handleForecast)
	mux.HandleFunc("GET /currencylayer/convert", handleCurrencylayerConvert)
	mux.HandleFunc("GET /currencylayer/live", handleCurrencylayerLive)
	mux.HandleFunc("GET /exchangerate/convert", handleExchangerateConvert)
	mux.HandleFunc("GET /exchangerate/latest", handleExchangerateLatest)

	log.Printf("mock providers listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func handleGeocode(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	c, ok := cities[name]
	if !ok {
		writeJSON(w, map[string]any{"results": []any{}})
		return
	}
	writeJSON(w, map[string]any{
		"results": []map[string]any{
			{"latitude": c.lat, "longitude": c.lon},
		},
	})
}

func handleForecast(w http.ResponseWriter, r *http.Request) {
	lat := r.URL.Query().Get("latitude")
	for _, c := range cities {
		if strings.HasPrefix(lat, trimFloat(c.lat)) {
			writeJSON(w, map[string]any{
				"current_weather": map[string]any{
					"temperature": c.temp,
					"windspeed":   c.wind,
				},
			})
			return
		}
	}
	// Unknown coordinates still get a current_weather block, fields absent.
	writeJSON(w, map[string]any{"current_weather": map[string]any{}})
}

func handleCurrencylayerConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("access_key") == "" {
		writeJSON(w, map[string]any{
			"success": false,
			"error":   map[string]any{"code": 101, "info": "You have not supplied an API Access Key."},
		})
		return
	}
	rate, ok := usdPerUnit[strings.ToUpper(q.Get("from"))]
	if !ok {
		writeJSON(w, map[string]any{
			"success": false,
			"error":   map[string]any{"code": 402, "info": "Invalid from currency."},
		})
		return
	}
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeJSON(w, map[string]any{
			"success": false,
			"error":   map[string]any{"code": 403, "info": "Invalid amount."},
		})
		return
	}
	writeJSON(w, map[string]any{
		"success": true,
		"info":    map[string]any{"rate": rate},
		"result":  rate.Mul(amount),
	})
}

func handleCurrencylayerLive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("access_key") == "" {
		writeJSON(w, map[string]any{
			"success": false,
			"error":   map[string]any{"code": 101, "info": "You have not supplied an API Access Key."},
		})
		return
	}
	cur := strings.ToUpper(q.Get("currencies"))
	rate, ok := usdPerUnit[cur]
	if !ok || rate.IsZero() {
		writeJSON(w, map[string]any{"success": true, "quotes": map[string]any{}})
		return
	}
	// Live quotes are USD-based: USD<CUR> = 1 / (CUR→USD).
	quote := decimal.NewFromInt(1).Div(rate)
	writeJSON(w, map[string]any{
		"success": true,
		"quotes":  map[string]any{"USD" + cur: quote},
	})
}

func handleExchangerateConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rate, ok := usdPerUnit[strings.ToUpper(q.Get("from"))]
	if !ok {
		writeJSON(w, map[string]any{})
		return
	}
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, map[string]any{
		"info":   map[string]any{"rate": rate},
		"result": rate.Mul(amount),
	})
}

func handleExchangerateLatest(w http.ResponseWriter, r *http.Request) {
	rate, ok := usdPerUnit[strings.ToUpper(r.URL.Query().Get("base"))]
	if !ok {
		writeJSON(w, map[string]any{"rates": map[string]any{}})
		return
	}
	writeJSON(w, map[string]any{"rates": map[string]any{"USD": rate}})
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(decimal.NewFromFloat(v).String(), "0"), ".")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
