// Package domain models city-level spending records and their enrichment.
//
// # Data Source
//
// Input rows come from a UTF-8 CSV file with the required header columns
// city, country_code, local_currency, and amount. The amount column is the
// only field that must parse: it is a strictly positive decimal, and a bad
// amount aborts the whole run before any output is written. Every other
// enrichment field is best effort.
//
// # Enrichment Providers
//
// Geocoding and current weather come from the Open-Meteo public APIs:
//
//	GET /v1/search?name=<city>&country=<cc>&count=1
//	  → {"results":[{"latitude":38.72,"longitude":-9.14}, ...]}
//	GET /v1/forecast?latitude=<lat>&longitude=<lon>&current_weather=true
//	  → {"current_weather":{"temperature":21.4,"windspeed":3.2}}
//
// Currency conversion tries up to four endpoint/shape combinations across
// two providers, in strict priority order, stopping at the first usable
// result:
//
//	1. currencylayer /convert    (keyed)   {"success":true,"info":{"rate":r},"result":a}
//	2. currencylayer /live       (keyed)   {"success":true,"quotes":{"USD<CUR>":q}}
//	   The quote expresses USD→CUR, so the CUR→USD rate is 1/q.
//	3. exchangerate.host /convert (unkeyed) {"info":{"rate":r},"result":a}
//	4. exchangerate.host /latest  (unkeyed) {"rates":{"USD":r}}
//
// A currency of "USD" short-circuits with rate 1 and no network call.
//
// # Money Arithmetic
//
// All monetary values use decimal.Decimal; binary floats never touch an
// amount or a rate. USD amounts are quantized to exactly two fractional
// digits with half-up rounding (midpoints away from zero): 42.005 → 42.01.
//
// # Degradation Rules
//
// Coordinate presence gates the weather lookup: when geocoding finds
// nothing, temperature and wind stay absent and the forecast endpoint is
// never called. Currency conversion is independent of both. A row whose
// every resolver fails still appears in the output with its optional
// fields null. Resolver failures surface as [Diagnostic] values, never as
// errors past [EnrichRow].
package domain
