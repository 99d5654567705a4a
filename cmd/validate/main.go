// Command validate cross-checks an enriched JSON output file against the
// CSV it was produced from. It verifies row counts and ordering, required
// field presence, coordinate-pair atomicity, weather gating, FX math, and
// retrieved_at uniformity.
//
// Usage:
//
//	go run ./cmd/validate -input expenses.csv -output enriched.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/city-spending-enricher/internal/adapter/csvfile"
	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

// usdTolerance absorbs the half-up quantization: |rate*amount - amount_usd|
// can never legitimately exceed half a cent.
var usdTolerance = decimal.RequireFromString("0.005")

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	inputPath := flag.String("input", "", "path to the source CSV")
	outputPath := flag.String("output", "", "path to the enriched JSON output")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "missing required flags: -input, -output")
		os.Exit(2)
	}

	rows, err := csvfile.ReadRows(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read output: %v\n", err)
		os.Exit(1)
	}
	var records []domain.EnrichedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		fmt.Fprintf(os.Stderr, "parse output: %v\n", err)
		os.Exit(1)
	}

	phases := []*phase{
		checkRowAlignment(rows, records),
		checkRequiredFields(records),
		checkCoordinateAtomicity(records),
		checkWeatherGating(records),
		checkFXMath(records),
		checkRetrievedAt(records),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		os.Exit(1)
	}
	fmt.Printf("all %d phases passed (%d rows)\n", len(phases), len(records))
}

// checkRowAlignment verifies output count and ordering match the input.
func checkRowAlignment(rows []domain.SpendingRow, records []domain.EnrichedRecord) *phase {
	p := &phase{name: "row alignment"}
	if len(rows) != len(records) {
		p.errorf("row count mismatch: %d input rows, %d output records", len(rows), len(records))
		return p
	}
	for i, row := range rows {
		rec := records[i]
		if rec.City != row.City || rec.CountryCode != row.CountryCode || rec.LocalCurrency != row.LocalCurrency {
			p.errorf("row %d: identity mismatch: input (%s,%s,%s) vs output (%s,%s,%s)",
				row.Line, row.City, row.CountryCode, row.LocalCurrency,
				rec.City, rec.CountryCode, rec.LocalCurrency)
		}
	}
	return p
}

func checkRequiredFields(records []domain.EnrichedRecord) *phase {
	p := &phase{name: "required fields"}
	for i, rec := range records {
		if rec.AmountLocal.Sign() <= 0 {
			p.errorf("record %d: amount_local %s is not positive", i+1, rec.AmountLocal)
		}
		if rec.RetrievedAt == "" {
			p.errorf("record %d: retrieved_at is empty", i+1)
		}
	}
	return p
}

// checkCoordinateAtomicity verifies latitude and longitude are present or
// absent together.
func checkCoordinateAtomicity(records []domain.EnrichedRecord) *phase {
	p := &phase{name: "coordinate atomicity"}
	for i, rec := range records {
		if (rec.Latitude == nil) != (rec.Longitude == nil) {
			p.errorf("record %d: latitude/longitude presence differs", i+1)
		}
	}
	return p
}

// checkWeatherGating verifies no weather fields appear without coordinates.
func checkWeatherGating(records []domain.EnrichedRecord) *phase {
	p := &phase{name: "weather gating"}
	for i, rec := range records {
		if rec.Latitude == nil && (rec.TemperatureC != nil || rec.WindSpeedMps != nil) {
			p.errorf("record %d: weather present without coordinates", i+1)
		}
	}
	return p
}

// checkFXMath verifies rate and amount appear together and that
// amount_usd matches rate*amount_local within rounding tolerance.
func checkFXMath(records []domain.EnrichedRecord) *phase {
	p := &phase{name: "fx math"}
	for i, rec := range records {
		if (rec.FxRateToUSD == nil) != (rec.AmountUSD == nil) {
			p.errorf("record %d: fx_rate_to_usd/amount_usd presence differs", i+1)
			continue
		}
		if rec.FxRateToUSD == nil {
			continue
		}
		if rec.AmountUSD.Exponent() < -2 {
			p.errorf("record %d: amount_usd %s has more than 2 fractional digits", i+1, rec.AmountUSD)
		}
		expected := rec.FxRateToUSD.Mul(rec.AmountLocal)
		if expected.Sub(*rec.AmountUSD).Abs().GreaterThan(usdTolerance) {
			p.errorf("record %d: amount_usd %s does not match rate %s x amount %s",
				i+1, rec.AmountUSD, rec.FxRateToUSD, rec.AmountLocal)
		}
	}
	return p
}

// checkRetrievedAt verifies the timestamp parses as RFC 3339 UTC and is
// identical across the batch.
func checkRetrievedAt(records []domain.EnrichedRecord) *phase {
	p := &phase{name: "retrieved_at uniformity"}
	if len(records) == 0 {
		return p
	}
	first := records[0].RetrievedAt
	if _, err := time.Parse(time.RFC3339, first); err != nil {
		p.errorf("record 1: retrieved_at %q is not RFC 3339: %v", first, err)
	}
	for i, rec := range records[1:] {
		if rec.RetrievedAt != first {
			p.errorf("record %d: retrieved_at %q differs from record 1 (%q)", i+2, rec.RetrievedAt, first)
		}
	}
	return p
}
