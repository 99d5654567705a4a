// Package csvfile reads spending rows from the input CSV.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

var requiredHeaders = []string{"city", "country_code", "local_currency", "amount"}

// ReadRows opens path and returns its data rows in file order. A missing
// required header column is a startup error; no rows are returned in that
// case. Field values are trimmed of surrounding whitespace.
func ReadRows(path string) ([]domain.SpendingRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) ([]domain.SpendingRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may carry extra columns; index by header

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing required CSV header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredHeaders {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required CSV header: %s", name)
		}
	}

	var rows []domain.SpendingRow
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		rows = append(rows, domain.SpendingRow{
			City:          field(record, index, "city"),
			CountryCode:   field(record, index, "country_code"),
			LocalCurrency: field(record, index, "local_currency"),
			Amount:        field(record, index, "amount"),
			Line:          line,
		})
	}
	return rows, nil
}

func field(record []string, index map[string]int, name string) string {
	i := index[name]
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
