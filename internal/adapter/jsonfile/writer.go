// Package jsonfile writes enriched records as a single JSON array.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

// WriteRecords serializes records to path, one object per input row, in
// input order. pretty selects 2-space indentation; otherwise the output is
// compact. The file is created only here, after the whole batch succeeded,
// so a fatal abort upstream never leaves a partial file behind.
func WriteRecords(path string, records []domain.EnrichedRecord, pretty bool) error {
	if records == nil {
		records = []domain.EnrichedRecord{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if pretty {
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
