package csvfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRows_HappyPath(t *testing.T) {
	path := writeCSV(t, "city,country_code,local_currency,amount\n"+
		"Lisbon,PT,EUR,12.50\n"+
		"Tokyo,JP,JPY,1500\n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.SpendingRow{
		City: "Lisbon", CountryCode: "PT", LocalCurrency: "EUR", Amount: "12.50", Line: 1,
	}, rows[0])
	assert.Equal(t, domain.SpendingRow{
		City: "Tokyo", CountryCode: "JP", LocalCurrency: "JPY", Amount: "1500", Line: 2,
	}, rows[1])
}

func TestReadRows_TrimsWhitespace(t *testing.T) {
	path := writeCSV(t, "city, country_code ,local_currency,amount\n"+
		" Lisbon , PT , EUR , 12.50 \n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lisbon", rows[0].City)
	assert.Equal(t, "PT", rows[0].CountryCode)
	assert.Equal(t, "12.50", rows[0].Amount)
}

func TestReadRows_ColumnOrderIndependent(t *testing.T) {
	path := writeCSV(t, "amount,city,local_currency,country_code\n"+
		"12.50,Lisbon,EUR,PT\n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lisbon", rows[0].City)
	assert.Equal(t, "12.50", rows[0].Amount)
}

func TestReadRows_ExtraColumnsIgnored(t *testing.T) {
	path := writeCSV(t, "city,country_code,local_currency,amount,notes\n"+
		"Lisbon,PT,EUR,12.50,team lunch\n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EUR", rows[0].LocalCurrency)
}

func TestReadRows_ShortRecordYieldsEmptyFields(t *testing.T) {
	path := writeCSV(t, "city,country_code,local_currency,amount\n"+
		"Lisbon,PT\n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lisbon", rows[0].City)
	assert.Empty(t, rows[0].LocalCurrency)
	assert.Empty(t, rows[0].Amount)
}

func TestReadRows_MissingHeader(t *testing.T) {
	path := writeCSV(t, "city,country_code,amount\nLisbon,PT,12.50\n")

	_, err := ReadRows(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required CSV header: local_currency")
}

func TestReadRows_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := ReadRows(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required CSV header")
}

func TestReadRows_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "city,country_code,local_currency,amount\n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRows_FileNotFound(t *testing.T) {
	_, err := ReadRows(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
}
