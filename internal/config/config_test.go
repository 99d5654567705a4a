package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so tests are insensitive to the
// ambient environment. t.Setenv also restores prior values on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INPUT_PATH", "OUTPUT_PATH", "PRETTY", "EXCHANGERATE_HOST_KEY",
		"HTTP_TIMEOUT", "FETCH_RETRIES", "GEOCODE_CACHE_SIZE",
		"GEOCODING_BASE_URL", "WEATHER_BASE_URL",
		"CURRENCYLAYER_BASE_URL", "EXCHANGERATE_BASE_URL",
		"METRICS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "expenses.csv", cfg.InputPath)
	assert.Equal(t, "enriched.json", cfg.OutputPath)
	assert.False(t, cfg.Pretty)
	assert.Empty(t, cfg.FXAPIKey)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 1, cfg.FetchRetries)
	assert.Equal(t, 1000, cfg.GeocodeCacheSize)
	assert.Empty(t, cfg.GeocodingBaseURL)
	assert.Empty(t, cfg.MetricsAddr)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("INPUT_PATH", "/data/spend.csv")
	t.Setenv("OUTPUT_PATH", "/data/out.json")
	t.Setenv("PRETTY", "true")
	t.Setenv("EXCHANGERATE_HOST_KEY", "secret")
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("FETCH_RETRIES", "3")
	t.Setenv("GEOCODE_CACHE_SIZE", "50")
	t.Setenv("GEOCODING_BASE_URL", "http://localhost:8089/geocoding/v1")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/spend.csv", cfg.InputPath)
	assert.Equal(t, "/data/out.json", cfg.OutputPath)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, "secret", cfg.FXAPIKey)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.FetchRetries)
	assert.Equal(t, 50, cfg.GeocodeCacheSize)
	assert.Equal(t, "http://localhost:8089/geocoding/v1", cfg.GeocodingBaseURL)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_ZeroRetriesAllowed(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_RETRIES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.FetchRetries)
}

func TestLoad_Kafka(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("KAFKA_TOPIC", "enriched-spending")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "enriched-spending", cfg.KafkaTopic)
}

func TestLoad_KafkaBrokersWithoutTopic(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "broker-1:9092")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_TOPIC is not")
}

func TestLoad_KafkaTopicWithoutBrokers(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_TOPIC", "enriched-spending")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS is not")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"HTTP_TIMEOUT", "soon"},
		{"HTTP_TIMEOUT", "-1s"},
		{"FETCH_RETRIES", "-1"},
		{"FETCH_RETRIES", "two"},
		{"GEOCODE_CACHE_SIZE", "0"},
		{"GEOCODE_CACHE_SIZE", "big"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}
