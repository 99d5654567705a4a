// Package config loads run settings from the environment, with CLI flags
// layered on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputPath  string
	OutputPath string
	Pretty     bool

	// FXAPIKey enables the keyed currencylayer steps of the conversion
	// chain. Empty means unkeyed fallback only.
	FXAPIKey string

	HTTPTimeout      time.Duration
	FetchRetries     int
	GeocodeCacheSize int

	// Provider base URLs, overridable for hermetic runs against
	// cmd/mockproviders or test servers.
	GeocodingBaseURL     string
	WeatherBaseURL       string
	CurrencylayerBaseURL string
	ExchangerateBaseURL  string

	// MetricsAddr enables the health/metrics HTTP server when non-empty.
	MetricsAddr string

	// Kafka sink, enabled when both brokers and topic are set.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := parseDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	retries, err := parseNonNegativeInt("FETCH_RETRIES", 1)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	topic := os.Getenv("KAFKA_TOPIC")
	if len(brokers) > 0 && topic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is not")
	}
	if topic != "" && len(brokers) == 0 {
		return nil, errors.New("KAFKA_TOPIC is set but KAFKA_BROKERS is not")
	}

	cfg := &Config{
		InputPath:  envOrDefault("INPUT_PATH", "expenses.csv"),
		OutputPath: envOrDefault("OUTPUT_PATH", "enriched.json"),
		Pretty:     os.Getenv("PRETTY") == "true",
		FXAPIKey:   os.Getenv("EXCHANGERATE_HOST_KEY"),

		HTTPTimeout:      timeout,
		FetchRetries:     retries,
		GeocodeCacheSize: cacheSize,

		GeocodingBaseURL:     os.Getenv("GEOCODING_BASE_URL"),
		WeatherBaseURL:       os.Getenv("WEATHER_BASE_URL"),
		CurrencylayerBaseURL: os.Getenv("CURRENCYLAYER_BASE_URL"),
		ExchangerateBaseURL:  os.Getenv("EXCHANGERATE_BASE_URL"),

		MetricsAddr:  os.Getenv("METRICS_ADDR"),
		KafkaBrokers: brokers,
		KafkaTopic:   topic,
		KafkaEnabled: len(brokers) > 0 && topic != "",

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
