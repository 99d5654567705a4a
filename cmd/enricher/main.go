// Command enricher reads a CSV of city-level spending records, enriches
// each row with geolocation, current weather, and a USD-converted amount
// from external APIs, and writes the enriched records as a JSON array.
//
// Usage:
//
//	enricher -input expenses.csv -output enriched.json -pretty
//
// The currencylayer API key is taken from -fx-key or EXCHANGERATE_HOST_KEY;
// without one, conversion falls back to the unkeyed exchangerate.host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/city-spending-enricher/internal/adapter/csvfile"
	"github.com/couchcryptid/city-spending-enricher/internal/adapter/currency"
	httpadapter "github.com/couchcryptid/city-spending-enricher/internal/adapter/http"
	"github.com/couchcryptid/city-spending-enricher/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/city-spending-enricher/internal/adapter/kafka"
	"github.com/couchcryptid/city-spending-enricher/internal/adapter/openmeteo"
	"github.com/couchcryptid/city-spending-enricher/internal/config"
	"github.com/couchcryptid/city-spending-enricher/internal/domain"
	"github.com/couchcryptid/city-spending-enricher/internal/httpclient"
	"github.com/couchcryptid/city-spending-enricher/internal/observability"
	"github.com/couchcryptid/city-spending-enricher/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	applyFlags(cfg)

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// applyFlags layers CLI flags over the environment-derived config.
func applyFlags(cfg *config.Config) {
	flag.StringVar(&cfg.InputPath, "input", cfg.InputPath, "path to input CSV")
	flag.StringVar(&cfg.InputPath, "i", cfg.InputPath, "path to input CSV (shorthand)")
	flag.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "path to output JSON file")
	flag.StringVar(&cfg.OutputPath, "o", cfg.OutputPath, "path to output JSON file (shorthand)")
	flag.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "pretty-print JSON with indentation")
	flag.StringVar(&cfg.FXAPIKey, "fx-key", cfg.FXAPIKey, "currencylayer API key (optional; falls back to exchangerate.host)")
	flag.Parse()
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	fetcher := httpclient.New(cfg.HTTPTimeout, logger, metrics)

	var geocoder domain.Geocoder = openmeteo.NewGeocodingClient(fetcher, cfg.GeocodingBaseURL, cfg.FetchRetries, logger)
	if cfg.GeocodeCacheSize > 0 {
		geocoder = openmeteo.NewCachedGeocoder(geocoder, cfg.GeocodeCacheSize)
	}

	resolvers := domain.Resolvers{
		Geocoder: geocoder,
		Weather:  openmeteo.NewForecastClient(fetcher, cfg.WeatherBaseURL, cfg.FetchRetries, logger),
		Currency: currency.NewConverter(fetcher, cfg.FXAPIKey, cfg.CurrencylayerBaseURL, cfg.ExchangerateBaseURL, cfg.FetchRetries, logger, metrics),
	}

	p := pipeline.New(resolvers, logger, metrics)

	if cfg.KafkaEnabled {
		sink := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		p.WithSink(sink)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	rows, err := csvfile.ReadRows(cfg.InputPath)
	if err != nil {
		return err
	}

	records, err := p.Run(ctx, rows)
	if err != nil {
		return err
	}

	if err := jsonfile.WriteRecords(cfg.OutputPath, records, cfg.Pretty); err != nil {
		return err
	}

	fmt.Printf("wrote %d rows to %s\n", len(records), cfg.OutputPath)
	return nil
}
