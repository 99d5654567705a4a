//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/city-spending-enricher/internal/adapter/kafka"
	"github.com/couchcryptid/city-spending-enricher/internal/domain"
	"github.com/couchcryptid/city-spending-enricher/internal/observability"
	"github.com/couchcryptid/city-spending-enricher/internal/pipeline"
)

const testSinkTopic = "test-enriched-spending"

// startKafka launches a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- stub resolvers so the run needs no provider network access ---

type staticGeocoder struct{}

func (staticGeocoder) Geocode(_ context.Context, city, _ string) (domain.Coordinates, bool, error) {
	if city == "Lisbon" {
		return domain.Coordinates{Latitude: 38.7167, Longitude: -9.1333}, true, nil
	}
	return domain.Coordinates{}, false, nil
}

type staticWeather struct{}

func (staticWeather) CurrentWeather(context.Context, float64, float64) (domain.Weather, error) {
	temp, wind := 21.4, 3.2
	return domain.Weather{TemperatureC: &temp, WindSpeedMps: &wind}, nil
}

type staticConverter struct{}

func (staticConverter) ConvertToUSD(_ context.Context, code string, amount decimal.Decimal) (domain.Conversion, bool, error) {
	if code != "EUR" {
		return domain.Conversion{}, false, nil
	}
	rate := decimal.RequireFromString("1.09")
	return domain.Conversion{Rate: rate, AmountUSD: domain.RoundUSD(rate.Mul(amount))}, true, nil
}

// TestKafkaSinkRoundTrip runs the pipeline against real Kafka and verifies
// the enriched records land on the sink topic with key and headers intact.
func TestKafkaSinkRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	sink := kafka.NewWriter([]string{broker}, testSinkTopic, discardLogger())
	t.Cleanup(func() { _ = sink.Close() })

	resolvers := domain.Resolvers{
		Geocoder: staticGeocoder{},
		Weather:  staticWeather{},
		Currency: staticConverter{},
	}
	p := pipeline.New(resolvers, discardLogger(), observability.NewMetricsForTesting()).WithSink(sink)

	rows := []domain.SpendingRow{
		{City: "Lisbon", CountryCode: "PT", LocalCurrency: "EUR", Amount: "12.50", Line: 1},
		{City: "Atlantis", CountryCode: "XX", LocalCurrency: "XAU", Amount: "1", Line: 2},
	}
	records, err := p.Run(ctx, rows)
	require.NoError(t, err)
	require.Len(t, records, 2)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]kafkago.Message, 0, len(rows))
	for len(received) < len(rows) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")
		received = append(received, msg)
	}

	assert.Equal(t, "Lisbon|PT", string(received[0].Key))
	assert.Equal(t, "Atlantis|XX", string(received[1].Key))

	headers := make(map[string]string, len(received[0].Headers))
	for _, h := range received[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "EUR", headers["local_currency"])
	_, err = time.Parse(time.RFC3339, headers["retrieved_at"])
	assert.NoError(t, err, "retrieved_at header should be valid RFC3339")

	var lisbon domain.EnrichedRecord
	require.NoError(t, json.Unmarshal(received[0].Value, &lisbon))
	assert.Equal(t, "Lisbon", lisbon.City)
	require.NotNil(t, lisbon.AmountUSD)
	assert.True(t, lisbon.AmountUSD.Equal(decimal.RequireFromString("13.63")))
	require.NotNil(t, lisbon.Latitude)
	assert.Equal(t, 38.7167, *lisbon.Latitude)

	var atlantis domain.EnrichedRecord
	require.NoError(t, json.Unmarshal(received[1].Value, &atlantis))
	assert.Nil(t, atlantis.Latitude)
	assert.Nil(t, atlantis.AmountUSD)
	assert.Equal(t, lisbon.RetrievedAt, atlantis.RetrievedAt, "batch shares one timestamp")
}
