// Package kafka implements the optional enriched-record topic sink.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

// Writer publishes enriched records to a Kafka topic. It implements
// pipeline.RecordSink. The topic is a best-effort mirror of the JSON file
// output; callers treat publish failures as warnings.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes the whole batch in a single
// WriteMessages call.
func (w *Writer) PublishBatch(ctx context.Context, records []domain.EnrichedRecord) error {
	if len(records) == 0 {
		return nil
	}
	w.logger.Debug("publishing enriched records", "count", len(records))
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an EnrichedRecord into a Kafka message keyed
// by city and country so records for one place land on one partition.
func serializeToMessage(rec domain.EnrichedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize enriched record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.City + "|" + rec.CountryCode),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "local_currency", Value: []byte(rec.LocalCurrency)},
			{Key: "retrieved_at", Value: []byte(rec.RetrievedAt)},
		},
	}, nil
}
