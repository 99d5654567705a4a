// Package pipeline drives the row-by-row enrichment batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
	"github.com/couchcryptid/city-spending-enricher/internal/observability"
)

// RecordSink receives the finished batch, e.g. the optional Kafka writer.
type RecordSink interface {
	PublishBatch(ctx context.Context, records []domain.EnrichedRecord) error
}

// Pipeline enriches spending rows sequentially, in input order, with one
// retrieval timestamp shared across the whole batch.
type Pipeline struct {
	resolvers domain.Resolvers
	sink      RecordSink // may be nil
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline with the given resolvers and observability.
func New(resolvers domain.Resolvers, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		resolvers: resolvers,
		logger:    logger,
		metrics:   metrics,
	}
}

// WithSink attaches an optional record sink and returns the pipeline.
func (p *Pipeline) WithSink(sink RecordSink) *Pipeline {
	p.sink = sink
	return p
}

// CheckReadiness returns nil once at least one row has been enriched.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no rows enriched yet")
	}
	return nil
}

// Run enriches all rows and returns the records in input order. The one
// fatal failure is a malformed amount: Run returns the wrapped
// *domain.ValidationError immediately and the caller must not write any
// output. Every other resolver failure degrades that row's fields to
// absent, logged at warn level; the row still appears in the result.
func (p *Pipeline) Run(ctx context.Context, rows []domain.SpendingRow) ([]domain.EnrichedRecord, error) {
	start := time.Now()
	retrievedAt := domain.RetrievalTimestamp()
	p.logger.Info("enrichment started", "rows", len(rows), "retrieved_at", retrievedAt)

	records := make([]domain.EnrichedRecord, 0, len(rows))
	for _, row := range rows {
		amount, err := domain.ParseAmount(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", row.Line, row.City, err)
		}

		rec, diags := domain.EnrichRow(ctx, row, amount, p.resolvers, retrievedAt)
		for _, d := range diags {
			p.metrics.ResolverFailures.WithLabelValues(d.Resolver).Inc()
			p.logger.Warn(d.Message,
				"resolver", d.Resolver,
				"row", d.Row,
				"city", d.City,
				"error", d.Err,
			)
		}

		records = append(records, rec)
		p.metrics.RowsEnriched.Inc()
		p.ready.Store(true)
	}

	p.publish(ctx, records)

	p.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("enrichment finished", "rows", len(records), "duration", time.Since(start))
	return records, nil
}

// publish mirrors the batch to the sink when one is attached. The file
// output is the contract; a sink failure is a warning, never fatal.
func (p *Pipeline) publish(ctx context.Context, records []domain.EnrichedRecord) {
	if p.sink == nil || len(records) == 0 {
		return
	}
	if err := p.sink.PublishBatch(ctx, records); err != nil {
		p.logger.Warn("record sink publish failed", "error", err, "records", len(records))
		return
	}
	p.metrics.RecordsPublished.Add(float64(len(records)))
}
