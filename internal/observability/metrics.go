package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the enrichment run.
type Metrics struct {
	RowsEnriched     prometheus.Counter
	ResolverFailures *prometheus.CounterVec // labels: resolver={geocode,weather,currency}
	RecordsPublished prometheus.Counter

	// Fetch client metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchRetries  prometheus.Counter
	FetchDuration prometheus.Histogram

	// Currency fallback chain metrics.
	CurrencyAttempts *prometheus.CounterVec // labels: provider, endpoint, outcome={success,empty,error}

	BatchDuration prometheus.Histogram
}

// NewMetrics creates and registers all enrichment metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spend_enrich",
			Name:      "rows_enriched_total",
			Help:      "Total input rows assembled into output records.",
		}),
		ResolverFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spend_enrich",
			Name:      "resolver_failures_total",
			Help:      "Resolver degradations by resolver kind.",
		}, []string{"resolver"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spend_enrich",
			Name:      "records_published_total",
			Help:      "Enriched records published to the optional Kafka sink.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spend_enrich",
			Name:      "fetch_requests_total",
			Help:      "Provider HTTP attempts by outcome.",
		}, []string{"outcome"}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spend_enrich",
			Name:      "fetch_retries_total",
			Help:      "Retry attempts after a failed provider request.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spend_enrich",
			Name:      "fetch_duration_seconds",
			Help:      "Provider HTTP request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CurrencyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spend_enrich",
			Name:      "currency_attempts_total",
			Help:      "Currency fallback chain attempts by provider, endpoint, and outcome.",
		}, []string{"provider", "endpoint", "outcome"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spend_enrich",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete enrichment run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
	}

	prometheus.MustRegister(
		m.RowsEnriched,
		m.ResolverFailures,
		m.RecordsPublished,
		m.FetchRequests,
		m.FetchRetries,
		m.FetchDuration,
		m.CurrencyAttempts,
		m.BatchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsEnriched:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "spend_enrich", Name: "rows_enriched_total"}),
		ResolverFailures: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "spend_enrich", Name: "resolver_failures_total"}, []string{"resolver"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "spend_enrich", Name: "records_published_total"}),
		FetchRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "spend_enrich", Name: "fetch_requests_total"}, []string{"outcome"}),
		FetchRetries:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "spend_enrich", Name: "fetch_retries_total"}),
		FetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "spend_enrich", Name: "fetch_duration_seconds"}),
		CurrencyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "spend_enrich", Name: "currency_attempts_total"}, []string{"provider", "endpoint", "outcome"}),
		BatchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "spend_enrich", Name: "batch_duration_seconds"}),
	}
}
