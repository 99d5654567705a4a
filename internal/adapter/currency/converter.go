// Package currency converts local-currency amounts to USD through an
// ordered fallback chain spanning two providers and four endpoint shapes.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
	"github.com/couchcryptid/city-spending-enricher/internal/httpclient"
	"github.com/couchcryptid/city-spending-enricher/internal/observability"
)

// ProviderError is a business-level failure reported inside an otherwise
// successful HTTP response (invalid key, unsupported plan, unknown
// currency). It is distinct from a transport-level *httpclient.FetchError.
type ProviderError struct {
	Provider string
	Endpoint string
	Code     int
	Info     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: provider error %d: %s", e.Provider, e.Endpoint, e.Code, e.Info)
}

// step is one attempt in the fallback chain: a named endpoint plus the
// decoder that knows its response shape. run returns ok=false with a nil
// error when the response was well-formed but carried no usable rate.
type step struct {
	provider string
	endpoint string
	run      func(ctx context.Context, code string, amount decimal.Decimal) (domain.Conversion, bool, error)
}

// Converter implements domain.CurrencyConverter. With an API key it tries
// currencylayer's /convert then /live before falling back to
// exchangerate.host's /convert then /latest; without a key the chain starts
// at exchangerate.host. The first usable rate wins.
type Converter struct {
	fetcher          *httpclient.Client
	apiKey           string
	currencylayerURL string
	exchangerateURL  string
	retries          int
	logger           *slog.Logger
	metrics          *observability.Metrics
}

// DefaultCurrencylayerBaseURL and DefaultExchangerateBaseURL are the
// production provider endpoints.
const (
	DefaultCurrencylayerBaseURL = "https://api.currencylayer.com"
	DefaultExchangerateBaseURL  = "https://api.exchangerate.host"
)

// NewConverter creates a converter. apiKey may be empty, which disables the
// currencylayer steps. Empty base URLs select the production endpoints.
func NewConverter(fetcher *httpclient.Client, apiKey, currencylayerURL, exchangerateURL string, retries int, logger *slog.Logger, metrics *observability.Metrics) *Converter {
	if currencylayerURL == "" {
		currencylayerURL = DefaultCurrencylayerBaseURL
	}
	if exchangerateURL == "" {
		exchangerateURL = DefaultExchangerateBaseURL
	}
	return &Converter{
		fetcher:          fetcher,
		apiKey:           apiKey,
		currencylayerURL: currencylayerURL,
		exchangerateURL:  exchangerateURL,
		retries:          retries,
		logger:           logger,
		metrics:          metrics,
	}
}

// ConvertToUSD resolves a local amount to USD. A currency of "USD" returns
// rate 1 with no network call. Each chain step's failure is logged as a
// warning and the chain moves on; ok=false means every step was exhausted.
func (c *Converter) ConvertToUSD(ctx context.Context, currencyCode string, amount decimal.Decimal) (domain.Conversion, bool, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))

	// Fast path: already USD.
	if code == "USD" {
		return domain.Conversion{
			Rate:      decimal.NewFromInt(1),
			AmountUSD: domain.RoundUSD(amount),
		}, true, nil
	}

	for _, s := range c.steps() {
		conv, ok, err := s.run(ctx, code, amount)
		if err != nil {
			c.metrics.CurrencyAttempts.WithLabelValues(s.provider, s.endpoint, "error").Inc()
			c.warnStep(s, code, err)
			continue
		}
		if !ok {
			c.metrics.CurrencyAttempts.WithLabelValues(s.provider, s.endpoint, "empty").Inc()
			continue
		}
		c.metrics.CurrencyAttempts.WithLabelValues(s.provider, s.endpoint, "success").Inc()
		return conv, true, nil
	}

	return domain.Conversion{}, false, nil
}

// steps assembles the chain in strict priority order. The keyed provider
// participates only when a key is configured.
func (c *Converter) steps() []step {
	var chain []step
	if c.apiKey != "" {
		chain = append(chain,
			step{provider: "currencylayer", endpoint: "/convert", run: c.currencylayerConvert},
			step{provider: "currencylayer", endpoint: "/live", run: c.currencylayerLive},
		)
	}
	return append(chain,
		step{provider: "exchangerate.host", endpoint: "/convert", run: c.exchangerateConvert},
		step{provider: "exchangerate.host", endpoint: "/latest", run: c.exchangerateLatest},
	)
}

// warnStep logs one failed chain step, distinguishing provider-reported
// errors from transport failures.
func (c *Converter) warnStep(s step, code string, err error) {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		c.logger.Warn("currency provider reported error",
			"provider", s.provider,
			"endpoint", s.endpoint,
			"currency", code,
			"code", provErr.Code,
			"info", provErr.Info,
		)
		return
	}
	c.logger.Warn("currency conversion attempt failed",
		"provider", s.provider,
		"endpoint", s.endpoint,
		"currency", code,
		"error", err,
	)
}
