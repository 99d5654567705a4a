package currency

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

// currencylayerConvert tries the keyed direct conversion endpoint.
// Usable only when the response signals success and carries both a rate
// and a result amount; some plans reject /convert entirely.
func (c *Converter) currencylayerConvert(ctx context.Context, code string, amount decimal.Decimal) (domain.Conversion, bool, error) {
	params := url.Values{
		"from":       {code},
		"to":         {"USD"},
		"amount":     {amount.String()},
		"access_key": {c.apiKey},
	}

	var resp currencylayerConvertResponse
	if err := c.fetcher.GetJSON(ctx, c.currencylayerURL+"/convert", params, nil, c.retries, &resp); err != nil {
		return domain.Conversion{}, false, err
	}

	if !resp.Success {
		if resp.Error != nil {
			return domain.Conversion{}, false, &ProviderError{
				Provider: "currencylayer",
				Endpoint: "/convert",
				Code:     resp.Error.Code,
				Info:     resp.Error.Info,
			}
		}
		return domain.Conversion{}, false, nil
	}
	if resp.Info.Rate == nil || resp.Result == nil {
		return domain.Conversion{}, false, nil
	}

	return domain.Conversion{
		Rate:      *resp.Info.Rate,
		AmountUSD: domain.RoundUSD(*resp.Result),
	}, true, nil
}

// currencylayerLive tries the keyed live-rates endpoint, which quotes
// USD→CUR under the key "USD"+CUR. The CUR→USD rate is the inverse of
// that quote.
func (c *Converter) currencylayerLive(ctx context.Context, code string, amount decimal.Decimal) (domain.Conversion, bool, error) {
	params := url.Values{
		"access_key": {c.apiKey},
		"currencies": {code},
	}

	var resp currencylayerLiveResponse
	if err := c.fetcher.GetJSON(ctx, c.currencylayerURL+"/live", params, nil, c.retries, &resp); err != nil {
		return domain.Conversion{}, false, err
	}

	if !resp.Success {
		if resp.Error != nil {
			return domain.Conversion{}, false, &ProviderError{
				Provider: "currencylayer",
				Endpoint: "/live",
				Code:     resp.Error.Code,
				Info:     resp.Error.Info,
			}
		}
		return domain.Conversion{}, false, nil
	}

	quote, ok := resp.Quotes["USD"+code]
	if !ok || quote.IsZero() {
		return domain.Conversion{}, false, nil
	}

	rate := decimal.NewFromInt(1).Div(quote)
	return domain.Conversion{
		Rate:      rate,
		AmountUSD: domain.RoundUSD(rate.Mul(amount)),
	}, true, nil
}

// currencylayer API response types.

type currencylayerConvertResponse struct {
	Success bool `json:"success"`
	Info    struct {
		Rate *decimal.Decimal `json:"rate"`
	} `json:"info"`
	Result *decimal.Decimal    `json:"result"`
	Error  *currencylayerError `json:"error"`
}

type currencylayerLiveResponse struct {
	Success bool                       `json:"success"`
	Quotes  map[string]decimal.Decimal `json:"quotes"`
	Error   *currencylayerError        `json:"error"`
}

type currencylayerError struct {
	Code int    `json:"code"`
	Info string `json:"info"`
}
