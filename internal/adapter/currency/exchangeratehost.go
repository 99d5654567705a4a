package currency

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

// exchangerateConvert tries the unkeyed direct conversion endpoint. Unlike
// currencylayer there is no success flag; usability is the presence of both
// info.rate and result.
func (c *Converter) exchangerateConvert(ctx context.Context, code string, amount decimal.Decimal) (domain.Conversion, bool, error) {
	params := url.Values{
		"from":   {code},
		"to":     {"USD"},
		"amount": {amount.String()},
	}

	var resp exchangerateConvertResponse
	if err := c.fetcher.GetJSON(ctx, c.exchangerateURL+"/convert", params, nil, c.retries, &resp); err != nil {
		return domain.Conversion{}, false, err
	}

	if resp.Info.Rate == nil || resp.Result == nil {
		return domain.Conversion{}, false, nil
	}

	return domain.Conversion{
		Rate:      *resp.Info.Rate,
		AmountUSD: domain.RoundUSD(*resp.Result),
	}, true, nil
}

// exchangerateLatest tries the unkeyed latest-rates endpoint with
// base=CUR&symbols=USD and computes the USD amount locally.
func (c *Converter) exchangerateLatest(ctx context.Context, code string, amount decimal.Decimal) (domain.Conversion, bool, error) {
	params := url.Values{
		"base":    {code},
		"symbols": {"USD"},
	}

	var resp exchangerateLatestResponse
	if err := c.fetcher.GetJSON(ctx, c.exchangerateURL+"/latest", params, nil, c.retries, &resp); err != nil {
		return domain.Conversion{}, false, err
	}

	rate, ok := resp.Rates["USD"]
	if !ok {
		return domain.Conversion{}, false, nil
	}

	return domain.Conversion{
		Rate:      rate,
		AmountUSD: domain.RoundUSD(rate.Mul(amount)),
	}, true, nil
}

// exchangerate.host API response types.

type exchangerateConvertResponse struct {
	Info struct {
		Rate *decimal.Decimal `json:"rate"`
	} `json:"info"`
	Result *decimal.Decimal `json:"result"`
}

type exchangerateLatestResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}
