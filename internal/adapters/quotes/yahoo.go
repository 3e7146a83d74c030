package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/domain/market"
	"hermes/pkg/errors"
)

// YahooProvider reads the Yahoo Finance chart API through a CORS relay
// (allorigins-style: the relay wraps the upstream body in a JSON
// envelope under "contents").
type YahooProvider struct {
	relayURL   string
	chartURL   string
	httpClient *http.Client
}

// NewYahooProvider creates the primary chart-API provider.
func NewYahooProvider(relayURL, chartURL string, timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		relayURL: relayURL,
		chartURL: chartURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider identifier
func (p *YahooProvider) Name() string {
	return "yahoo"
}

type relayEnvelope struct {
	Contents string `json:"contents"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Quote fetches the current price and previous close for symbol.
func (p *YahooProvider) Quote(ctx context.Context, symbol string) (market.Observation, error) {
	target := fmt.Sprintf("%s/%s?range=1d&interval=1m", p.chartURL, url.PathEscape(symbol))
	reqURL := fmt.Sprintf("%s?url=%s", p.relayURL, url.QueryEscape(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return market.Observation{}, errors.Wrap(err, "failed to create request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return market.Observation{}, errors.Wrap(errors.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return market.Observation{}, errors.Wrapf(errors.ErrRateLimited, "relay returned 429 for %s", symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return market.Observation{}, errors.Wrapf(errors.ErrTransport, "relay returned status %d", resp.StatusCode)
	}

	var envelope relayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return market.Observation{}, errors.Wrap(errors.ErrParse, err.Error())
	}
	if envelope.Contents == "" {
		return market.Observation{}, errors.Wrapf(errors.ErrParse, "relay envelope empty for %s", symbol)
	}

	var chart yahooChartResponse
	if err := json.Unmarshal([]byte(envelope.Contents), &chart); err != nil {
		return market.Observation{}, errors.Wrap(errors.ErrParse, err.Error())
	}
	if len(chart.Chart.Result) == 0 {
		return market.Observation{}, errors.Wrapf(errors.ErrNoQuote, "no chart result for %s", symbol)
	}

	meta := chart.Chart.Result[0].Meta

	prevClose := meta.PreviousClose
	if prevClose == 0 {
		prevClose = meta.ChartPreviousClose
	}

	obs := market.Observation{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(meta.RegularMarketPrice),
		PrevClose: decimal.NewFromFloat(prevClose),
	}
	if meta.Symbol != "" {
		obs.Symbol = meta.Symbol
	}

	return obs, nil
}
