package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/domain/market"
	"hermes/pkg/errors"
)

// AlphaVantageProvider reads the GLOBAL_QUOTE endpoint. Alpha Vantage
// reports the previous close directly; the absolute change field is
// redundant with it and ignored.
type AlphaVantageProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAlphaVantageProvider creates the first fallback provider.
// An unset key defaults to the "demo" key upstream accepts for testing.
func NewAlphaVantageProvider(baseURL, apiKey string, timeout time.Duration) *AlphaVantageProvider {
	if apiKey == "" {
		apiKey = "demo"
	}
	return &AlphaVantageProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider identifier
func (p *AlphaVantageProvider) Name() string {
	return "alphavantage"
}

type alphaVantageResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
	} `json:"Global Quote"`
	Note string `json:"Note"` // set when the free-tier rate limit trips
}

// Quote fetches the current price and previous close for symbol.
func (p *AlphaVantageProvider) Quote(ctx context.Context, symbol string) (market.Observation, error) {
	reqURL := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		p.baseURL, url.QueryEscape(symbol), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return market.Observation{}, errors.Wrap(err, "failed to create request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return market.Observation{}, errors.Wrap(errors.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return market.Observation{}, errors.Wrapf(errors.ErrTransport, "alphavantage returned status %d", resp.StatusCode)
	}

	var body alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return market.Observation{}, errors.Wrap(errors.ErrParse, err.Error())
	}
	if body.Note != "" {
		return market.Observation{}, errors.Wrapf(errors.ErrRateLimited, "alphavantage throttled: %s", body.Note)
	}
	if body.GlobalQuote.Price == "" {
		return market.Observation{}, errors.Wrapf(errors.ErrNoQuote, "empty global quote for %s", symbol)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(body.GlobalQuote.Price))
	if err != nil {
		return market.Observation{}, errors.Wrap(errors.ErrParse, err.Error())
	}

	prevClose, err := decimal.NewFromString(strings.TrimSpace(body.GlobalQuote.PreviousClose))
	if err != nil {
		// Older schema revisions omit previous close; fall back to price - change.
		change, chErr := decimal.NewFromString(strings.TrimSpace(body.GlobalQuote.Change))
		if chErr != nil {
			return market.Observation{}, errors.Wrap(errors.ErrParse, err.Error())
		}
		prevClose = price.Sub(change)
	}

	obsSymbol := body.GlobalQuote.Symbol
	if obsSymbol == "" {
		obsSymbol = symbol
	}

	return market.Observation{
		Symbol:    obsSymbol,
		Price:     price,
		PrevClose: prevClose,
	}, nil
}
