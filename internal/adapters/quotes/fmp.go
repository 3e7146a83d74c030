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

// FMPProvider reads the Financial Modeling Prep quote endpoint, the last
// real source before synthetic fallback.
type FMPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewFMPProvider creates the second fallback provider.
func NewFMPProvider(baseURL, apiKey string, timeout time.Duration) *FMPProvider {
	if apiKey == "" {
		apiKey = "demo"
	}
	return &FMPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider identifier
func (p *FMPProvider) Name() string {
	return "fmp"
}

type fmpQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PreviousClose float64 `json:"previousClose"`
}

// Quote fetches the current price and previous close for symbol.
func (p *FMPProvider) Quote(ctx context.Context, symbol string) (market.Observation, error) {
	reqURL := fmt.Sprintf("%s/api/v3/quote/%s?apikey=%s",
		p.baseURL, url.PathEscape(symbol), url.QueryEscape(p.apiKey))

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
		return market.Observation{}, errors.Wrapf(errors.ErrRateLimited, "fmp returned 429 for %s", symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return market.Observation{}, errors.Wrapf(errors.ErrTransport, "fmp returned status %d", resp.StatusCode)
	}

	var body []fmpQuote
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return market.Observation{}, errors.Wrap(errors.ErrParse, err.Error())
	}
	if len(body) == 0 {
		return market.Observation{}, errors.Wrapf(errors.ErrNoQuote, "empty quote list for %s", symbol)
	}

	q := body[0]

	price := decimal.NewFromFloat(q.Price)
	prevClose := decimal.NewFromFloat(q.PreviousClose)
	if prevClose.IsZero() {
		prevClose = price.Sub(decimal.NewFromFloat(q.Change))
	}

	obsSymbol := q.Symbol
	if obsSymbol == "" {
		obsSymbol = symbol
	}

	return market.Observation{
		Symbol:    obsSymbol,
		Price:     price,
		PrevClose: prevClose,
	}, nil
}
