package quotes

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/domain/market"
	"hermes/internal/metrics"
	"hermes/pkg/logger"
)

// Fetcher yields one validated observation per symbol, trying sources in
// priority order. The provider chain satisfies this.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (market.Observation, error)
}

// Display names for the tracked symbols; quote APIs don't reliably
// return full company names.
var companyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"GOOGL": "Alphabet Inc.",
	"MSFT":  "Microsoft Corp.",
	"TSLA":  "Tesla Inc.",
	"NVDA":  "NVIDIA Corp.",
}

// Baseline prices used only for synthetic placeholder quotes when every
// provider has failed for a symbol. These are snapshots of typical
// levels, not live data.
var baselinePrices = map[string]float64{
	"AAPL":  230.00,
	"GOOGL": 168.50,
	"MSFT":  420.00,
	"TSLA":  245.00,
	"NVDA":  150.00,
}

const defaultBaseline = 100.00

// Service runs the quote fetch cycle: one pass over the configured
// symbols through the provider chain, synthetic fallback per symbol,
// and a single whole-batch publish to the store.
type Service struct {
	fetcher Fetcher
	store   *market.Store
	symbols []string
	log     *logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a quote service. rng seeds the synthetic fallback
// perturbation; tests pass a fixed seed for deterministic output.
func NewService(fetcher Fetcher, store *market.Store, symbols []string, rng *rand.Rand) *Service {
	return &Service{
		fetcher: fetcher,
		store:   store,
		symbols: symbols,
		rng:     rng,
		log:     logger.Get().With("service", "quotes"),
	}
}

// FetchQuotes returns exactly one Quote per requested symbol, in input
// order. It never fails: a symbol with no accepted provider reading gets
// a flagged synthetic placeholder.
func (s *Service) FetchQuotes(ctx context.Context, symbols []string) []market.Quote {
	now := time.Now()
	result := make([]market.Quote, 0, len(symbols))

	for _, symbol := range symbols {
		obs, err := s.fetcher.Fetch(ctx, symbol)
		if err != nil {
			s.log.Warnw("All providers failed, synthesizing placeholder",
				"symbol", symbol,
				"error", err,
			)
			metrics.SyntheticQuotes.WithLabelValues(symbol).Inc()
			result = append(result, s.synthesize(symbol, now))
			continue
		}

		result = append(result, obs.Quote(displayName(symbol), now))
	}

	return result
}

// Refresh runs one full fetch cycle and publishes the batch. The store
// is updated exactly once so readers never see a half-finished cycle.
func (s *Service) Refresh(ctx context.Context) ([]market.Quote, error) {
	quotes := s.FetchQuotes(ctx, s.symbols)

	if err := ctx.Err(); err != nil {
		// Shutdown mid-cycle: don't publish a partial view
		return nil, err
	}

	s.store.Publish(quotes)
	return quotes, nil
}

// Symbols returns the configured symbol list.
func (s *Service) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// synthesize builds a placeholder quote from the symbol's baseline price
// with a small pseudo-random perturbation. Placeholder data is flagged
// so the UI and testers can tell it apart from real quotes.
func (s *Service) synthesize(symbol string, at time.Time) market.Quote {
	baseline, ok := baselinePrices[symbol]
	if !ok {
		baseline = defaultBaseline
	}

	s.rngMu.Lock()
	change := (s.rng.Float64() - 0.5) * 10 // within (-5, 5)
	percent := (s.rng.Float64() - 0.5) * 4 // within (-2, 2)
	s.rngMu.Unlock()

	return market.Quote{
		Symbol:        symbol,
		Name:          displayName(symbol),
		Price:         decimal.NewFromFloat(baseline),
		Change:        decimal.NewFromFloat(change).Round(2),
		ChangePercent: decimal.NewFromFloat(percent).Round(2),
		Source:        "synthetic",
		Synthetic:     true,
		FetchedAt:     at,
	}
}

func displayName(symbol string) string {
	if name, ok := companyNames[symbol]; ok {
		return name
	}
	return symbol
}
