package workers

import (
	"context"
	"time"

	"hermes/internal/domain/market"
	"hermes/pkg/errors"
)

// QuoteRefresher runs the periodic quote fetch cycle and publishes the
// result to the market store.
type QuoteRefresher struct {
	*BaseWorker
	quotes QuoteService
}

// QuoteService is the fetch cycle the worker drives.
type QuoteService interface {
	Refresh(ctx context.Context) ([]market.Quote, error)
}

// NewQuoteRefresher creates the quote refresh worker.
func NewQuoteRefresher(quotes QuoteService, interval time.Duration, enabled bool) *QuoteRefresher {
	return &QuoteRefresher{
		BaseWorker: NewBaseWorker("quote_refresher", interval, enabled),
		quotes:     quotes,
	}
}

// Run executes one full quote cycle. The cycle itself never fails per
// symbol (synthetic fallback), so an error here means the run was cut
// short by shutdown.
func (w *QuoteRefresher) Run(ctx context.Context) error {
	start := time.Now()

	quotes, err := w.quotes.Refresh(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return errors.Wrap(err, "quote refresh cycle")
	}

	w.RecordRun(time.Since(start))

	synthetic := 0
	for _, q := range quotes {
		if q.Synthetic {
			synthetic++
		}
	}
	w.Log().Info("Quote cycle published",
		"quotes", len(quotes),
		"synthetic", synthetic,
		"duration", time.Since(start),
	)

	return nil
}
