package quotes

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"hermes/internal/domain/market"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Provider is a single quote source. Implementations translate their
// provider-specific wire schema into a market.Observation and classify
// failures with the pkg/errors sentinels (ErrTransport, ErrParse,
// ErrRateLimited, ErrNoQuote).
type Provider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (market.Observation, error)
}

// Chain tries providers strictly in priority order until one yields an
// observation that passes the plausibility validator. Requests are paced
// by a shared limiter so one fetch cycle stays under upstream rate
// limits; providers are never raced in parallel.
type Chain struct {
	providers []Provider
	validator market.Validator
	pacer     *rate.Limiter
	log       *logger.Logger
}

// NewChain creates a fallback chain over the given providers.
// delay is the minimum spacing between any two provider requests.
func NewChain(providers []Provider, validator market.Validator, delay time.Duration) *Chain {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Chain{
		providers: providers,
		validator: validator,
		pacer:     rate.NewLimiter(limit, 1),
		log:       logger.Get().With("component", "quote_chain"),
	}
}

// Fetch returns the first accepted observation for symbol, or an error
// wrapping ErrNoQuote when every provider failed or was rejected.
func (c *Chain) Fetch(ctx context.Context, symbol string) (market.Observation, error) {
	for _, p := range c.providers {
		if err := c.pacer.Wait(ctx); err != nil {
			return market.Observation{}, errors.Wrap(err, "pacing interrupted")
		}

		start := time.Now()
		obs, err := p.Quote(ctx, symbol)
		if err != nil {
			metrics.RecordProviderCall(p.Name(), "error", time.Since(start))
			c.log.Debugw("Provider failed, trying next",
				"provider", p.Name(),
				"symbol", symbol,
				"error", err,
			)
			continue
		}

		if err := c.validator.Validate(obs); err != nil {
			metrics.RecordProviderCall(p.Name(), "rejected", time.Since(start))
			c.log.Warnw("Provider value rejected as implausible",
				"provider", p.Name(),
				"symbol", symbol,
				"error", err,
			)
			continue
		}

		metrics.RecordProviderCall(p.Name(), "success", time.Since(start))
		obs.Source = p.Name()
		return obs, nil
	}

	return market.Observation{}, errors.Wrapf(errors.ErrNoQuote, "all providers failed for %s", symbol)
}

// Providers returns the chain's providers in priority order.
func (c *Chain) Providers() []Provider {
	return append([]Provider(nil), c.providers...)
}
