package market

import (
	"time"

	"github.com/shopspring/decimal"

	"hermes/pkg/errors"
)

// Quote is a single symbol's current price and computed change versus
// the previous close. A synthetic quote is a display placeholder built
// from a baseline price when every provider failed; it is flagged so
// consumers never mistake it for real market data.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Source        string          `json:"source"`
	Synthetic     bool            `json:"synthetic"`
	FetchedAt     time.Time       `json:"fetchedAt"`
}

// Observation is a raw price reading from a provider, before validation.
// Providers that report an absolute change instead of a previous close
// derive PrevClose as Price - Change so all readings validate the same way.
// Source is filled by the fallback chain with the provider that won.
type Observation struct {
	Symbol    string
	Price     decimal.Decimal
	PrevClose decimal.Decimal
	Source    string
}

// Quote converts a validated observation into a Quote.
// change = price - prevClose, percent = change / prevClose * 100.
func (o Observation) Quote(name string, at time.Time) Quote {
	change := o.Price.Sub(o.PrevClose)
	percent := decimal.Zero
	if !o.PrevClose.IsZero() {
		percent = change.Div(o.PrevClose).Mul(decimal.NewFromInt(100))
	}

	return Quote{
		Symbol:        o.Symbol,
		Name:          name,
		Price:         o.Price,
		Change:        change,
		ChangePercent: percent,
		Source:        o.Source,
		FetchedAt:     at,
	}
}

// Validator holds the plausibility bounds for accepting a quote.
// Both bounds are heuristics and configurable; readings outside them
// are discarded as implausible rather than displayed.
type Validator struct {
	MaxPrice       decimal.Decimal
	MaxChangeRatio decimal.Decimal
}

// NewValidator creates a validator from float bounds (as configured).
func NewValidator(maxPrice, maxChangeRatio float64) Validator {
	return Validator{
		MaxPrice:       decimal.NewFromFloat(maxPrice),
		MaxChangeRatio: decimal.NewFromFloat(maxChangeRatio),
	}
}

// Validate checks an observation against the plausibility bounds:
// 0 < price < MaxPrice and |price - prevClose| < MaxChangeRatio * prevClose.
func (v Validator) Validate(o Observation) error {
	if !o.Price.IsPositive() {
		return errors.NewValidationError("price", "must be positive", o.Price.String())
	}
	if o.Price.GreaterThanOrEqual(v.MaxPrice) {
		return errors.NewValidationError("price", "exceeds plausible maximum", o.Price.String())
	}
	if !o.PrevClose.IsPositive() {
		return errors.NewValidationError("prevClose", "must be positive", o.PrevClose.String())
	}
	maxDelta := o.PrevClose.Mul(v.MaxChangeRatio)
	if o.Price.Sub(o.PrevClose).Abs().GreaterThanOrEqual(maxDelta) {
		return errors.NewValidationError("price", "moved too far from previous close", o.Price.String())
	}
	return nil
}
