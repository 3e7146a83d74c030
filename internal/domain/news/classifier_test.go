package news

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		summary string
		want    Category
	}{
		{"fed in title", "Fed Holds Rates Steady", "", CategoryMonetaryPolicy},
		{"interest rate in summary", "Markets wobble", "speculation over the next interest rate decision", CategoryMonetaryPolicy},
		{"earnings", "Apple earnings beat expectations", "", CategoryEarnings},
		{"revenue", "Cloud unit posts record revenue", "", CategoryEarnings},
		{"oil", "Oil prices climb on supply fears", "", CategoryGeopolitics},
		{"esg", "New ESG disclosure rules announced", "", CategoryESG},
		{"climate", "Banks face climate stress tests", "", CategoryESG},
		{"bitcoin", "Bitcoin rallies past resistance", "", CategoryCrypto},
		{"no keywords", "Stocks drift in quiet session", "little conviction either way", CategoryMarketNews},
		{"case insensitive", "FEDERAL RESERVE SPEAKS", "", CategoryMonetaryPolicy},
		{"priority: fed beats earnings", "Fed reaction to bank earnings", "", CategoryMonetaryPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.title, tt.summary))
		})
	}
}

func TestClassifyImpact(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		summary string
		want    Impact
	}{
		{"growth", "Chip demand drives growth", "", ImpactPositive},
		{"gain", "Indexes gain on soft landing hopes", "", ImpactPositive},
		{"decline", "Factory orders decline again", "", ImpactNegative},
		{"crash", "Flash crash rattles traders", "", ImpactNegative},
		{"neither", "Regulator schedules hearing", "procedural agenda published", ImpactNeutral},
		{"positive wins over negative", "Shares rise after earlier fall", "", ImpactPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyImpact(tt.title, tt.summary))
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	title, summary := "Fed signals possible cuts as growth slows", "rates outlook shifts"

	first := Classify(title, summary)
	second := Classify(title, summary)
	assert.Equal(t, first, second)

	firstImpact := ClassifyImpact(title, summary)
	secondImpact := ClassifyImpact(title, summary)
	assert.Equal(t, firstImpact, secondImpact)
}

func TestClampPublished(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	maxAge := 90 * 24 * time.Hour
	maxFuture := 365 * 24 * time.Hour
	rng := rand.New(rand.NewSource(1))

	t.Run("recent date passes through", func(t *testing.T) {
		published := now.Add(-48 * time.Hour)
		assert.Equal(t, published, ClampPublished(published, now, maxAge, maxFuture, rng))
	})

	t.Run("near-future date passes through", func(t *testing.T) {
		published := now.Add(30 * 24 * time.Hour)
		assert.Equal(t, published, ClampPublished(published, now, maxAge, maxFuture, rng))
	})

	t.Run("stale date is replaced with one from the last week", func(t *testing.T) {
		published := now.Add(-120 * 24 * time.Hour)
		got := ClampPublished(published, now, maxAge, maxFuture, rng)
		assert.True(t, got.After(now.Add(-7*24*time.Hour)))
		assert.False(t, got.After(now))
	})

	t.Run("far-future date is replaced", func(t *testing.T) {
		published := now.Add(2 * 365 * 24 * time.Hour)
		got := ClampPublished(published, now, maxAge, maxFuture, rng)
		assert.True(t, got.After(now.Add(-7*24*time.Hour)))
		assert.False(t, got.After(now))
	})

	t.Run("deterministic under a fixed seed", func(t *testing.T) {
		published := now.Add(-120 * 24 * time.Hour)
		a := ClampPublished(published, now, maxAge, maxFuture, rand.New(rand.NewSource(42)))
		b := ClampPublished(published, now, maxAge, maxFuture, rand.New(rand.NewSource(42)))
		assert.Equal(t, a, b)
	})
}

func TestRecentFallback(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	got := RecentFallback(now, rand.New(rand.NewSource(7)))

	assert.True(t, got.After(now.Add(-24*time.Hour)))
	assert.False(t, got.After(now))
}
