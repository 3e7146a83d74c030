package news

import (
	"math/rand"
	"strings"
	"time"
)

// Keyword sets for topic and impact classification. Matching is plain
// substring search over lowercased title+summary text, so classification
// is a pure function of the article text.
var (
	monetaryPolicyTerms = []string{"fed", "federal reserve", "interest rate"}
	earningsTerms       = []string{"earnings", "quarterly", "revenue"}
	geopoliticsTerms    = []string{"oil", "energy", "geopolitical"}
	esgTerms            = []string{"esg", "sustainable", "climate"}
	cryptoTerms         = []string{"crypto", "bitcoin", "ethereum"}

	positiveTerms = []string{"positive", "growth", "rise", "gain", "bull", "moon"}
	negativeTerms = []string{"negative", "fall", "decline", "loss", "bear", "crash"}
)

// Classify derives the topic category from article text.
// Topic sets are checked in a fixed priority order; unmatched text is
// general market news.
func Classify(title, summary string) Category {
	text := strings.ToLower(title + " " + summary)

	switch {
	case containsAny(text, monetaryPolicyTerms):
		return CategoryMonetaryPolicy
	case containsAny(text, earningsTerms):
		return CategoryEarnings
	case containsAny(text, geopoliticsTerms):
		return CategoryGeopolitics
	case containsAny(text, esgTerms):
		return CategoryESG
	case containsAny(text, cryptoTerms):
		return CategoryCrypto
	default:
		return CategoryMarketNews
	}
}

// ClassifyImpact derives the expected market direction from article text.
// Positive terms win over negative ones when both appear.
func ClassifyImpact(title, summary string) Impact {
	text := strings.ToLower(title + " " + summary)

	switch {
	case containsAny(text, positiveTerms):
		return ImpactPositive
	case containsAny(text, negativeTerms):
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// ClampPublished repairs implausible publication timestamps. Timestamps
// older than maxAge or further than maxFuture ahead of now are replaced
// with a randomized moment within the last week; reasonable values
// (including near-future ones) pass through unchanged.
func ClampPublished(published, now time.Time, maxAge, maxFuture time.Duration, rng *rand.Rand) time.Time {
	oldest := now.Add(-maxAge)
	furthest := now.Add(maxFuture)

	if published.Before(oldest) || published.After(furthest) {
		week := 7 * 24 * time.Hour
		return now.Add(-time.Duration(rng.Int63n(int64(week))))
	}
	return published
}

// RecentFallback returns a randomized timestamp within the last 24 hours,
// used when a publication date cannot be parsed at all.
func RecentFallback(now time.Time, rng *rand.Rand) time.Time {
	day := 24 * time.Hour
	return now.Add(-time.Duration(rng.Int63n(int64(day))))
}
