package news

import "time"

// Category buckets an article by topic, derived from keyword heuristics.
type Category string

const (
	CategoryMonetaryPolicy Category = "Monetary Policy"
	CategoryEarnings       Category = "Earnings"
	CategoryGeopolitics    Category = "Geopolitics"
	CategoryESG            Category = "ESG"
	CategoryCrypto         Category = "Crypto"
	CategoryMarketNews     Category = "Market News"
)

// Impact is the expected market direction implied by an article.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Article is a normalized news record. Source records arrive in
// provider-specific shapes; normalization fills Category and Impact from
// the classifier and repairs implausible publication timestamps.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"publishedAt"`
	Time        string    `json:"time"` // relative, e.g. "2 hours ago"
	Category    Category  `json:"category"`
	Impact      Impact    `json:"impact"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
}
