package news

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	domain "hermes/internal/domain/news"
)

// The offline set shown when the news API is unreachable. Hand-curated
// and already classified, with staggered recent timestamps so the feed
// reads naturally.
type fallbackArticle struct {
	title    string
	summary  string
	hoursAgo int
	category domain.Category
	impact   domain.Impact
}

var fallbackSet = []fallbackArticle{
	{
		title:    "NVIDIA Surges on Strong AI Chip Demand",
		summary:  "NVIDIA stock climbs 5% as data center revenue exceeds expectations, driven by AI boom.",
		hoursAgo: 1,
		category: domain.CategoryEarnings,
		impact:   domain.ImpactPositive,
	},
	{
		title:    "Fed Holds Rates Steady, Signals Potential Cuts",
		summary:  "Federal Reserve maintains current interest rates but opens door to reductions in coming months.",
		hoursAgo: 3,
		category: domain.CategoryMonetaryPolicy,
		impact:   domain.ImpactPositive,
	},
	{
		title:    "Apple Reports Record iPhone Sales in China",
		summary:  "Apple sees 15% growth in Chinese market despite economic headwinds and trade tensions.",
		hoursAgo: 5,
		category: domain.CategoryEarnings,
		impact:   domain.ImpactPositive,
	},
	{
		title:    "Tesla Cybertruck Production Begins",
		summary:  "Tesla starts deliveries of Cybertruck with strong pre-orders, boosting Q4 revenue outlook.",
		hoursAgo: 7,
		category: domain.CategoryMarketNews,
		impact:   domain.ImpactPositive,
	},
	{
		title:    "Microsoft Cloud Growth Slows Amid Competition",
		summary:  "Azure revenue growth decelerates as Google Cloud and AWS intensify competition in enterprise sector.",
		hoursAgo: 9,
		category: domain.CategoryMarketNews,
		impact:   domain.ImpactNeutral,
	},
	{
		title:    "Oil Prices Rise on Middle East Tensions",
		summary:  "Crude oil futures climb 2.5% following reports of supply disruptions in Red Sea shipping routes.",
		hoursAgo: 11,
		category: domain.CategoryGeopolitics,
		impact:   domain.ImpactNegative,
	},
}

// offlineSet materializes the curated articles with timestamps relative
// to now.
func (s *Service) offlineSet(now time.Time) []domain.Article {
	articles := make([]domain.Article, 0, len(fallbackSet))
	for i, f := range fallbackSet {
		published := now.Add(-time.Duration(f.hoursAgo) * time.Hour)
		articles = append(articles, domain.Article{
			ID:          fmt.Sprintf("offline-%d", i+1),
			Title:       f.title,
			Summary:     f.summary,
			PublishedAt: published,
			Time:        humanize.Time(published),
			Category:    f.category,
			Impact:      f.impact,
			Source:      "The Guardian",
		})
	}
	return articles
}
