package news

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	guardian "hermes/internal/adapters/news"
	domain "hermes/internal/domain/news"
	"hermes/internal/metrics"
	"hermes/pkg/logger"
)

// Searcher returns raw articles for a query. The Guardian client
// satisfies this.
type Searcher interface {
	Search(ctx context.Context, query, section string, limit int) ([]guardian.Article, error)
}

// Service fetches financial news, classifies each article by topic and
// expected market impact, repairs implausible publication dates, and
// publishes the batch to the store. When the upstream is unreachable it
// serves a curated offline set so the feed is never empty.
type Service struct {
	searcher Searcher
	store    *domain.Store
	log      *logger.Logger

	query     string
	section   string
	maxItems  int
	maxAge    time.Duration
	maxFuture time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Config carries the fetch parameters for the news service.
type Config struct {
	Query     string
	Section   string
	MaxItems  int
	MaxAge    time.Duration
	MaxFuture time.Duration
}

// NewService creates a news service. rng drives publication date repair;
// tests pass a fixed seed.
func NewService(searcher Searcher, store *domain.Store, cfg Config, rng *rand.Rand) *Service {
	return &Service{
		searcher:  searcher,
		store:     store,
		query:     cfg.Query,
		section:   cfg.Section,
		maxItems:  cfg.MaxItems,
		maxAge:    cfg.MaxAge,
		maxFuture: cfg.MaxFuture,
		rng:       rng,
		log:       logger.Get().With("service", "news"),
	}
}

// FetchNews returns the current classified article set. A failed
// upstream call degrades to the curated offline set rather than an
// error; the feed always has content.
func (s *Service) FetchNews(ctx context.Context) []domain.Article {
	now := time.Now()

	raw, err := s.searcher.Search(ctx, s.query, s.section, s.maxItems)
	if err != nil {
		s.log.Warnw("News fetch failed, serving offline set", "error", err)
		metrics.NewsFetches.WithLabelValues("fallback").Inc()
		return s.offlineSet(now)
	}

	metrics.NewsFetches.WithLabelValues("success").Inc()

	articles := make([]domain.Article, 0, len(raw))
	for _, r := range raw {
		articles = append(articles, s.normalize(r, now))
	}
	return articles
}

// Refresh runs one fetch cycle and publishes the batch.
func (s *Service) Refresh(ctx context.Context) ([]domain.Article, error) {
	articles := s.FetchNews(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.store.Publish(articles)
	return articles, nil
}

// normalize turns a raw search result into a classified article.
// Summary defaults when the trail text is missing; unparseable dates get
// a recent fallback and out-of-window dates are pulled into the last week.
func (s *Service) normalize(raw guardian.Article, now time.Time) domain.Article {
	summary := raw.TrailText
	if summary == "" {
		summary = "No description available"
	}

	published, err := time.Parse(time.RFC3339, raw.PublishedAt)
	s.rngMu.Lock()
	if err != nil {
		published = domain.RecentFallback(now, s.rng)
	} else {
		published = domain.ClampPublished(published, now, s.maxAge, s.maxFuture, s.rng)
	}
	s.rngMu.Unlock()

	return domain.Article{
		ID:          raw.ID,
		Title:       raw.Title,
		Summary:     summary,
		PublishedAt: published,
		Time:        humanize.Time(published),
		Category:    domain.Classify(raw.Title, summary),
		Impact:      domain.ClassifyImpact(raw.Title, summary),
		Source:      "The Guardian",
		URL:         raw.URL,
	}
}
