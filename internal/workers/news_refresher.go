package workers

import (
	"context"
	"time"

	"hermes/internal/domain/news"
	"hermes/pkg/errors"
)

// NewsRefresher runs the periodic news fetch cycle and publishes the
// classified batch to the news store.
type NewsRefresher struct {
	*BaseWorker
	news NewsService
}

// NewsService is the fetch cycle the worker drives.
type NewsService interface {
	Refresh(ctx context.Context) ([]news.Article, error)
}

// NewNewsRefresher creates the news refresh worker.
func NewNewsRefresher(news NewsService, interval time.Duration, enabled bool) *NewsRefresher {
	return &NewsRefresher{
		BaseWorker: NewBaseWorker("news_refresher", interval, enabled),
		news:       news,
	}
}

// Run executes one news fetch cycle. An unreachable upstream degrades to
// the offline article set inside the service, so an error here means the
// run was cut short by shutdown.
func (w *NewsRefresher) Run(ctx context.Context) error {
	start := time.Now()

	articles, err := w.news.Refresh(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return errors.Wrap(err, "news refresh cycle")
	}

	w.RecordRun(time.Since(start))
	w.Log().Info("News cycle published",
		"articles", len(articles),
		"duration", time.Since(start),
	)

	return nil
}
