package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/news-relay/internal/relay"
	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/models"
)

// RefreshWorker keeps today's partition warm by periodically pulling the
// default front page through the merge pipeline, so the same-day fallback
// has data even before the first live request.
type RefreshWorker struct {
	fetcher relay.Fetcher
	relay   *relay.Service
	payload models.QueryPayload
}

// NewRefreshWorker creates new cache refresh worker
func NewRefreshWorker(fetcher relay.Fetcher, relaySvc *relay.Service) *RefreshWorker {
	return &RefreshWorker{
		fetcher: fetcher,
		relay:   relaySvc,
		payload: models.DefaultQueryPayload(),
	}
}

// Name returns worker name for logging
func (w *RefreshWorker) Name() string {
	return "cache_refresh"
}

// Run fetches the default front page and merges it into today's partition
func (w *RefreshWorker) Run(ctx context.Context) error {
	res, err := w.fetcher.FetchLatest(ctx, w.payload)
	if err != nil {
		return fmt.Errorf("refresh fetch failed: %w", err)
	}

	if len(res.Results) == 0 {
		logger.Debug("refresh fetch returned no results")
		return nil
	}

	if err := w.relay.MergeAndCache(ctx, res); err != nil {
		return fmt.Errorf("refresh merge failed: %w", err)
	}

	logger.Debug("cache refreshed", zap.Int("articles", len(res.Results)))
	return nil
}
