package relay

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/news-relay/internal/adapters/config"
	"github.com/selivandex/news-relay/internal/adapters/provider"
	"github.com/selivandex/news-relay/internal/adapters/redis"
	"github.com/selivandex/news-relay/internal/enrich"
	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/models"
)

// Store is the narrow contract to the daily partition cache
type Store interface {
	// GetPartition returns (nil, nil) when the date has no partition
	GetPartition(ctx context.Context, date string) (*models.Partition, error)
	InsertPartition(ctx context.Context, p *models.Partition) error
	UpdatePartition(ctx context.Context, p *models.Partition) error
}

// Fetcher is the upstream news provider boundary
type Fetcher interface {
	FetchLatest(ctx context.Context, payload models.QueryPayload) (*models.Response, error)
}

// Error message tags attached to fallback responses
const (
	msgServedFromCache   = "served from cache"
	msgNoProviderResults = "no results from news provider"
	msgNoCachedResults   = "no cached results for today"
)

// Service orchestrates a news lookup: query the provider, enrich and merge
// into the daily cache in the background, degrade to cached data when the
// provider fails or comes back empty.
type Service struct {
	fetcher      Fetcher
	enricher     enrich.Enricher
	store        Store
	locks        redis.LockFactory
	windowDays   int
	mergeTimeout time.Duration
	now          func() time.Time
}

// NewService creates new relay service
func NewService(
	fetcher Fetcher,
	enricher enrich.Enricher,
	store Store,
	locks redis.LockFactory,
	cfg *config.RelayConfig,
) *Service {
	return &Service{
		fetcher:      fetcher,
		enricher:     enricher,
		store:        store,
		locks:        locks,
		windowDays:   cfg.PositiveWindowDays,
		mergeTimeout: cfg.MergeTimeout,
		now:          time.Now,
	}
}

// GetNews serves one news lookup. The returned payload is always either the
// live provider result or a cache-derived fallback, never a partially merged
// intermediate state. The only returned error is a missing provider key.
func (s *Service) GetNews(ctx context.Context, payload models.QueryPayload, clientIP string) (*models.Response, error) {
	// Happy mode never touches the provider
	if payload.IsHappy {
		return s.FetchRecentPositive(ctx, s.windowDays), nil
	}

	// Explicit payload country always wins over anything IP-derived.
	// TODO: geolocate clientIP into a country code when payload.Country is empty.
	live, err := s.fetcher.FetchLatest(ctx, payload)
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			return nil, err
		}

		logger.Warn("provider fetch failed, falling back to cache",
			zap.String("client_ip", clientIP),
			zap.Error(err),
		)

		cached := s.FetchSameDayCache(ctx)
		if cached.ErrorMessage == "" {
			cached.ErrorMessage = msgServedFromCache
		}
		return cached, nil
	}

	if len(live.Results) == 0 {
		logger.Info("provider returned no results, falling back to cache",
			zap.String("client_ip", clientIP),
		)

		cached := s.FetchSameDayCache(ctx)
		cached.ErrorMessage = msgNoProviderResults
		return cached, nil
	}

	s.mergeInBackground(live)

	return live, nil
}

// mergeInBackground detaches the merge from the request lifecycle. The task
// owns a copy of the result slice; its outcome is logged, never awaited.
func (s *Service) mergeInBackground(live *models.Response) {
	snapshot := &models.Response{
		Status:   live.Status,
		Results:  append([]models.Article(nil), live.Results...),
		NextPage: live.NextPage,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.mergeTimeout)
		defer cancel()

		if err := s.MergeAndCache(ctx, snapshot); err != nil {
			logger.Error("background merge failed", zap.Error(err))
		}
	}()
}

const dateLayout = "2006-01-02"

// todayKey derives the partition key from wall-clock now, not from article
// publish dates.
func (s *Service) todayKey() string {
	return s.now().UTC().Format(dateLayout)
}
