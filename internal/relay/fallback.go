package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/models"
)

// FetchSameDayCache reads today's partition. A store failure is reported in
// the response, not retried and not raised.
func (s *Service) FetchSameDayCache(ctx context.Context) *models.Response {
	date := s.todayKey()

	p, err := s.store.GetPartition(ctx, date)
	if err != nil {
		logger.Error("same-day cache read failed",
			zap.String("date", date),
			zap.Error(err),
		)
		return &models.Response{
			Status:       models.StatusError,
			Results:      []models.Article{},
			ErrorMessage: fmt.Sprintf("cache read failed: %v", err),
		}
	}

	if p == nil {
		return &models.Response{
			Status:       models.StatusNoResults,
			Results:      []models.Article{},
			ErrorMessage: msgNoCachedResults,
		}
	}

	return &models.Response{
		Status:   models.StatusOK,
		Results:  p.Results,
		NextPage: p.NextPage,
	}
}

// FetchRecentPositive aggregates positively-labeled articles over the last
// windowDays calendar dates, most recent first. Missing partitions are
// skipped; the cursor comes only from today's partition when it exists.
func (s *Service) FetchRecentPositive(ctx context.Context, windowDays int) *models.Response {
	if windowDays < 1 {
		windowDays = s.windowDays
	}

	now := s.now().UTC()
	positive := []models.Article{}
	nextPage := ""

	for i := 0; i < windowDays; i++ {
		date := now.AddDate(0, 0, -i).Format(dateLayout)

		p, err := s.store.GetPartition(ctx, date)
		if err != nil {
			logger.Warn("skipping unreadable partition",
				zap.String("date", date),
				zap.Error(err),
			)
			continue
		}
		if p == nil {
			logger.Debug("no partition for date", zap.String("date", date))
			continue
		}

		if i == 0 {
			nextPage = p.NextPage
		}

		for _, a := range p.Results {
			if a.Sentiment == models.SentimentPositive {
				positive = append(positive, a)
			}
		}
	}

	status := models.StatusOK
	if len(positive) == 0 {
		status = models.StatusNoResults
	}

	return &models.Response{
		Status:   status,
		Results:  positive,
		NextPage: nextPage,
	}
}
