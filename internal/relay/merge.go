package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/models"
)

// MergeAndCache enriches a provider result with sentiment labels and merges
// it into today's partition, de-duplicating by article id. Enricher failures
// degrade to all-Neutral; store failures abort the merge and are reported to
// the caller, never to the request path.
func (s *Service) MergeAndCache(ctx context.Context, res *models.Response) error {
	date := s.todayKey()

	labels, err := s.enricher.Sentiments(ctx, res.Results)
	if err != nil {
		logger.Warn("sentiment enrichment failed, defaulting to neutral",
			zap.String("date", date),
			zap.Int("articles", len(res.Results)),
			zap.Error(err),
		)
		labels = map[string]models.Sentiment{}
	}

	incoming := make([]models.Article, len(res.Results))
	for i, article := range res.Results {
		label, ok := labels[article.ArticleID]
		if !ok {
			label = models.SentimentNeutral
		}
		article.Sentiment = label
		incoming[i] = article
	}

	// The read-modify-write below races with concurrent merges for the same
	// day, so it runs under a per-date lock.
	lock := s.locks.MergeLock(date)
	if err := lock.Acquire(ctx); err != nil {
		return fmt.Errorf("merge lock for %s: %w", date, err)
	}
	defer lock.Release(ctx)

	existing, err := s.store.GetPartition(ctx, date)
	if err != nil {
		return fmt.Errorf("merge read failed: %w", err)
	}

	if existing == nil {
		p := &models.Partition{Date: date, Results: incoming, NextPage: res.NextPage}
		if err := s.store.InsertPartition(ctx, p); err != nil {
			return fmt.Errorf("merge insert failed: %w", err)
		}

		logger.Info("created daily partition",
			zap.String("date", date),
			zap.Int("articles", len(incoming)),
		)
		return nil
	}

	merged := dedupeByID(append(existing.Results, incoming...))

	p := &models.Partition{Date: date, Results: merged, NextPage: res.NextPage}
	if err := s.store.UpdatePartition(ctx, p); err != nil {
		return fmt.Errorf("merge write failed: %w", err)
	}

	logger.Info("merged into daily partition",
		zap.String("date", date),
		zap.Int("incoming", len(incoming)),
		zap.Int("total", len(merged)),
	)

	return nil
}

// dedupeByID collapses duplicate article ids, keeping first-occurrence order
// with the last-seen version of each id winning. Incoming articles are
// appended after existing ones, so new versions overwrite cached ones.
func dedupeByID(articles []models.Article) []models.Article {
	index := make(map[string]int, len(articles))
	out := make([]models.Article, 0, len(articles))

	for _, a := range articles {
		if i, ok := index[a.ArticleID]; ok {
			out[i] = a
			continue
		}
		index[a.ArticleID] = len(out)
		out = append(out, a)
	}

	return out
}
