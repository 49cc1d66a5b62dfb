package relay

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/selivandex/news-relay/pkg/models"
)

func TestFetchSameDayCache_ServesTodayPartition(t *testing.T) {
	store := newFakeStore()
	store.seed(&models.Partition{
		Date: "2025-03-14",
		Results: []models.Article{
			article("a1", models.SentimentPositive),
			article("a2", models.SentimentNeutral),
		},
		NextPage: "3",
	})

	svc := testService(&fakeFetcher{}, &fakeEnricher{}, store)

	resp := svc.FetchSameDayCache(context.Background())

	if resp.Status != models.StatusOK {
		t.Fatalf("expected status ok, got %s", resp.Status)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(resp.Results))
	}
	if resp.NextPage != "3" {
		t.Errorf("expected cursor 3, got %q", resp.NextPage)
	}
}

func TestFetchSameDayCache_IdempotentWithoutMerge(t *testing.T) {
	store := newFakeStore()
	store.seed(&models.Partition{
		Date:     "2025-03-14",
		Results:  []models.Article{article("a1", models.SentimentPositive)},
		NextPage: "2",
	})

	svc := testService(&fakeFetcher{}, &fakeEnricher{}, store)

	first := svc.FetchSameDayCache(context.Background())
	second := svc.FetchSameDayCache(context.Background())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("back-to-back cache reads should be identical:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestFetchSameDayCache_MissingPartition(t *testing.T) {
	svc := testService(&fakeFetcher{}, &fakeEnricher{}, newFakeStore())

	resp := svc.FetchSameDayCache(context.Background())

	if resp.Status != models.StatusNoResults {
		t.Errorf("expected no_results, got %s", resp.Status)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(resp.Results))
	}
	if resp.ErrorMessage == "" {
		t.Error("missing partition should carry an explanatory message")
	}
}

func TestFetchSameDayCache_StoreErrorIsReportedNotRaised(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")

	svc := testService(&fakeFetcher{}, &fakeEnricher{}, store)

	resp := svc.FetchSameDayCache(context.Background())

	if resp == nil {
		t.Fatal("store failure must still produce a response")
	}
	if resp.Status != models.StatusError {
		t.Errorf("expected error status, got %s", resp.Status)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(resp.Results))
	}
	if resp.ErrorMessage == "" {
		t.Error("store failure should be described in the response")
	}
}

func TestFetchRecentPositive_AggregatesAcrossWindow(t *testing.T) {
	store := newFakeStore()
	store.seed(&models.Partition{
		Date: "2025-03-14",
		Results: []models.Article{
			article("t1", models.SentimentPositive),
			article("t2", models.SentimentNegative),
			article("t3", models.SentimentPositive),
		},
		NextPage: "5",
	})
	store.seed(&models.Partition{
		Date: "2025-03-13",
		Results: []models.Article{
			article("y1", models.SentimentPositive),
			article("y2", models.SentimentPositive),
			article("y3", models.SentimentNeutral),
			article("y4", models.SentimentPositive),
		},
		NextPage: "9",
	})

	svc := testService(&fakeFetcher{}, &fakeEnricher{}, store)

	resp := svc.FetchRecentPositive(context.Background(), 7)

	if resp.Status != models.StatusOK {
		t.Fatalf("expected status ok, got %s", resp.Status)
	}
	if len(resp.Results) != 5 {
		t.Fatalf("expected 5 positive articles, got %d", len(resp.Results))
	}
	for _, a := range resp.Results {
		if a.Sentiment != models.SentimentPositive {
			t.Errorf("article %s is %s, want Positive", a.ArticleID, a.Sentiment)
		}
	}

	// Most recent day first, insertion order inside a day
	want := []string{"t1", "t3", "y1", "y2", "y4"}
	for i, a := range resp.Results {
		if a.ArticleID != want[i] {
			t.Fatalf("unexpected order at %d: got %s, want %s", i, a.ArticleID, want[i])
		}
	}

	// Cursor comes only from the most recent date
	if resp.NextPage != "5" {
		t.Errorf("expected today's cursor 5, got %q", resp.NextPage)
	}
}

func TestFetchRecentPositive_SkipsMissingPartitions(t *testing.T) {
	store := newFakeStore()
	// Only a partition three days back; today and the rest are missing
	store.seed(&models.Partition{
		Date:     "2025-03-11",
		Results:  []models.Article{article("p1", models.SentimentPositive)},
		NextPage: "4",
	})

	svc := testService(&fakeFetcher{}, &fakeEnricher{}, store)

	resp := svc.FetchRecentPositive(context.Background(), 7)

	if resp.Status != models.StatusOK {
		t.Fatalf("expected status ok, got %s", resp.Status)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 positive article, got %d", len(resp.Results))
	}
	// Older partitions never supply the cursor
	if resp.NextPage != "" {
		t.Errorf("cursor must come from today only, got %q", resp.NextPage)
	}
}

func TestFetchRecentPositive_NoPositives(t *testing.T) {
	store := newFakeStore()
	store.seed(&models.Partition{
		Date:    "2025-03-14",
		Results: []models.Article{article("a1", models.SentimentNegative)},
	})

	svc := testService(&fakeFetcher{}, &fakeEnricher{}, store)

	resp := svc.FetchRecentPositive(context.Background(), 7)

	if resp.Status != models.StatusNoResults {
		t.Errorf("expected no_results, got %s", resp.Status)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no articles, got %d", len(resp.Results))
	}
}

func TestFetchRecentPositive_WindowExcludesOlderDates(t *testing.T) {
	store := newFakeStore()
	// Eight days back: outside a 7-day window that includes today
	store.seed(&models.Partition{
		Date:    "2025-03-06",
		Results: []models.Article{article("old", models.SentimentPositive)},
	})
	store.seed(&models.Partition{
		Date:    "2025-03-08",
		Results: []models.Article{article("edge", models.SentimentPositive)},
	})

	svc := testService(&fakeFetcher{}, &fakeEnricher{}, store)

	resp := svc.FetchRecentPositive(context.Background(), 7)

	if len(resp.Results) != 1 {
		t.Fatalf("expected only the in-window article, got %d", len(resp.Results))
	}
	if resp.Results[0].ArticleID != "edge" {
		t.Errorf("expected edge article, got %s", resp.Results[0].ArticleID)
	}
}
