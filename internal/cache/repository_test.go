package cache

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/selivandex/news-relay/pkg/models"
)

// setupDB connects to the test database named by TEST_DATABASE_URL and
// provisions a throwaway cache_data table. Skipped when the variable is
// unset so the suite runs without a live Postgres.
func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_data (
			date DATE PRIMARY KEY,
			results JSONB NOT NULL DEFAULT '[]'::jsonb,
			next_page TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM cache_data")
		db.Close()
	})

	return db
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := NewRepository(setupDB(t))
	ctx := context.Background()

	p := &models.Partition{
		Date: "2025-03-14",
		Results: []models.Article{
			{ArticleID: "a1", Title: "First", Sentiment: models.SentimentPositive},
			{ArticleID: "a2", Title: "Second", Sentiment: models.SentimentNeutral},
		},
		NextPage: "17",
	}

	if err := repo.InsertPartition(ctx, p); err != nil {
		t.Fatalf("InsertPartition failed: %v", err)
	}

	got, err := repo.GetPartition(ctx, "2025-03-14")
	if err != nil {
		t.Fatalf("GetPartition failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a partition")
	}
	if got.Date != "2025-03-14" || got.NextPage != "17" {
		t.Errorf("unexpected partition header: %+v", got)
	}
	if len(got.Results) != 2 || got.Results[0].ArticleID != "a1" {
		t.Errorf("articles did not round-trip: %+v", got.Results)
	}
	if got.Results[0].Sentiment != models.SentimentPositive {
		t.Errorf("sentiment did not round-trip: %s", got.Results[0].Sentiment)
	}
}

func TestRepository_MissingDateReturnsNil(t *testing.T) {
	repo := NewRepository(setupDB(t))

	got, err := repo.GetPartition(context.Background(), "1999-01-01")
	if err != nil {
		t.Fatalf("GetPartition failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for an absent date, got %+v", got)
	}
}

func TestRepository_UpdateOverwrites(t *testing.T) {
	repo := NewRepository(setupDB(t))
	ctx := context.Background()

	if err := repo.InsertPartition(ctx, &models.Partition{
		Date:     "2025-03-14",
		Results:  []models.Article{{ArticleID: "a1"}},
		NextPage: "1",
	}); err != nil {
		t.Fatalf("InsertPartition failed: %v", err)
	}

	if err := repo.UpdatePartition(ctx, &models.Partition{
		Date: "2025-03-14",
		Results: []models.Article{
			{ArticleID: "a1", Sentiment: models.SentimentNegative},
			{ArticleID: "a2", Sentiment: models.SentimentPositive},
		},
		NextPage: "2",
	}); err != nil {
		t.Fatalf("UpdatePartition failed: %v", err)
	}

	got, err := repo.GetPartition(ctx, "2025-03-14")
	if err != nil {
		t.Fatalf("GetPartition failed: %v", err)
	}
	if len(got.Results) != 2 || got.NextPage != "2" {
		t.Errorf("update did not land: %+v", got)
	}
}

func TestRepository_UpdateMissingPartition(t *testing.T) {
	repo := NewRepository(setupDB(t))

	err := repo.UpdatePartition(context.Background(), &models.Partition{
		Date: "1999-01-01",
	})
	if err == nil {
		t.Fatal("updating an absent partition should fail")
	}
}
