package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/news-relay/pkg/models"
)

// Repository handles database operations for daily article partitions.
// One row per calendar date; rows are never deleted here (retention is an
// external concern).
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new cache repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type partitionRow struct {
	Date     string `db:"date"`
	Results  []byte `db:"results"`
	NextPage string `db:"next_page"`
}

// GetPartition reads the partition for a date key. Returns (nil, nil) when
// the date has no partition yet.
func (r *Repository) GetPartition(ctx context.Context, date string) (*models.Partition, error) {
	var row partitionRow

	err := r.db.GetContext(ctx, &row, `
		SELECT date::text AS date, results, next_page
		FROM cache_data
		WHERE date = $1
	`, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", date, err)
	}

	var articles []models.Article
	if err := json.Unmarshal(row.Results, &articles); err != nil {
		return nil, fmt.Errorf("corrupt partition %s: %w", date, err)
	}

	return &models.Partition{
		Date:     row.Date,
		Results:  articles,
		NextPage: row.NextPage,
	}, nil
}

// InsertPartition creates the first partition for a date
func (r *Repository) InsertPartition(ctx context.Context, p *models.Partition) error {
	results, err := json.Marshal(p.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cache_data (date, results, next_page)
		VALUES ($1, $2, $3)
	`, p.Date, results, p.NextPage)
	if err != nil {
		return fmt.Errorf("failed to insert partition %s: %w", p.Date, err)
	}

	return nil
}

// UpdatePartition overwrites an existing partition's articles and cursor
func (r *Repository) UpdatePartition(ctx context.Context, p *models.Partition) error {
	results, err := json.Marshal(p.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE cache_data
		SET results = $2, next_page = $3, updated_at = NOW()
		WHERE date = $1
	`, p.Date, results, p.NextPage)
	if err != nil {
		return fmt.Errorf("failed to update partition %s: %w", p.Date, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("partition %s does not exist", p.Date)
	}

	return nil
}
