package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
)

// PostgresStorage records crawled pages in a pages table, one row per
// page in crawl order.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) SavePage(ctx context.Context, p Page) error {
	jsonOutlinks, err := json.Marshal(p.Outlinks)
	if err != nil {
		return err
	}

	var id int
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO pages (url, normalized_url, referrer, crawled_at, title, content, status_code, outlinks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.RawURL, p.URL, p.Referrer, p.Timestamp, p.Title, p.Content, p.StatusCode, jsonOutlinks,
	).Scan(&id)

	if err != nil {
		return err
	}

	slog.Info("saved page", slog.Int("id", id), slog.String("url", p.URL))
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
