package storage

import (
	"context"
	"time"
)

// Page is one crawled page's extracted content plus crawl metadata.
type Page struct {
	Referrer   string
	RawURL     string
	URL        string // normalized
	Timestamp  time.Time
	Title      string
	Content    string
	StatusCode int
	Outlinks   []string
}

// Storage records crawled pages. Implementations must treat a write
// failure as page-local: the crawler logs it and moves on.
type Storage interface {
	SavePage(ctx context.Context, p Page) error
	Close() error
}
