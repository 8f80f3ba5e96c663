package frontier

import (
	"log/slog"
	"sync"
)

// Candidate is a URL ready to be crawled.
type Candidate struct {
	Original   string
	Normalized string
	Referrer   string
}

// SeenRecord remembers how a URL was first discovered.
type SeenRecord struct {
	OriginalURL string
	Referrer    string
}

// Frontier is the crawl worklist. Pop order is LIFO, so traversal is
// depth-first: the most recently discovered page is explored next.
// The seen set records every URL ever pushed — queued or completed —
// and only ever grows, which is what guarantees at-most-once fetching
// even when the same URL is discovered from several pages.
type Frontier struct {
	mu    sync.Mutex
	stack []string
	seen  map[string]SeenRecord
}

func New() *Frontier {
	return &Frontier{
		seen: make(map[string]SeenRecord),
	}
}

// Push adds a URL to the worklist unless it has been seen before.
// It reports whether the URL was actually added.
func (f *Frontier) Push(normalizedURL, originalURL, referrer string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[normalizedURL]; ok {
		slog.Debug("frontier duplicate, skipping", slog.String("url", normalizedURL), slog.String("referrer", referrer))
		return false
	}

	f.seen[normalizedURL] = SeenRecord{
		OriginalURL: originalURL,
		Referrer:    referrer,
	}
	f.stack = append(f.stack, normalizedURL)

	slog.Debug("frontier push", slog.String("url", normalizedURL), slog.Int("queue_len", len(f.stack)))
	return true
}

// Pop removes and returns the next candidate, or nil when the
// worklist is exhausted.
func (f *Frontier) Pop() *Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.stack) == 0 {
		return nil
	}

	url := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]

	rec := f.seen[url]
	return &Candidate{
		Original:   rec.OriginalURL,
		Normalized: url,
		Referrer:   rec.Referrer,
	}
}

// Len returns the number of queued, not-yet-popped URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stack)
}

// SeenCount returns the size of the visited set: every URL ever
// submitted, whether still queued or already crawled.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// Seen reports whether a URL has ever been pushed.
func (f *Frontier) Seen(normalizedURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[normalizedURL]
	return ok
}
