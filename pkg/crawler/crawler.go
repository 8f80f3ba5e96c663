package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	frontier "github.com/Kazu-INo/lib-doc-crawler/pkg"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/config"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/process"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/scope"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/storage"
)

type CrawlStats struct {
	StartTime      time.Time
	PagesProcessed int
	PagesErrored   int
	PagesSkipped   int
}

func (s *CrawlStats) Elapsed() time.Duration {
	return time.Since(s.StartTime)
}

func (s *CrawlStats) PagesPerSecond() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(s.PagesProcessed) / elapsed
}

// Crawler walks a documentation site depth-first from a seed URL.
// Execution is deliberately single-threaded: with one request in
// flight at a time, sleeping the politeness delay before each fetch
// is all it takes to never hit the site faster than its policy asks.
type Crawler struct {
	cfg      *config.Config
	scope    *scope.Scope
	gate     *process.Gate
	frontier *frontier.Frontier
	store    storage.Storage
	client   *http.Client
	Stats    CrawlStats
}

func New(cfg *config.Config, sc *scope.Scope, gate *process.Gate, f *frontier.Frontier, store storage.Storage) *Crawler {
	return &Crawler{
		cfg:      cfg,
		scope:    sc,
		gate:     gate,
		frontier: f,
		store:    store,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Run drains the frontier. It returns when every reachable, in-scope,
// policy-allowed URL has been visited, the page budget is exhausted,
// or ctx is cancelled. Page-level failures never stop the crawl.
func (c *Crawler) Run(ctx context.Context) {
	c.Stats.StartTime = time.Now()

	for {
		select {
		case <-ctx.Done():
			slog.Info("crawl cancelled", slog.Int("queued", c.frontier.Len()))
			c.logSummary()
			return
		default:
		}

		cand := c.frontier.Pop()
		if cand == nil {
			break
		}
		c.crawlPage(ctx, cand)
	}

	c.logSummary()
}

func (c *Crawler) logSummary() {
	slog.Info("crawl complete",
		slog.Int("processed", c.Stats.PagesProcessed),
		slog.Int("errored", c.Stats.PagesErrored),
		slog.Int("skipped", c.Stats.PagesSkipped),
		slog.Int("visited", c.frontier.SeenCount()),
		slog.Duration("elapsed", c.Stats.Elapsed()),
		slog.Float64("pages_per_sec", c.Stats.PagesPerSecond()),
	)
}

// crawlPage processes one URL: politeness sleep, fetch, sink write,
// link discovery. Every failure is page-local.
func (c *Crawler) crawlPage(ctx context.Context, cand *frontier.Candidate) {
	slog.Info("crawling", slog.String("url", cand.Normalized))

	// The delay comes before the network call, for the seed included.
	if d := c.gate.Delay(); d > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
		}
	}

	page, links, err := c.fetchPage(ctx, cand)
	if err != nil {
		c.Stats.PagesErrored++
		slog.Warn("crawl failed", slog.String("url", cand.Normalized), slog.Any("err", err))
		return
	}
	if page == nil {
		// Not an error: non-HTML response or nothing extractable.
		// The page stays visited, just unrecorded and unexpanded.
		c.Stats.PagesSkipped++
		return
	}

	if err := c.store.SavePage(ctx, *page); err != nil {
		c.Stats.PagesErrored++
		slog.Error("failed to save page", slog.String("url", cand.Normalized), slog.Any("err", err))
		return
	}
	c.Stats.PagesProcessed++

	c.discover(cand.Normalized, links)
}

// discover filters a page's outlinks through normalization, scope and
// robots policy and queues the survivors, stopping when the page
// budget is reached.
func (c *Crawler) discover(fromURL string, links []string) {
	type candidate struct {
		normalized string
		original   string
	}

	var accepted []candidate
	inBatch := make(map[string]bool)
	for _, link := range links {
		if c.budgetReached(len(accepted)) {
			slog.Info("page budget reached, stopping link discovery",
				slog.Int("visited", c.frontier.SeenCount()),
				slog.Int("limit", c.cfg.Crawler.MaxPages),
			)
			break
		}

		normalized, err := process.Normalize(link)
		if err != nil {
			slog.Debug("could not normalize link", slog.String("link", link), slog.Any("err", err))
			continue
		}
		if inBatch[normalized] || c.frontier.Seen(normalized) {
			continue
		}
		if !c.scope.Contains(normalized) {
			continue
		}
		if !c.gate.Allowed(normalized) {
			slog.Debug("robots.txt disallowed", slog.String("url", normalized))
			continue
		}

		inBatch[normalized] = true
		accepted = append(accepted, candidate{normalized: normalized, original: link})
	}

	// Pushed in reverse so the first link listed on the page is the
	// next one popped (depth-first, document order).
	pushed := 0
	for i := len(accepted) - 1; i >= 0; i-- {
		if c.frontier.Push(accepted[i].normalized, accepted[i].original, fromURL) {
			pushed++
		}
	}

	slog.Debug("links discovered",
		slog.String("url", fromURL),
		slog.Int("found", len(links)),
		slog.Int("queued", pushed),
	)
}

// budgetReached reports whether queueing one more URL, on top of
// extra already-accepted ones, would push the visited set past the
// configured page budget.
func (c *Crawler) budgetReached(extra int) bool {
	limit := c.cfg.Crawler.MaxPages
	return limit > 0 && c.frontier.SeenCount()+extra >= limit
}
