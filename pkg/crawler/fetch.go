package crawler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	frontier "github.com/Kazu-INo/lib-doc-crawler/pkg"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/process"
	"github.com/Kazu-INo/lib-doc-crawler/pkg/storage"
)

// fetchPage fetches one URL and extracts its text and outlinks.
// A nil page with a nil error means the page was skipped: non-HTML
// content, or nothing extractable. Both are page-local conditions.
func (c *Crawler) fetchPage(ctx context.Context, cand *frontier.Candidate) (*storage.Page, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cand.Normalized, nil)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", c.cfg.Crawler.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if !validateHTMLContentTypeHeader(resp, "text/html") {
		slog.Warn("not an html page, skipping",
			slog.String("url", cand.Normalized),
			slog.String("content_type", resp.Header.Get("Content-Type")),
		)
		return nil, nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if !validateBodyContentType(body, "text/html") {
		slog.Warn("response body is not html, skipping", slog.String("url", cand.Normalized))
		return nil, nil, nil
	}

	textContent, err := process.ExtractText(bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	if textContent == "" {
		slog.Warn("could not extract content", slog.String("url", cand.Normalized))
		return nil, nil, nil
	}

	extracted, err := process.ExtractLinks(bytes.NewReader(body), cand.Normalized)
	if err != nil {
		// Recoverable: the page content survives, link discovery
		// from it yields nothing.
		slog.Warn("failed to extract links", slog.String("url", cand.Normalized), slog.Any("err", err))
		extracted = &process.PageLinks{}
	}

	page := &storage.Page{
		Referrer:   cand.Referrer,
		RawURL:     cand.Original,
		URL:        cand.Normalized,
		Timestamp:  time.Now(),
		Title:      extracted.Title,
		Content:    textContent,
		StatusCode: resp.StatusCode,
		Outlinks:   extracted.Outlinks,
	}

	return page, extracted.Outlinks, nil
}

func validateHTMLContentTypeHeader(resp *http.Response, contentType string) bool {
	header := resp.Header.Get("Content-Type")

	return strings.Contains(strings.ToLower(header), contentType)
}

func validateBodyContentType(body []byte, contentType string) bool {
	return strings.HasPrefix(http.DetectContentType(body), contentType)
}
