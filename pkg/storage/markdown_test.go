package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownStorageAppendsDelimitedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawled_content.md")

	s, err := NewMarkdownStorage(path)
	require.NoError(t, err)
	defer s.Close()

	ts := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)

	require.NoError(t, s.SavePage(context.Background(), Page{
		URL:       "https://docs.example.com/polars/",
		Title:     "Polars",
		Content:   "Fast dataframes.",
		Timestamp: ts,
	}))
	require.NoError(t, s.SavePage(context.Background(), Page{
		URL:       "https://docs.example.com/polars/install.html",
		Title:     "Installation",
		Content:   "pip install polars",
		Timestamp: ts.Add(time.Second),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "source: https://docs.example.com/polars/\n")
	assert.Contains(t, content, "crawled_at: 2026-08-23 10:30:00\n")
	assert.Contains(t, content, "## Polars")
	assert.Contains(t, content, "Fast dataframes.")
	assert.Contains(t, content, "## Installation")

	// Records appear in crawl order.
	assert.Less(t,
		strings.Index(content, "source: https://docs.example.com/polars/"),
		strings.Index(content, "source: https://docs.example.com/polars/install.html"),
	)
}

func TestMarkdownStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawled_content.md")

	s, err := NewMarkdownStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.SavePage(context.Background(), Page{URL: "https://docs.example.com/a.html", Content: "first", Timestamp: time.Now()}))
	require.NoError(t, s.Close())

	// A second crawl run appends; earlier records are never rewritten.
	s, err = NewMarkdownStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.SavePage(context.Background(), Page{URL: "https://docs.example.com/b.html", Content: "second", Timestamp: time.Now()}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestRenderRecordFallsBackToURLHeading(t *testing.T) {
	rec := string(renderRecord(Page{
		URL:       "https://docs.example.com/untitled.html",
		Content:   "no title here",
		Timestamp: time.Now(),
	}))

	assert.Contains(t, rec, "## https://docs.example.com/untitled.html")
	assert.Contains(t, rec, "no title here")
	assert.True(t, strings.HasSuffix(rec, "\n---\n"))
}
