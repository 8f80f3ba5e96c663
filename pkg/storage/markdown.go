package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/nao1215/markdown"
)

// DefaultAggregateFile is the aggregate artifact name inside the
// output directory.
const DefaultAggregateFile = "crawled_content.md"

// MarkdownStorage appends every crawled page to a single growing
// Markdown artifact. Records are written in crawl order and never
// rewritten; each record goes out in one Write call so a partially
// written record can't interleave with another.
type MarkdownStorage struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewMarkdownStorage opens (or creates) the aggregate artifact at
// path in append mode.
func NewMarkdownStorage(path string) (*MarkdownStorage, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open aggregate file %s: %w", path, err)
	}
	return &MarkdownStorage{file: f, path: path}, nil
}

// Path returns the location of the aggregate artifact.
func (s *MarkdownStorage) Path() string {
	return s.path
}

// SavePage appends one delimited record for p.
func (s *MarkdownStorage) SavePage(_ context.Context, p Page) error {
	record := renderRecord(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(record); err != nil {
		return fmt.Errorf("could not append record for %s: %w", p.URL, err)
	}

	slog.Info("appended page to aggregate file", slog.String("url", p.URL), slog.String("path", s.path))
	return nil
}

func (s *MarkdownStorage) Close() error {
	return s.file.Close()
}

// renderRecord converts the extracted text to Markdown and wraps it
// in the source/crawled_at header block downstream tooling parses.
// When conversion fails the raw text is stored unmodified.
func renderRecord(p Page) []byte {
	var body bytes.Buffer

	heading := p.Title
	if heading == "" {
		heading = p.URL
	}

	md := markdown.NewMarkdown(&body)
	md.H2(heading)
	md.PlainText("")
	md.PlainText(p.Content)
	if err := md.Build(); err != nil {
		slog.Warn("markdown conversion failed, storing raw text", slog.String("url", p.URL), slog.Any("err", err))
		body.Reset()
		body.WriteString(p.Content)
	}

	var rec bytes.Buffer
	fmt.Fprintf(&rec, "\n---\nsource: %s\ncrawled_at: %s\n---\n\n", p.URL, p.Timestamp.Format("2006-01-02 15:04:05"))
	rec.Write(bytes.TrimRight(body.Bytes(), "\n"))
	rec.WriteString("\n\n---\n")
	return rec.Bytes()
}
