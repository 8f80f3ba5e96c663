package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage writes each crawled page to its own file in dir, named
// from the URL path. Distinct paths can map to the same derived name;
// the later page overwrites the earlier one. That collision risk is
// accepted, matching the aggregate sink's one-entry-per-page model.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the per-page sink rooted at dir, creating
// the directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output dir %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// SavePage writes the extracted text verbatim to the derived file.
func (s *FileStorage) SavePage(_ context.Context, p Page) error {
	name := PageFileName(p.URL)
	path := filepath.Join(s.dir, name)

	if _, err := os.Stat(path); err == nil {
		slog.Debug("overwriting page file on name collision", slog.String("url", p.URL), slog.String("path", path))
	}

	if err := os.WriteFile(path, []byte(p.Content), 0o644); err != nil {
		return fmt.Errorf("could not write page file %s: %w", path, err)
	}

	slog.Info("wrote page file", slog.String("url", p.URL), slog.String("path", path))
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}

// PageFileName derives a filesystem-safe name from a URL path: the
// first segment (the docs root) is dropped, the rest joined with
// underscores, and the .html suffix replaced with .md. An empty
// remainder becomes the index page.
func PageFileName(rawURL string) string {
	var path string
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) > 0 {
		segs = segs[1:]
	}

	var kept []string
	for _, seg := range segs {
		if seg != "" {
			kept = append(kept, seg)
		}
	}

	name := strings.TrimSuffix(strings.Join(kept, "_"), ".html")
	if name == "" {
		name = "index"
	}
	return name + ".md"
}
