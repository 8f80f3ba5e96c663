package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageFileName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"drops docs root segment", "https://docs.example.com/polars/user-guide/io.html", "user-guide_io.md"},
		{"directory index", "https://docs.example.com/polars/user-guide/", "user-guide.md"},
		{"root becomes index", "https://docs.example.com/polars/", "index.md"},
		{"bare host", "https://docs.example.com/", "index.md"},
		{"deep nesting", "https://docs.example.com/a/b/c/d.html", "b_c_d.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageFileName(tt.url))
		})
	}
}

func TestFileStorageWritesVerbatimContent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(filepath.Join(dir, "out"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SavePage(context.Background(), Page{
		URL:       "https://docs.example.com/polars/guide/install.html",
		Content:   "raw extracted text\n\nwith paragraphs",
		Timestamp: time.Now(),
	}))

	data, err := os.ReadFile(filepath.Join(dir, "out", "guide_install.md"))
	require.NoError(t, err)
	assert.Equal(t, "raw extracted text\n\nwith paragraphs", string(data))
}

func TestFileStorageOverwritesOnNameCollision(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer s.Close()

	// Two distinct URLs that derive the same name: accepted overwrite.
	require.NoError(t, s.SavePage(context.Background(), Page{
		URL:     "https://docs.example.com/v1/guide/install.html",
		Content: "old",
	}))
	require.NoError(t, s.SavePage(context.Background(), Page{
		URL:     "https://docs.example.com/v2/guide/install.html",
		Content: "new",
	}))

	data, err := os.ReadFile(filepath.Join(dir, "guide_install.md"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
