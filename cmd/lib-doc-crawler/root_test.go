package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocsSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/docs/":             `<html><head><title>Home</title></head><body><p>Welcome to the docs.</p><a href="install.html">Install</a></body></html>`,
		"/docs/install.html": `<html><head><title>Install</title></head><body><p>Run the installer.</p></body></html>`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nCrawl-delay: 0\n")
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCrawlWritesAggregateArtifact(t *testing.T) {
	srv := newDocsSite(t)
	dir := t.TempDir()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--output-dir", dir, srv.URL + "/docs/"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "crawled_content.md"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "source: "+srv.URL+"/docs/")
	assert.Contains(t, content, "source: "+srv.URL+"/docs/install.html")
	assert.Contains(t, content, "Welcome to the docs.")
	assert.Contains(t, content, "Run the installer.")
}

func TestRunCrawlPerPageMode(t *testing.T) {
	srv := newDocsSite(t)
	dir := t.TempDir()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--per-page", "--output-dir", dir, srv.URL + "/docs/"})
	require.NoError(t, cmd.Execute())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "index.md")
	assert.Contains(t, names, "install.md")

	data, err := os.ReadFile(filepath.Join(dir, "install.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run the installer.")
}

func TestRunCrawlMaxPages(t *testing.T) {
	srv := newDocsSite(t)
	dir := t.TempDir()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--max-pages", "1", "--output-dir", dir, srv.URL + "/docs/"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "crawled_content.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Welcome to the docs.")
	assert.NotContains(t, string(data), "Run the installer.")
}

func TestRunCrawlRejectsBadSeed(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--output-dir", t.TempDir(), "://not-a-url"})
	assert.Error(t, cmd.Execute())
}

func TestRunCrawlRequiresSeedArgument(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestRunCrawlMissingConfigFlagIsAnError(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.toml"), "https://docs.example.com/"})
	assert.Error(t, cmd.Execute())
}
