package scope

import (
	"fmt"
	"net/url"
	"strings"
)

// Segments that documentation generators use for non-content assets.
const (
	sourcesSegment = "/_sources/"
	staticSegment  = "/_static/"
)

// Scope restricts a crawl to the documentation pages of a single site.
// It is immutable for the lifetime of a crawl.
type Scope struct {
	host string
}

// New derives the crawl scope from the seed URL.
func New(seedURL string) (*Scope, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url %q: %w", seedURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("seed url %q has no host", seedURL)
	}

	return &Scope{host: strings.ToLower(u.Host)}, nil
}

// Host returns the base domain every accepted URL must match.
func (s *Scope) Host() string {
	return s.host
}

// Contains reports whether rawURL is eligible for traversal. A URL is
// in scope when its host equals the seed's host exactly (no subdomain
// matching), its path names a content page (.html) or a directory
// index (trailing slash), and its path does not pass through a
// generated-assets segment.
func (s *Scope) Contains(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if !strings.EqualFold(u.Host, s.host) {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	if !strings.HasSuffix(path, ".html") && !strings.HasSuffix(path, "/") {
		return false
	}

	if strings.Contains(path, sourcesSegment) || strings.Contains(path, staticSegment) {
		return false
	}

	return true
}
