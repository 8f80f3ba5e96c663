package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushDeduplicates(t *testing.T) {
	f := New()

	assert.True(t, f.Push("https://docs.example.com/a.html", "https://docs.example.com/a.html", ""))
	assert.False(t, f.Push("https://docs.example.com/a.html", "https://docs.example.com/a.html#frag", "https://docs.example.com/"))

	assert.Equal(t, 1, f.Len())
	assert.Equal(t, 1, f.SeenCount())
}

func TestPopIsDepthFirst(t *testing.T) {
	f := New()
	f.Push("https://docs.example.com/a.html", "a", "")
	f.Push("https://docs.example.com/b.html", "b", "")
	f.Push("https://docs.example.com/c.html", "c", "")

	// Last pushed pops first.
	require.Equal(t, "https://docs.example.com/c.html", f.Pop().Normalized)
	require.Equal(t, "https://docs.example.com/b.html", f.Pop().Normalized)
	require.Equal(t, "https://docs.example.com/a.html", f.Pop().Normalized)
	assert.Nil(t, f.Pop())
}

func TestSeenSetOnlyGrows(t *testing.T) {
	f := New()
	f.Push("https://docs.example.com/a.html", "a", "")

	cand := f.Pop()
	require.NotNil(t, cand)

	// Popping does not forget: the URL can never be queued again.
	assert.True(t, f.Seen("https://docs.example.com/a.html"))
	assert.Equal(t, 1, f.SeenCount())
	assert.False(t, f.Push("https://docs.example.com/a.html", "a", "other"))
	assert.Equal(t, 0, f.Len())
}

func TestCandidateCarriesDiscoveryContext(t *testing.T) {
	f := New()
	f.Push("https://docs.example.com/a.html", "https://DOCS.example.com/a.html#x", "https://docs.example.com/")

	cand := f.Pop()
	require.NotNil(t, cand)
	assert.Equal(t, "https://docs.example.com/a.html", cand.Normalized)
	assert.Equal(t, "https://DOCS.example.com/a.html#x", cand.Original)
	assert.Equal(t, "https://docs.example.com/", cand.Referrer)
}
