package localcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestETagCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok := s.GetETag("trellis:repo/a")
	assert.False(t, ok)

	require.NoError(t, s.PutETag("trellis:repo/a", `"abc123"`, time.Now()))
	etag, ok := s.GetETag("trellis:repo/a")
	require.True(t, ok)
	assert.Equal(t, `"abc123"`, etag)

	require.NoError(t, s.InvalidateETag("trellis:repo/a"))
	_, ok = s.GetETag("trellis:repo/a")
	assert.False(t, ok)
}

func TestNextSlugIsMonotonicPerPartition(t *testing.T) {
	s := openTestStore(t)

	a1, err := s.NextSlug("repo")
	require.NoError(t, err)
	a2, err := s.NextSlug("repo")
	require.NoError(t, err)
	assert.Greater(t, a2, a1)

	b1, err := s.NextSlug("other")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), b1)
}
