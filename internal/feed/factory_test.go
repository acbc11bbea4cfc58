package feed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/store"
)

func TestNewFromConfig(t *testing.T) {
	cfg := store.Default()
	cfg.Feed.Provider = "MOCK"
	f, cache, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, f)
	assert.Nil(t, cache)

	cfg = store.Default()
	cfg.Feed.CacheDir = filepath.Join(t.TempDir(), "feed")
	f, cache, err = NewFromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Yahoo{}, f)
	assert.NotNil(t, cache)

	cfg.Feed.Provider = "BLOOMBERG"
	_, _, err = NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewFromConfigUnwritableCacheDir(t *testing.T) {
	cfg := store.Default()
	cfg.Feed.Provider = "YAHOO"
	cfg.Feed.CacheDir = "/dev/null/feed_cache"

	f, cache, err := NewFromConfig(cfg)
	require.Error(t, err)
	assert.Nil(t, f)
	assert.Nil(t, cache)
}
