package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/store"
)

func TestBuildAppFailsWhenFeedCannotStart(t *testing.T) {
	cfg := store.Default()
	cfg.Feed.Provider = "YAHOO"
	cfg.Feed.CacheDir = "/dev/null/feed_cache"
	cfg.AnalysisLog.Dir = t.TempDir()

	a, err := buildApp(context.Background(), cfg, false)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "init market data feed")
}

func TestBuildAppMockFeed(t *testing.T) {
	cfg := store.Default()
	cfg.Feed.Provider = "MOCK"
	cfg.AnalysisLog.Dir = t.TempDir()

	a, err := buildApp(context.Background(), cfg, false)
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Nil(t, a.feeds)
	assert.Nil(t, a.reports)
	res, err := a.analyzer.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Symbol)
}

func TestHousekeepingDropsExpiredFeedResponses(t *testing.T) {
	cfg := store.Default()
	cfg.Feed.CacheDir = filepath.Join(t.TempDir(), "feed")
	cfg.Feed.CacheTTL = time.Hour
	cfg.AnalysisLog.Dir = t.TempDir()

	a, err := buildApp(context.Background(), cfg, false)
	require.NoError(t, err)
	defer a.Close(context.Background())
	require.NotNil(t, a.feeds)

	stale := filepath.Join(cfg.Feed.CacheDir, "stale.json")
	fresh := filepath.Join(cfg.Feed.CacheDir, "fresh.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("{}"), 0o644))
	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	housekeeping(context.Background(), a)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
