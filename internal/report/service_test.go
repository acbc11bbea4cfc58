package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/metrics"
	"asset-guardian/internal/reportcache"
	"asset-guardian/internal/types"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *countingGenerator) Name() string { return "counting" }

func (g *countingGenerator) Generate(ctx context.Context, symbol string, payload map[string]any) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "report for " + symbol, nil
}

type brokenStore struct{ *reportcache.Memory }

func (brokenStore) Get(ctx context.Context, symbol, day string) (*types.Report, error) {
	return nil, errors.New("disk I/O error")
}

func TestGetOrCreateCachesPerDay(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	cache := reportcache.NewMemory()
	gen := &countingGenerator{}
	rec := metrics.New(prometheus.NewRegistry())
	svc := NewService(cache, gen, seoul, WithMetrics(rec))
	ctx := context.Background()

	res := sampleResult()
	// 16:00 UTC on the 13th is already the 14th in Seoul.
	res.AsOf = time.Date(2025, 6, 13, 16, 0, 0, 0, time.UTC)

	first, cached, err := svc.GetOrCreate(ctx, res)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "2025-06-14", first.Date)
	assert.Equal(t, "counting", first.Provider)
	assert.Equal(t, "report for 005930.KS", first.Content)
	assert.NotEmpty(t, first.Payload)

	second, cached, err := svc.GetOrCreate(ctx, res)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 1, gen.calls)

	next := sampleResult()
	next.AsOf = res.AsOf.Add(24 * time.Hour)
	_, cached, err = svc.GetOrCreate(ctx, next)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, gen.calls)
}

func TestGetOrCreateGenerationFailureIsNotCached(t *testing.T) {
	cache := reportcache.NewMemory()
	gen := &countingGenerator{err: errors.New("rate limited")}
	svc := NewService(cache, gen, time.UTC)

	_, _, err := svc.GetOrCreate(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")

	_, err = cache.Get(context.Background(), "005930.KS", "2025-06-13")
	assert.ErrorIs(t, err, reportcache.ErrNotFound)
}

func TestGetOrCreateRegeneratesWhenCacheUnreadable(t *testing.T) {
	gen := &countingGenerator{}
	svc := NewService(brokenStore{Memory: reportcache.NewMemory()}, gen, time.UTC)

	rep, cached, err := svc.GetOrCreate(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "report for 005930.KS", rep.Content)
	assert.Equal(t, 1, gen.calls)
}

func TestGetOrCreateUsesClockWithoutAsOf(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)
	svc := NewService(reportcache.NewMemory(), &countingGenerator{}, nil, WithClock(func() time.Time { return now }))

	res := sampleResult()
	res.AsOf = time.Time{}
	rep, _, err := svc.GetOrCreate(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", rep.Date)
	assert.Equal(t, now, rep.CreatedAt)
}

func TestTodaySkipsAnalysisOnHit(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	// 16:00 UTC on the 13th is the 14th in Seoul.
	now := time.Date(2025, 6, 13, 16, 0, 0, 0, time.UTC)
	gen := &countingGenerator{}
	svc := NewService(reportcache.NewMemory(), gen, seoul, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, ok := svc.Today(ctx, "005930.KS")
	assert.False(t, ok)

	res := sampleResult()
	res.AsOf = now
	created, _, err := svc.GetOrCreate(ctx, res)
	require.NoError(t, err)

	got, ok := svc.Today(ctx, "005930.ks")
	require.True(t, ok)
	assert.Equal(t, created.Content, got.Content)
	assert.Equal(t, "2025-06-14", got.Date)

	now = now.Add(24 * time.Hour)
	_, ok = svc.Today(ctx, "005930.KS")
	assert.False(t, ok)
	assert.Equal(t, 1, gen.calls)

	_, ok = NewService(brokenStore{Memory: reportcache.NewMemory()}, gen, seoul).Today(ctx, "005930.KS")
	assert.False(t, ok)
}
