package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/types"
)

func fixedClock() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

func TestMockIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewMock().WithClock(fixedClock).PriceHistory(ctx, "AAPL", types.Window2Y)
	require.NoError(t, err)
	b, err := NewMock().WithClock(fixedClock).PriceHistory(ctx, "AAPL", types.Window2Y)
	require.NoError(t, err)
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)

	other, err := NewMock().WithClock(fixedClock).PriceHistory(ctx, "MSFT", types.Window2Y)
	require.NoError(t, err)
	assert.NotEqual(t, a[len(a)-1].Close, other[len(other)-1].Close)
}

func TestMockWindowsNest(t *testing.T) {
	m := NewMock().WithClock(fixedClock)
	ctx := context.Background()
	long, err := m.PriceHistory(ctx, "005930.KS", types.Window10Y)
	require.NoError(t, err)
	short, err := m.PriceHistory(ctx, "005930.KS", types.Window2M)
	require.NoError(t, err)

	assert.Greater(t, len(long), 2000)
	assert.Less(t, len(short), 50)
	assert.Equal(t, long[len(long)-1], short[len(short)-1])
}

func TestMockStatementsAndInfo(t *testing.T) {
	m := NewMock().WithClock(fixedClock)
	ctx := context.Background()

	st, err := m.QuarterlyStatement(ctx, "AAPL", types.IncomeStatement)
	require.NoError(t, err)
	rev, ok := st.Row("TotalRevenue")
	require.True(t, ok)
	assert.Len(t, rev, 12)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), rev[len(rev)-1].Date)

	info, err := m.IssuerInfo(ctx, "005930.KS")
	require.NoError(t, err)
	cur, _ := info.Text("currency")
	assert.Equal(t, "KRW", cur)

	idx, err := m.QuarterlyStatement(ctx, "^VIX", types.BalanceSheet)
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestFixtureMock(t *testing.T) {
	m := NewFixtureMock()
	ctx := context.Background()

	s, err := m.PriceHistory(ctx, "AAPL", types.Window2Y)
	require.NoError(t, err)
	assert.True(t, s.Empty())

	st, err := m.QuarterlyStatement(ctx, "AAPL", types.IncomeStatement)
	require.NoError(t, err)
	assert.Nil(t, st)

	boom := errors.New("boom")
	m.FailOn("AAPL", boom)
	_, err = m.IssuerInfo(ctx, "AAPL")
	assert.ErrorIs(t, err, boom)
}
