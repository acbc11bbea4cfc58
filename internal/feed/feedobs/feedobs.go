package feedobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/metrics"
	"asset-guardian/internal/trace"
	"asset-guardian/internal/types"
)

// observableFeed wraps a MarketDataFeed with logging, tracing and metrics
type observableFeed struct {
	feed    interfaces.MarketDataFeed
	metrics *metrics.Recorder
}

// Compile-time interface check
var _ interfaces.MarketDataFeed = (*observableFeed)(nil)

// Wrap wraps a feed with observability middleware. rec may be nil.
func Wrap(feed interfaces.MarketDataFeed, rec *metrics.Recorder) interfaces.MarketDataFeed {
	return &observableFeed{feed: feed, metrics: rec}
}

func outcome(err error, empty bool) string {
	switch {
	case err != nil:
		return "error"
	case empty:
		return "empty"
	default:
		return "ok"
	}
}

func (of *observableFeed) PriceHistory(ctx context.Context, symbol string, window types.Window) (types.PriceSeries, error) {
	ctx, span := trace.StartSymbolSpan(ctx, "feed.PriceHistory", symbol, attribute.String("feed.window", string(window)))
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Fetching price history", "symbol", symbol, "window", window)

	series, err := of.feed.PriceHistory(ctx, symbol, window)
	of.metrics.RecordFeedCall("PriceHistory", outcome(err, series.Empty()), time.Since(start))
	if err != nil {
		span.RecordError(err)
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price history", err, "symbol", symbol, "window", window)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Price history fetched", "symbol", symbol, "window", window, "bars", len(series))
	return series, nil
}

func (of *observableFeed) IssuerInfo(ctx context.Context, symbol string) (types.IssuerInfo, error) {
	ctx, span := trace.StartSymbolSpan(ctx, "feed.IssuerInfo", symbol)
	defer span.End()

	start := time.Now()
	info, err := of.feed.IssuerInfo(ctx, symbol)
	of.metrics.RecordFeedCall("IssuerInfo", outcome(err, len(info) == 0), time.Since(start))
	if err != nil {
		span.RecordError(err)
		logger.WarnSkip(ctx, 1, "Failed to fetch issuer info", "symbol", symbol, "error", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Issuer info fetched", "symbol", symbol, "keys", len(info))
	return info, nil
}

func (of *observableFeed) QuarterlyStatement(ctx context.Context, symbol string, kind types.StatementKind) (*types.Statement, error) {
	ctx, span := trace.StartSymbolSpan(ctx, "feed.QuarterlyStatement", symbol, attribute.String("feed.statement", string(kind)))
	defer span.End()

	start := time.Now()
	st, err := of.feed.QuarterlyStatement(ctx, symbol, kind)
	of.metrics.RecordFeedCall("QuarterlyStatement", outcome(err, st == nil), time.Since(start))
	if err != nil {
		span.RecordError(err)
		logger.WarnSkip(ctx, 1, "Failed to fetch statement", "symbol", symbol, "kind", kind, "error", err)
		return nil, err
	}

	rows := 0
	if st != nil {
		rows = len(st.Rows)
	}
	logger.DebugSkip(ctx, 1, "Statement fetched", "symbol", symbol, "kind", kind, "rows", rows)
	return st, nil
}
