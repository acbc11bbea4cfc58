package snapshot

import (
	"context"
	"time"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/types"
)

// Fetcher applies the caller's per-fetch deadline to feed calls and folds
// failures into "no data". Nothing here retries.
type Fetcher struct {
	feed    interfaces.MarketDataFeed
	timeout time.Duration
}

// NewFetcher returns a Fetcher; a zero timeout means calls only inherit ctx.
func NewFetcher(feed interfaces.MarketDataFeed, timeout time.Duration) *Fetcher {
	return &Fetcher{feed: feed, timeout: timeout}
}

func (f *Fetcher) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

// Prices returns an empty series on failure or timeout.
func (f *Fetcher) Prices(ctx context.Context, symbol string, window types.Window) types.PriceSeries {
	fctx, cancel := f.withDeadline(ctx)
	defer cancel()
	s, err := f.feed.PriceHistory(fctx, symbol, window)
	if err != nil {
		logger.Warn(ctx, "Price history unavailable", "symbol", symbol, "window", window, "error", err)
		return nil
	}
	return s
}

// Info returns an empty map on failure or timeout.
func (f *Fetcher) Info(ctx context.Context, symbol string) types.IssuerInfo {
	fctx, cancel := f.withDeadline(ctx)
	defer cancel()
	info, err := f.feed.IssuerInfo(fctx, symbol)
	if err != nil || info == nil {
		if err != nil {
			logger.Warn(ctx, "Issuer info unavailable", "symbol", symbol, "error", err)
		}
		return types.IssuerInfo{}
	}
	return info
}

// Statement returns nil on failure or timeout.
func (f *Fetcher) Statement(ctx context.Context, symbol string, kind types.StatementKind) *types.Statement {
	fctx, cancel := f.withDeadline(ctx)
	defer cancel()
	st, err := f.feed.QuarterlyStatement(fctx, symbol, kind)
	if err != nil {
		logger.Warn(ctx, "Statement unavailable", "symbol", symbol, "kind", kind, "error", err)
		return nil
	}
	return st
}
