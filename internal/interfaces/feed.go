package interfaces

import (
	"context"

	"asset-guardian/internal/types"
)

// MarketDataFeed supplies possibly-partial market data. An empty series or a nil
// statement with a nil error means the source had nothing for the request.
type MarketDataFeed interface {
	PriceHistory(ctx context.Context, symbol string, window types.Window) (types.PriceSeries, error)
	IssuerInfo(ctx context.Context, symbol string) (types.IssuerInfo, error)
	QuarterlyStatement(ctx context.Context, symbol string, kind types.StatementKind) (*types.Statement, error)
}
