package interfaces

import (
	"context"

	"asset-guardian/internal/types"
)

// ReportGenerator turns a pre-formatted evidence payload into a research note.
type ReportGenerator interface {
	Name() string
	Generate(ctx context.Context, symbol string, payload map[string]any) (string, error)
}

// ReportStore caches at most one report per (symbol, calendar day).
// Put overwrites, so concurrent writers converge on the last write.
type ReportStore interface {
	Get(ctx context.Context, symbol, day string) (*types.Report, error)
	Put(ctx context.Context, report *types.Report) error
	Close() error
}
