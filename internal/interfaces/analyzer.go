package interfaces

import (
	"context"

	"asset-guardian/internal/types"
)

// EvidenceAnalyzer produces the three-horizon evidence bundle for one symbol.
// Horizon failures are reported inside the result; the error return is reserved
// for failures before any horizon could run.
type EvidenceAnalyzer interface {
	Analyze(ctx context.Context, symbol string) (*types.AnalysisResult, error)
}
