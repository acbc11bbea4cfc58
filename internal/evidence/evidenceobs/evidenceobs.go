package evidenceobs

import (
	"context"
	"time"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/metrics"
	"asset-guardian/internal/types"
)

// observableAnalyzer wraps an EvidenceAnalyzer with logging, tracing and metrics
type observableAnalyzer struct {
	analyzer interfaces.EvidenceAnalyzer
	metrics  *metrics.Recorder
}

// Compile-time interface check
var _ interfaces.EvidenceAnalyzer = (*observableAnalyzer)(nil)

// Wrap wraps an analyzer with observability middleware. rec may be nil.
func Wrap(analyzer interfaces.EvidenceAnalyzer, rec *metrics.Recorder) interfaces.EvidenceAnalyzer {
	return &observableAnalyzer{analyzer: analyzer, metrics: rec}
}

func (oa *observableAnalyzer) Analyze(ctx context.Context, symbol string) (*types.AnalysisResult, error) {
	op := logger.StartOperation(ctx, "evidence.Analyze", "symbol", symbol)
	ctx = op.GetContext()
	start := time.Now()

	res, err := oa.analyzer.Analyze(ctx, symbol)
	oa.metrics.RecordAnalysis(time.Since(start))
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Analysis completed",
		"symbol", res.Symbol,
		"run_id", res.RunID,
		"long", res.Summary.LongOutlook,
		"mid", res.Summary.MidOutlook,
		"short", res.Summary.ShortOutlook,
		"horizon_errors", len(res.Errors()),
	)
	op.End("run_id", res.RunID)
	return res, nil
}
