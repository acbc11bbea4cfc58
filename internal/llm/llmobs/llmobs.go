package llmobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/trace"
)

// observableGenerator wraps a ReportGenerator with observability (logging & tracing)
type observableGenerator struct {
	generator interfaces.ReportGenerator
}

// Compile-time interface check
var _ interfaces.ReportGenerator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(generator interfaces.ReportGenerator) interfaces.ReportGenerator {
	return &observableGenerator{generator: generator}
}

func (og *observableGenerator) Name() string {
	return og.generator.Name()
}

// Generate produces a report with observability
func (og *observableGenerator) Generate(ctx context.Context, symbol string, payload map[string]any) (string, error) {
	ctx, span := trace.StartSymbolSpan(ctx, "llm.Generate", symbol, attribute.String("llm.provider", og.generator.Name()))
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting research report",
		"symbol", symbol,
		"provider", og.generator.Name(),
	)

	start := time.Now()
	content, err := og.generator.Generate(ctx, symbol, payload)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to generate research report", err,
			"symbol", symbol,
			"provider", og.generator.Name(),
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Research report generated",
		"symbol", symbol,
		"provider", og.generator.Name(),
		"chars", len(content),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
