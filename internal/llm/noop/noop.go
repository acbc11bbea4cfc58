package noop

import (
	"context"
	"fmt"
	"strings"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
)

// Generator is used when no LLM is configured. It lists the three outlooks
// from the payload so dry runs still produce a readable report.
type Generator struct{}

var _ interfaces.ReportGenerator = (*Generator)(nil)

func New() *Generator {
	return &Generator{}
}

func (g *Generator) Name() string { return "noop" }

func (g *Generator) Generate(ctx context.Context, symbol string, payload map[string]any) (string, error) {
	logger.Debug(ctx, "Noop generator called - summarizing outlooks only", "symbol", symbol)

	summary, _ := payload["summary"].(map[string]any)
	var b strings.Builder
	fmt.Fprintf(&b, "%s evidence summary", symbol)
	if asOf, ok := payload["as_of"].(string); ok && asOf != "" {
		fmt.Fprintf(&b, " (as of %s)", asOf)
	}
	b.WriteString("\n")

	for _, h := range []string{"long", "mid", "short"} {
		line := "unavailable"
		if section, ok := payload[h].(map[string]any); ok {
			if msg, ok := section["error"].(string); ok {
				line = "unavailable: " + msg
			}
		}
		if outlook, ok := summary[h].(string); ok && outlook != "" {
			line = outlook
		}
		fmt.Fprintf(&b, "- %s horizon: %s\n", h, line)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
