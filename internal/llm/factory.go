package llm

import (
	"fmt"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/llm/claude"
	"asset-guardian/internal/llm/llmobs"
	"asset-guardian/internal/llm/noop"
	"asset-guardian/internal/llm/openai"
	"asset-guardian/internal/store"
)

// NewGenerator builds the report generator named by llm.provider, wrapped for observability.
func NewGenerator(cfg *store.Config) (interfaces.ReportGenerator, error) {
	var (
		gen interfaces.ReportGenerator
		err error
	)
	switch cfg.LLM.Provider {
	case "CLAUDE":
		gen, err = claude.New(cfg)
	case "OPENAI":
		gen, err = openai.New(cfg)
	case "NOOP":
		gen = noop.New()
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}
	return llmobs.Wrap(gen), nil
}
