package claude

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/llm/prompt"
	"asset-guardian/internal/store"
	"asset-guardian/internal/trace"
)

// Generator writes research notes with the Anthropic Messages API.
type Generator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	system      string
}

var _ interfaces.ReportGenerator = (*Generator)(nil)

// New reads the key from ANTHROPIC_API_KEY, falling back to CLAUDE_API_KEY.
// llm.endpoint, when set, replaces the public API base URL.
func New(cfg *store.Config, opts ...option.RequestOption) (*Generator, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("CLAUDE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY missing")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.LLM.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.LLM.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	return &Generator{
		client:      anthropic.NewClient(clientOpts...),
		model:       cfg.LLM.Model,
		maxTokens:   int64(cfg.LLM.MaxTokens),
		temperature: cfg.LLM.Temperature,
		system:      prompt.System(cfg.LLM.System),
	}, nil
}

func (g *Generator) Name() string { return "claude" }

func (g *Generator) Generate(ctx context.Context, symbol string, payload map[string]any) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	user, err := prompt.User(symbol, payload)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		System: []anthropic.TextBlockParam{{Text: g.system}},
	}
	if g.temperature > 0 {
		params.Temperature = anthropic.Float(g.temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude messages call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("claude returned no text content")
	}
	return strings.TrimSpace(out.String()), nil
}
