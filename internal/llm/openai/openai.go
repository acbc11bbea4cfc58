package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"asset-guardian/internal/api"
	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/llm/prompt"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/store"
	"asset-guardian/internal/trace"
)

const defaultEndpoint = "https://api.openai.com"

// Generator calls the chat completions endpoint through the shared API client.
type Generator struct {
	client *api.Client
	retry  *api.RetryConfig
	cfg    *store.Config
	system string
}

var _ interfaces.ReportGenerator = (*Generator)(nil)

func New(cfg *store.Config) (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	endpoint := cfg.LLM.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	client := api.NewClient(
		api.WithBaseURL(strings.TrimRight(endpoint, "/")),
		api.WithTimeout(2*time.Minute),
		api.WithHeader("Authorization", "Bearer "+apiKey),
		api.WithLogging(logger.IsDebugEnabled()),
	)
	return &Generator{
		client: client,
		retry:  &api.RetryConfig{MaxAttempts: 2, InitialWait: 2 * time.Second, MaxWait: 5 * time.Second},
		cfg:    cfg,
		system: prompt.System(cfg.LLM.System),
	}, nil
}

func (g *Generator) Name() string { return "openai" }

func (g *Generator) Generate(ctx context.Context, symbol string, payload map[string]any) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	user, err := prompt.User(symbol, payload)
	if err != nil {
		return "", err
	}
	body := map[string]any{
		"model": g.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": g.system},
			{"role": "user", "content": user},
		},
		"temperature": g.cfg.LLM.Temperature,
		"max_tokens":  g.cfg.LLM.MaxTokens,
	}

	req := api.NewRequest(http.MethodPost, "/v1/chat/completions").WithContext(ctx).WithBody(body)
	resp, err := g.client.DoWithRetry(req, g.retry)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}
	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("openai returned empty content")
	}
	return out, nil
}
