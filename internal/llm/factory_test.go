package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/store"
)

func TestNewGenerator(t *testing.T) {
	cfg := store.Default()

	gen, err := NewGenerator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "noop", gen.Name())

	out, err := gen.Generate(context.Background(), "AAPL", map[string]any{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "AAPL evidence summary"))

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "")
	cfg.LLM.Provider = "CLAUDE"
	cfg.LLM.Model = "claude-test"
	_, err = NewGenerator(cfg)
	assert.Error(t, err)

	cfg.LLM.Provider = "GEMINI"
	_, err = NewGenerator(cfg)
	assert.EqualError(t, err, "unsupported llm provider: GEMINI")
}
