package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/store"
)

func testConfig(endpoint string) *store.Config {
	cfg := store.Default()
	cfg.LLM.Provider = "OPENAI"
	cfg.LLM.Model = "gpt-test"
	cfg.LLM.System = "be brief"
	cfg.LLM.Endpoint = endpoint
	return cfg
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "be brief", body.Messages[0]["content"])
			assert.Contains(t, body.Messages[1]["content"], "MSFT")
		}

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" Neutral. "}}]}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "sk-test")
	gen, err := New(testConfig(srv.URL + "/"))
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), "MSFT", map[string]any{"symbol": "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, "Neutral.", out)
}

func TestGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "sk-test")
	gen, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "MSFT", map[string]any{})
	assert.EqualError(t, err, "no choices")
}

func TestGenerateClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "sk-bad")
	gen, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "MSFT", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
