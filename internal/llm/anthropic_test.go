package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClient_Complete(t *testing.T) {
	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	var apiKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		apiKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku",
			"content":[{"type":"text","text":"Bonjour"}],
			"stop_reason":"end_turn","stop_sequence":null,
			"usage":{"input_tokens":9,"output_tokens":2}}`)
	}))
	defer srv.Close()

	cfg := testLLMConfig(srv.URL + "/")
	cfg.Provider = config.ProviderAnthropic
	client := NewAnthropicClient(cfg, logging.Nop())

	text, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "system prompt"},
		{Role: RoleUser, Content: "Salut"},
		{Role: RoleAssistant, Content: "Bonjour!"},
		{Role: RoleUser, Content: "Ça va?"},
	}, Options{Model: "anthropic/claude-3-haiku", Temperature: 0.5, MaxTokens: 128, TopP: 1})

	require.NoError(t, err)
	assert.Equal(t, "Bonjour", text)
	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "claude-3-haiku", body.Model)
	assert.Equal(t, 128, body.MaxTokens)
	require.Len(t, body.System, 1)
	assert.Equal(t, "system prompt", body.System[0].Text)
	assert.Len(t, body.Messages, 3)
}

func TestAnthropicClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	cfg := testLLMConfig(srv.URL + "/")
	client := NewAnthropicClient(cfg, logging.Nop())

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Hi"}}, Options{Model: "claude-3-haiku", MaxTokens: 16})
	require.Error(t, err)
	assert.True(t, dasherr.HasCode(err, dasherr.CodeRateLimited), "got %v", err)
}

func TestAnthropicClient_MissingKey(t *testing.T) {
	cfg := testLLMConfig("http://127.0.0.1:1/")
	cfg.APIKey = ""
	client := NewAnthropicClient(cfg, logging.Nop())

	_, err := client.Complete(context.Background(), nil, Options{})
	assert.True(t, dasherr.HasCode(err, dasherr.CodeMissingAPIKey))
	assert.Contains(t, err.Error(), config.EnvAnthropicKey)
}
