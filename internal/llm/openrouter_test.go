package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func testLLMConfig(baseURL string) config.LLMConfig {
	cfg := config.DefaultConfig().LLM
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.Referer = "https://dash.example.com"
	cfg.Timeout = 5 * time.Second
	return cfg
}

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
	Stream      bool    `json:"stream"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenRouterClient_Complete(t *testing.T) {
	var got chatRequest
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"gen-1","object":"chat.completion","created":1,"model":"openai/gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Hello from the model"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":12,"completion_tokens":4,"total_tokens":16}}`)
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testLLMConfig(srv.URL), logging.Nop())
	text, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are helpful"},
		{Role: RoleUser, Content: "Hi"},
	}, Options{Model: "openai/gpt-4o-mini", Temperature: 0.7, MaxTokens: 256, TopP: 0.9})

	require.NoError(t, err)
	assert.Equal(t, "Hello from the model", text)

	assert.Equal(t, "openai/gpt-4o-mini", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	assert.InDelta(t, 0.9, got.TopP, 0.001)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Hi", got.Messages[1].Content)

	assert.Equal(t, "Bearer test-key", headers.Get("Authorization"))
	assert.Equal(t, "https://dash.example.com", headers.Get("HTTP-Referer"))
	assert.Equal(t, "dashai", headers.Get("X-Title"))
}

func TestOpenRouterClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  string
		retryable bool
	}{
		{http.StatusTooManyRequests, dasherr.CodeRateLimited, true},
		{http.StatusUnauthorized, "llm_rejected", false},
		{http.StatusBadGateway, "llm_unavailable", true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"error":{"message":"nope","type":"error","code":%d}}`, tt.status)
			}))
			defer srv.Close()

			client := NewOpenRouterClient(testLLMConfig(srv.URL), logging.Nop())
			_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Hi"}}, Options{Model: "m", MaxTokens: 10})

			require.Error(t, err)
			assert.True(t, dasherr.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, tt.retryable, dasherr.IsRetryable(err))
		})
	}
}

func TestOpenRouterClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"gen-1","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testLLMConfig(srv.URL), logging.Nop())
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Hi"}}, Options{Model: "m", MaxTokens: 10})
	assert.True(t, dasherr.HasCode(err, "llm_empty_response"), "got %v", err)
}

func TestOpenRouterClient_MissingKey(t *testing.T) {
	cfg := testLLMConfig("http://127.0.0.1:1")
	cfg.APIKey = ""
	client := NewOpenRouterClient(cfg, logging.Nop())

	_, err := client.Complete(context.Background(), nil, Options{})
	assert.True(t, dasherr.HasCode(err, dasherr.CodeMissingAPIKey))

	_, err = Collect(client.Stream(context.Background(), nil, Options{}), nil)
	assert.True(t, dasherr.HasCode(err, dasherr.CodeMissingAPIKey))
}

func TestOpenRouterClient_Stream(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, part := range []string{"Hel", "lo", " there"} {
			fmt.Fprintf(w, "data: {\"id\":\"gen-1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testLLMConfig(srv.URL), logging.Nop())

	var parts []string
	text, err := Collect(client.Stream(context.Background(), []Message{{Role: RoleUser, Content: "Hi"}}, Options{Model: "m", MaxTokens: 10}), func(s string) {
		parts = append(parts, s)
	})

	require.NoError(t, err)
	assert.True(t, got.Stream)
	assert.Equal(t, "Hello there", text)
	assert.Equal(t, []string{"Hel", "lo", " there"}, parts)
}
