package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMin int
		wantMax int
	}{
		{"empty string", "", 0, 0},
		{"short text", "Hello, world!", 1, 10},
		{"longer text", "This is a longer piece of text that should result in a reasonable token estimate.", 15, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTokens(tt.text)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("EstimateTokens() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestEstimateMessages(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi there, how can I help you?"},
		{Role: RoleUser, Content: "List my projects."},
	}
	if got := EstimateMessages(messages); got < 15 {
		t.Errorf("EstimateMessages() = %v, expected at least 15 (overhead + content)", got)
	}
}

func TestTokenBucket_FirstWaitDoesNotBlock(t *testing.T) {
	bucket := NewTokenBucket(1000)

	start := time.Now()
	require.NoError(t, bucket.Wait(context.Background(), 100))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestTokenBucket_CancelledContext(t *testing.T) {
	bucket := NewTokenBucket(1)
	// exhaust the burst
	require.NoError(t, bucket.Wait(context.Background(), 1000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bucket.Wait(ctx, 1000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenBucket_UsesWaitCallback(t *testing.T) {
	bucket := NewTokenBucket(1)
	require.NoError(t, bucket.Wait(context.Background(), 1000))

	var got WaitInfo
	bucket.SetWaitCallback(func(_ context.Context, info WaitInfo) error {
		got = info
		return nil
	})
	require.NoError(t, bucket.Wait(context.Background(), 10))
	assert.Equal(t, "token bucket cooldown", got.Reason)
	assert.Positive(t, got.Duration)
}

func TestRateLimitedClient_RetriesRateLimitErrors(t *testing.T) {
	calls := 0
	mock := NewMockClient()
	mock.CompleteFunc = func(context.Context, []Message, Options) (string, error) {
		calls++
		if calls < 3 {
			return "", dasherr.LLMRateLimited(errors.New("429 Too Many Requests"))
		}
		return "ok", nil
	}

	rl := NewRateLimitedClient(mock, config.RateLimitConfig{
		MaxRetries:      3,
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		TokensPerMinute: 600000,
	}, logging.Nop())

	var waits []WaitInfo
	rl.SetWaitCallback(func(_ context.Context, info WaitInfo) error {
		waits = append(waits, info)
		return nil
	})

	text, err := rl.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, calls)
	require.Len(t, waits, 2)
	assert.Equal(t, 1, waits[0].Attempt)
	assert.Equal(t, "endpoint returned 429", waits[0].Reason)
}

func TestRateLimitedClient_PassesThroughOtherErrors(t *testing.T) {
	calls := 0
	mock := NewMockClient()
	mock.CompleteFunc = func(context.Context, []Message, Options) (string, error) {
		calls++
		return "", dasherr.LLMRejected(401, errors.New("unauthorized"))
	}

	rl := NewRateLimitedClient(mock, config.RateLimitConfig{MaxRetries: 3, TokensPerMinute: 600000}, logging.Nop())
	_, err := rl.Complete(context.Background(), nil, Options{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRateLimitedClient_StreamRetriesBeforeFirstText(t *testing.T) {
	calls := 0
	mock := NewMockClient()
	mock.StreamFunc = func(context.Context, []Message, Options) <-chan StreamChunk {
		calls++
		if calls == 1 {
			return errorStream(dasherr.LLMRateLimited(errors.New("429")))
		}
		ch := make(chan StreamChunk, 2)
		ch <- StreamChunk{Type: ChunkText, Text: "hello"}
		ch <- StreamChunk{Type: ChunkDone}
		close(ch)
		return ch
	}

	rl := NewRateLimitedClient(mock, config.RateLimitConfig{MaxRetries: 2, TokensPerMinute: 600000}, logging.Nop())
	rl.SetWaitCallback(func(context.Context, WaitInfo) error { return nil })

	text, err := Collect(rl.Stream(context.Background(), nil, Options{}), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 2, calls)
}

func TestRateLimitedClient_calculateBackoff(t *testing.T) {
	client := &RateLimitedClient{cfg: config.RateLimitConfig{
		BaseDelay: 1 * time.Second,
		MaxDelay:  60 * time.Second,
	}}

	tests := []struct {
		attempt int
		wantMin time.Duration
		wantMax time.Duration
	}{
		{1, 1 * time.Second, 2 * time.Second},
		{2, 2 * time.Second, 3 * time.Second},
		{3, 4 * time.Second, 6 * time.Second},
		{10, 60 * time.Second, 60 * time.Second},
	}

	for _, tt := range tests {
		got := client.calculateBackoff(tt.attempt)
		if got < tt.wantMin || got > tt.wantMax {
			t.Errorf("calculateBackoff(%d) = %v, want between %v and %v", tt.attempt, got, tt.wantMin, tt.wantMax)
		}
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"typed rate limit", dasherr.LLMRateLimited(errors.New("slow down")), true},
		{"429 in text", errors.New("status code 429"), true},
		{"rate limit phrase", errors.New("Rate limit reached"), true},
		{"too many requests", errors.New("429 Too Many Requests"), true},
		{"other error", errors.New("connection refused"), false},
		{"typed rejection", dasherr.LLMRejected(400, errors.New("bad request")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimitError(tt.err); got != tt.want {
				t.Errorf("isRateLimitError() = %v, want %v", got, tt.want)
			}
		})
	}
}
