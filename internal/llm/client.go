// Package llm talks to chat-completion endpoints.
//
// Every provider implements Completer. The constructor New picks the provider from
// config and wraps it with rate limiting and a circuit breaker, so callers only
// ever see a Completer and can substitute MockClient in tests.
package llm

import (
	"context"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
)

// Role tags a conversation message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a conversation message
type Message struct {
	Role    Role
	Content string
}

// Options are the per-request sampling settings
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// OptionsFromConfig returns the request options configured for cfg.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
	}
}

// ChunkType identifies what a StreamChunk carries
type ChunkType string

const (
	ChunkText  ChunkType = "text"
	ChunkDone  ChunkType = "done"
	ChunkError ChunkType = "error"
)

// StreamChunk represents a chunk of streamed response
type StreamChunk struct {
	Type  ChunkType
	Text  string
	Error error
}

// Completer is the interface for chat-completion clients.
//
// Complete returns the assistant text of the first choice. Stream delivers the
// same text incrementally; the channel always ends with a done or error chunk
// and is then closed.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
	Stream(ctx context.Context, messages []Message, opts Options) <-chan StreamChunk
}

// New builds the configured provider client wrapped with rate limiting and
// circuit breaking. A missing API key is not an error here; it is reported by
// the first request. onWait, when non-nil, is told about rate-limit waits.
func New(cfg *config.Config, log *logging.Logger, onWait WaitCallback) Completer {
	log = logging.Or(log).WithPrefix("llm")

	var base Completer
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		base = NewAnthropicClient(cfg.LLM, log)
	default:
		base = NewOpenRouterClient(cfg.LLM, log)
	}

	if cfg.RateLimit.EnableRateLimiting {
		limited := NewRateLimitedClient(base, cfg.RateLimit, log)
		if onWait != nil {
			limited.SetWaitCallback(onWait)
		}
		base = limited
	}
	return NewResilientClient(base, cfg.RateLimit, log)
}

// Collect drains a stream into the full reply text, calling onText for every
// text chunk when non-nil.
func Collect(ch <-chan StreamChunk, onText func(string)) (string, error) {
	var text []byte
	var err error
	for chunk := range ch {
		switch chunk.Type {
		case ChunkText:
			text = append(text, chunk.Text...)
			if onText != nil {
				onText(chunk.Text)
			}
		case ChunkError:
			if err == nil {
				err = chunk.Error
			}
		}
	}
	return string(text), err
}

// errorStream returns a closed channel carrying a single error chunk.
func errorStream(err error) <-chan StreamChunk {
	ch := make(chan StreamChunk, 1)
	ch <- StreamChunk{Type: ChunkError, Error: err}
	close(ch)
	return ch
}
