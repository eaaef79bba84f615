package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient wraps the Anthropic SDK for direct Messages API access.
type AnthropicClient struct {
	client *anthropic.Client
	apiKey string
	log    *logging.Logger
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(cfg config.LLMConfig, log *logging.Logger) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// retries are handled by RateLimitedClient and ResilientClient
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" && cfg.BaseURL != config.DefaultOpenRouterBaseURL {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client: &client,
		apiKey: cfg.APIKey,
		log:    logging.Or(log),
	}
}

// Complete sends a message and returns the concatenated text blocks
func (c *AnthropicClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", dasherr.LLMMissingAPIKey(string(config.ProviderAnthropic), config.EnvAnthropicKey)
	}

	c.log.Debug("sending messages request", logging.Model(opts.Model), logging.MessageCount(len(messages)))

	msg, err := c.client.Messages.New(ctx, buildAnthropicParams(messages, opts))
	if err != nil {
		c.log.Error("messages API error", logging.Error(err))
		return "", mapAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(b.Text)
		}
	}
	if text.Len() == 0 && len(msg.Content) == 0 {
		return "", dasherr.LLMEmptyResponse(opts.Model)
	}

	c.log.Debug("messages response received",
		logging.Reason(string(msg.StopReason)),
		logging.InputTokens(int(msg.Usage.InputTokens)),
		logging.OutputTokens(int(msg.Usage.OutputTokens)),
	)
	return text.String(), nil
}

// Stream sends a message and streams text deltas
func (c *AnthropicClient) Stream(ctx context.Context, messages []Message, opts Options) <-chan StreamChunk {
	if c.apiKey == "" {
		return errorStream(dasherr.LLMMissingAPIKey(string(config.ProviderAnthropic), config.EnvAnthropicKey))
	}

	ch := make(chan StreamChunk, 100)
	go func() {
		defer close(ch)

		stream := c.client.Messages.NewStreaming(ctx, buildAnthropicParams(messages, opts))
		defer stream.Close()

		for stream.Next() {
			switch e := stream.Current().AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := e.Delta.AsAny().(anthropic.TextDelta); ok {
					ch <- StreamChunk{Type: ChunkText, Text: delta.Text}
				}
			case anthropic.MessageStopEvent:
				ch <- StreamChunk{Type: ChunkDone}
				return
			}
		}

		if err := stream.Err(); err != nil {
			c.log.Error("stream error", logging.Error(err))
			ch <- StreamChunk{Type: ChunkError, Error: mapAnthropicError(err)}
			return
		}
		ch <- StreamChunk{Type: ChunkDone}
	}()
	return ch
}

// buildAnthropicParams moves system messages into the system field; the
// Messages API only accepts user and assistant turns.
func buildAnthropicParams(messages []Message, opts Options) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var apiMessages []anthropic.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case RoleUser:
			apiMessages = append(apiMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		// Catalog ids are routing-API ids ("anthropic/claude-..."); the direct API wants the bare name.
		Model:       anthropic.Model(strings.TrimPrefix(opts.Model, "anthropic/")),
		MaxTokens:   int64(opts.MaxTokens),
		Messages:    apiMessages,
		System:      system,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if opts.TopP > 0 && opts.TopP < 1 {
		params.TopP = anthropic.Float(opts.TopP)
	}
	return params
}

func mapAnthropicError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return errorForStatus(apiErr.StatusCode, err)
	}
	return errorForStatus(0, err)
}
