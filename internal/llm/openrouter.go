package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterClient talks to an OpenAI-compatible chat-completion endpoint.
type OpenRouterClient struct {
	client *openai.Client
	apiKey string
	log    *logging.Logger
}

// NewOpenRouterClient creates a client for the routing API described by cfg.
func NewOpenRouterClient(cfg config.LLMConfig, log *logging.Logger) *OpenRouterClient {
	ocfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		ocfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	headers := map[string]string{}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}
	if cfg.AppName != "" {
		headers["X-Title"] = cfg.AppName
	}
	ocfg.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}

	return &OpenRouterClient{
		client: openai.NewClientWithConfig(ocfg),
		apiKey: cfg.APIKey,
		log:    logging.Or(log),
	}
}

// Complete sends the conversation and returns the first choice's content.
func (c *OpenRouterClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", dasherr.LLMMissingAPIKey(string(config.ProviderOpenRouter), config.EnvOpenRouterKey)
	}

	c.log.Debug("sending completion request",
		logging.Model(opts.Model),
		logging.MessageCount(len(messages)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(messages, opts, false))
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", dasherr.LLMEmptyResponse(opts.Model)
	}

	c.log.Debug("completion received",
		logging.InputTokens(resp.Usage.PromptTokens),
		logging.OutputTokens(resp.Usage.CompletionTokens),
		logging.Reason(string(resp.Choices[0].FinishReason)),
	)
	return resp.Choices[0].Message.Content, nil
}

// Stream sends the conversation with stream=true and forwards content deltas.
func (c *OpenRouterClient) Stream(ctx context.Context, messages []Message, opts Options) <-chan StreamChunk {
	if c.apiKey == "" {
		return errorStream(dasherr.LLMMissingAPIKey(string(config.ProviderOpenRouter), config.EnvOpenRouterKey))
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(messages, opts, true))
	if err != nil {
		return errorStream(mapOpenAIError(err))
	}

	ch := make(chan StreamChunk, 100)
	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				ch <- StreamChunk{Type: ChunkDone}
				return
			}
			if err != nil {
				c.log.Error("stream error", logging.Error(err))
				ch <- StreamChunk{Type: ChunkError, Error: mapOpenAIError(err)}
				return
			}
			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case ch <- StreamChunk{Type: ChunkText, Text: choice.Delta.Content}:
				case <-ctx.Done():
					ch <- StreamChunk{Type: ChunkError, Error: ctx.Err()}
					return
				}
			}
		}
	}()
	return ch
}

func (c *OpenRouterClient) buildRequest(messages []Message, opts Options, stream bool) openai.ChatCompletionRequest {
	apiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		apiMessages = append(apiMessages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    apiMessages,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
		TopP:        float32(opts.TopP),
		Stream:      stream,
	}
}

// mapOpenAIError converts SDK errors into DashErrors by HTTP status.
func mapOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return errorForStatus(status, err)
}

// errorForStatus classifies a failed completion call by its HTTP status.
func errorForStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return dasherr.LLMRateLimited(err)
	case status >= 500:
		return dasherr.LLMUnavailable(err)
	case status >= 400:
		return dasherr.LLMRejected(status, err)
	default:
		return dasherr.LLMRequestFailed(err)
	}
}

// headerTransport adds fixed attribution headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
