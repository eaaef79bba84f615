package llm

import (
	"context"
	"sync"
)

// MockClient implements Completer for testing.
type MockClient struct {
	// Injectable behavior
	CompleteFunc func(ctx context.Context, messages []Message, opts Options) (string, error)
	StreamFunc   func(ctx context.Context, messages []Message, opts Options) <-chan StreamChunk

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records the arguments of one Complete or Stream invocation.
type MockCall struct {
	Messages []Message
	Options  Options
	Stream   bool
}

// NewMockClient creates a mock client that replies "mock response".
func NewMockClient() *MockClient {
	return &MockClient{}
}

// NewMockReply creates a mock client that always returns reply.
func NewMockReply(reply string) *MockClient {
	return &MockClient{
		CompleteFunc: func(context.Context, []Message, Options) (string, error) {
			return reply, nil
		},
	}
}

func (m *MockClient) record(messages []Message, opts Options, stream bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Messages: append([]Message(nil), messages...),
		Options:  opts,
		Stream:   stream,
	})
}

// Complete calls the injected CompleteFunc or returns a default response.
func (m *MockClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	m.record(messages, opts, false)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages, opts)
	}
	return "mock response", nil
}

// Stream calls the injected StreamFunc. Without one it splits the Complete
// result into two chunks.
func (m *MockClient) Stream(ctx context.Context, messages []Message, opts Options) <-chan StreamChunk {
	m.record(messages, opts, true)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, messages, opts)
	}

	text := "mock response"
	var err error
	if m.CompleteFunc != nil {
		text, err = m.CompleteFunc(ctx, messages, opts)
	}
	if err != nil {
		return errorStream(err)
	}

	ch := make(chan StreamChunk, 3)
	mid := len(text) / 2
	ch <- StreamChunk{Type: ChunkText, Text: text[:mid]}
	ch <- StreamChunk{Type: ChunkText, Text: text[mid:]}
	ch <- StreamChunk{Type: ChunkDone}
	close(ch)
	return ch
}

// Calls returns a copy of the recorded invocations.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many requests were made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
