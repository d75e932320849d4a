package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing. Structured requests (those with a
// ResponseFormat) and plain text requests are scripted independently.
type MockClient struct {
	// Configurable behavior
	Latency time.Duration

	// Structured requests
	StructuredText string
	StructuredErr  error

	// Text requests
	ResponseText string
	TextErr      error
	// TextFailures fails the first N text requests with TextErr (0 = always when TextErr is set).
	TextFailures int

	// State
	structuredCount atomic.Int64
	textCount       atomic.Int64

	mu       sync.Mutex
	requests []ChatRequest
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	structured := req.ResponseFormat != nil

	var count int64
	if structured {
		count = c.structuredCount.Add(1)
	} else {
		count = c.textCount.Add(1)
	}
	c.mu.Lock()
	c.requests = append(c.requests, *req)
	c.mu.Unlock()

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", c.RequestCount()),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return result.failed("context_cancelled", ctx.Err(), start)
		}
	}

	content := c.ResponseText
	if structured {
		if c.StructuredErr != nil {
			return result.failed("mock_failure", c.StructuredErr, start)
		}
		content = c.StructuredText
	} else if c.TextErr != nil && (c.TextFailures == 0 || int(count) <= c.TextFailures) {
		return result.failed("mock_failure", c.TextErr, start)
	}

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}

	result.Success = true
	result.Content = content
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(content) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens
	result.ExecutionTime = time.Since(start)

	if structured {
		if parsed, err := ParseStructuredJSON(content); err == nil {
			result.ParsedJSON = parsed
		}
	}
	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.structuredCount.Load() + c.textCount.Load()
}

// StructuredCount returns the number of structured requests made.
func (c *MockClient) StructuredCount() int64 {
	return c.structuredCount.Load()
}

// TextCount returns the number of plain text requests made.
func (c *MockClient) TextCount() int64 {
	return c.textCount.Load()
}

// Requests returns a copy of every request received.
func (c *MockClient) Requests() []ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatRequest(nil), c.requests...)
}

// Reset resets the request counters.
func (c *MockClient) Reset() {
	c.structuredCount.Store(0)
	c.textCount.Store(0)
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
}

var _ LLMClient = (*MockClient)(nil)
