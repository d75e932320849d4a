package llmcall

import (
	"log/slog"
	"sync"

	"github.com/jackzampolin/qaflow/internal/providers"
)

// Recorder captures LLM calls.
type Recorder interface {
	Record(result *providers.ChatResult, opts RecordOptions)
}

// Collector keeps calls in memory for the lifetime of one job.
type Collector struct {
	mu    sync.Mutex
	calls []Call
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends the call.
func (c *Collector) Record(result *providers.ChatResult, opts RecordOptions) {
	call := FromChatResult(result, opts)
	if call == nil {
		return
	}
	c.mu.Lock()
	c.calls = append(c.calls, *call)
	c.mu.Unlock()
}

// Calls returns a copy of the recorded calls in order.
func (c *Collector) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// LogRecorder writes each call as a structured log line.
type LogRecorder struct {
	Logger *slog.Logger
}

// Record logs the call.
func (r LogRecorder) Record(result *providers.ChatResult, opts RecordOptions) {
	call := FromChatResult(result, opts)
	if call == nil {
		return
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"job_id", call.JobID,
		"request_id", call.RequestID,
		"mode", call.Mode,
		"prompt_key", call.PromptKey,
		"provider", call.Provider,
		"model", call.Model,
		"latency_ms", call.LatencyMs,
		"input_tokens", call.InputTokens,
		"output_tokens", call.OutputTokens,
	}
	if call.Success {
		logger.Info("llm call", attrs...)
		return
	}
	logger.Warn("llm call failed", append(attrs, "error", call.Error)...)
}

// Multi fans a call out to several recorders.
type Multi []Recorder

// Record forwards to every non-nil recorder.
func (m Multi) Record(result *providers.ChatResult, opts RecordOptions) {
	for _, r := range m {
		if r != nil {
			r.Record(result, opts)
		}
	}
}
