// Package llmcall records generation calls for traceability. Every call is
// captured with the prompt that produced it and its token usage.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/qaflow/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id,omitempty"` // Provider-side request id

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	JobID string `json:"job_id,omitempty"`
	Mode  string `json:"mode,omitempty"` // "structured" or "fallback"

	// Prompt traceability
	PromptKey  string `json:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty"`

	// Model info
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`

	// Token usage
	InputTokens   int `json:"input_tokens"`
	OutputTokens  int `json:"output_tokens"`
	ResponseChars int `json:"response_chars"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	JobID string
	Mode  string

	PromptKey  string
	PromptHash string

	// Pointer to distinguish "not set" from "set to 0"
	Temperature *float64

	// Err overrides the result's error message, e.g. a local validation failure.
	Err error
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:            uuid.New().String(),
		RequestID:     result.RequestID,
		Timestamp:     time.Now().UTC(),
		LatencyMs:     int(result.ExecutionTime.Milliseconds()),
		JobID:         opts.JobID,
		Mode:          opts.Mode,
		PromptKey:     opts.PromptKey,
		PromptHash:    opts.PromptHash,
		Provider:      result.Provider,
		Model:         result.ModelUsed,
		Temperature:   opts.Temperature,
		InputTokens:   result.PromptTokens,
		OutputTokens:  result.CompletionTokens,
		ResponseChars: len(result.Content),
		Success:       result.Success,
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}
	if opts.Err != nil {
		call.Success = false
		call.Error = opts.Err.Error()
	}
	return call
}
