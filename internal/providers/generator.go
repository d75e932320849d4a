package providers

import (
	"context"
	"encoding/json"
	"fmt"
)

// Sanitizer normalizes a parsed structured document before validation.
type Sanitizer func(doc map[string]any)

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Sanitize    Sanitizer
}

// StructuredResult is the outcome of a structured generation call.
type StructuredResult struct {
	JSON json.RawMessage // parsed, sanitized, validated document
	Raw  string          // raw model text
	Chat *ChatResult
}

// Generator exposes prompt-level structured and text generation on top of an
// LLMClient.
type Generator struct {
	client LLMClient
	opts   GeneratorOptions
}

// NewGenerator wraps client.
func NewGenerator(client LLMClient, opts GeneratorOptions) *Generator {
	return &Generator{client: client, opts: opts}
}

// Provider returns the underlying client name.
func (g *Generator) Provider() string {
	return g.client.Name()
}

// Model returns the configured model override, if any.
func (g *Generator) Model() string {
	return g.opts.Model
}

// GenerateStructured asks the model for JSON matching schema. Provider
// failures are returned as-is; unparseable or non-conforming output is
// returned as a *SchemaError. The returned result is non-nil whenever the
// client produced a ChatResult.
func (g *Generator) GenerateStructured(ctx context.Context, prompt string, schema json.RawMessage) (*StructuredResult, error) {
	chat, err := g.client.Chat(ctx, &ChatRequest{
		Messages:    []Message{{Role: "user", Content: prompt}},
		Model:       g.opts.Model,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
		ResponseFormat: &ResponseFormat{
			Type:       "json_schema",
			JSONSchema: schema,
		},
	})
	out := &StructuredResult{Chat: chat}
	if chat != nil {
		out.Raw = chat.Content
	}
	if err != nil {
		return out, err
	}

	parsed := chat.ParsedJSON
	if len(parsed) == 0 {
		parsed, err = ParseStructuredJSON(chat.Content)
		if err != nil {
			return out, &SchemaError{Raw: chat.Content, Cause: err}
		}
	}

	if g.opts.Sanitize != nil {
		var doc map[string]any
		if err := json.Unmarshal(parsed, &doc); err != nil {
			return out, &SchemaError{Raw: chat.Content, Cause: fmt.Errorf("expected a JSON object: %w", err)}
		}
		g.opts.Sanitize(doc)
		if parsed, err = json.Marshal(doc); err != nil {
			return out, &SchemaError{Raw: chat.Content, Cause: err}
		}
	}

	if err := ValidateStructuredJSON(schema, parsed); err != nil {
		return out, &SchemaError{Raw: chat.Content, Cause: err}
	}
	out.JSON = parsed
	return out, nil
}

// GenerateText asks the model for free-form text.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (*ChatResult, error) {
	return g.client.Chat(ctx, &ChatRequest{
		Messages:    []Message{{Role: "user", Content: prompt}},
		Model:       g.opts.Model,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
}
