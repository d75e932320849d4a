package providers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMockClient(t *testing.T) {
	t.Run("text response", func(t *testing.T) {
		client := NewMockClient()
		client.ResponseText = "hello"

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success || result.Content != "hello" {
			t.Errorf("result = %+v", result)
		}
		if client.TextCount() != 1 || client.StructuredCount() != 0 {
			t.Errorf("counts text=%d structured=%d", client.TextCount(), client.StructuredCount())
		}
	})

	t.Run("structured response", func(t *testing.T) {
		client := NewMockClient()
		client.StructuredText = `{"count":1}`

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages:       []Message{{Role: "user", Content: "hi"}},
			ResponseFormat: &ResponseFormat{Type: "json_schema"},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if string(result.ParsedJSON) != `{"count":1}` {
			t.Errorf("ParsedJSON = %s", result.ParsedJSON)
		}
		if client.StructuredCount() != 1 {
			t.Errorf("StructuredCount() = %d, want 1", client.StructuredCount())
		}
	})

	t.Run("text failures then success", func(t *testing.T) {
		client := NewMockClient()
		client.TextErr = errors.New("boom")
		client.TextFailures = 1

		if _, err := client.Chat(context.Background(), &ChatRequest{}); err == nil {
			t.Fatal("expected first call to fail")
		}
		if _, err := client.Chat(context.Background(), &ChatRequest{}); err != nil {
			t.Fatalf("second call error = %v", err)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		client := NewMockClient()
		client.Latency = time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := client.Chat(ctx, &ChatRequest{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		if result.Success {
			t.Error("expected Success = false")
		}
	})

	t.Run("reset", func(t *testing.T) {
		client := NewMockClient()
		client.Chat(context.Background(), &ChatRequest{})
		client.Reset()
		if client.RequestCount() != 0 || len(client.Requests()) != 0 {
			t.Error("Reset() did not clear state")
		}
	})
}

func TestGenerator_GenerateStructured(t *testing.T) {
	schema := json.RawMessage(qaSchema)

	t.Run("valid output", func(t *testing.T) {
		client := NewMockClient()
		client.StructuredText = "```json\n{\"count\":2,\"level\":\"basic\"}\n```"
		gen := NewGenerator(client, GeneratorOptions{Model: "m"})

		out, err := gen.GenerateStructured(context.Background(), "prompt", schema)
		if err != nil {
			t.Fatalf("GenerateStructured() error = %v", err)
		}
		if string(out.JSON) != `{"count":2,"level":"basic"}` {
			t.Errorf("JSON = %s", out.JSON)
		}
		if out.Chat == nil || out.Chat.ModelUsed != "m" {
			t.Errorf("Chat = %+v", out.Chat)
		}
		reqs := client.Requests()
		if len(reqs) != 1 || reqs[0].ResponseFormat == nil || reqs[0].ResponseFormat.Type != "json_schema" {
			t.Errorf("unexpected request: %+v", reqs)
		}
	})

	t.Run("sanitizer runs before validation", func(t *testing.T) {
		client := NewMockClient()
		client.StructuredText = `{"count":2,"level":"  BASIC "}`
		gen := NewGenerator(client, GeneratorOptions{
			Sanitize: func(doc map[string]any) {
				doc["level"] = "basic"
			},
		})

		if _, err := gen.GenerateStructured(context.Background(), "prompt", schema); err != nil {
			t.Fatalf("GenerateStructured() error = %v", err)
		}
	})

	t.Run("schema mismatch", func(t *testing.T) {
		client := NewMockClient()
		client.StructuredText = `{"count":"two"}`
		gen := NewGenerator(client, GeneratorOptions{})

		out, err := gen.GenerateStructured(context.Background(), "prompt", schema)
		if !errors.Is(err, ErrSchemaValidation) {
			t.Fatalf("err = %v, want ErrSchemaValidation", err)
		}
		var se *SchemaError
		if !errors.As(err, &se) || se.Raw != `{"count":"two"}` {
			t.Errorf("SchemaError = %+v", se)
		}
		if out.Raw != `{"count":"two"}` {
			t.Errorf("Raw = %q", out.Raw)
		}
	})

	t.Run("unparseable output", func(t *testing.T) {
		client := NewMockClient()
		client.StructuredText = "not json"
		gen := NewGenerator(client, GeneratorOptions{})

		if _, err := gen.GenerateStructured(context.Background(), "prompt", schema); !errors.Is(err, ErrSchemaValidation) {
			t.Fatalf("err = %v, want ErrSchemaValidation", err)
		}
	})

	t.Run("provider error is not a schema error", func(t *testing.T) {
		client := NewMockClient()
		client.StructuredErr = errors.New("upstream down")
		gen := NewGenerator(client, GeneratorOptions{})

		_, err := gen.GenerateStructured(context.Background(), "prompt", schema)
		if err == nil || errors.Is(err, ErrSchemaValidation) {
			t.Fatalf("err = %v, want plain provider error", err)
		}
	})
}

func TestGenerator_GenerateText(t *testing.T) {
	client := NewMockClient()
	client.ResponseText = "free text"
	gen := NewGenerator(client, GeneratorOptions{Temperature: 0.2})

	result, err := gen.GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if result.Content != "free text" {
		t.Errorf("Content = %q", result.Content)
	}
	if reqs := client.Requests(); reqs[0].ResponseFormat != nil || reqs[0].Temperature != 0.2 {
		t.Errorf("unexpected request: %+v", reqs[0])
	}
}
