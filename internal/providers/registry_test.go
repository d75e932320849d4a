package providers

import (
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	configs := map[string]LLMProviderConfig{
		"gemini":   {Type: "openai", Model: "gemini-2.5-flash", Enabled: true},
		"router":   {Type: "openrouter", Enabled: true},
		"disabled": {Type: "openai", Enabled: false},
		"mock":     {Type: "mock", Enabled: true},
	}

	t.Run("list skips disabled", func(t *testing.T) {
		r := NewRegistry(configs, nil)
		got := r.List()
		if len(got) != 3 || got[0] != "gemini" || got[1] != "mock" || got[2] != "router" {
			t.Errorf("List() = %v", got)
		}
	})

	t.Run("client requires key", func(t *testing.T) {
		r := NewRegistry(configs, nil)
		if _, err := r.Client("gemini", ""); err == nil {
			t.Error("expected error without API key")
		}
	})

	t.Run("client cached per key", func(t *testing.T) {
		r := NewRegistry(configs, nil)
		a, err := r.Client("gemini", "key-1")
		if err != nil {
			t.Fatalf("Client() error = %v", err)
		}
		b, _ := r.Client("gemini", "key-1")
		if a != b {
			t.Error("expected cached client for same key")
		}
		c, _ := r.Client("gemini", "key-2")
		if a == c {
			t.Error("expected new client after key change")
		}
		if a.Name() != OpenAIName {
			t.Errorf("Name() = %q", a.Name())
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		r := NewRegistry(configs, nil)
		if _, err := r.Client("nope", "k"); err == nil {
			t.Error("expected error for unknown provider")
		}
		if _, err := r.Client("disabled", "k"); err == nil {
			t.Error("expected error for disabled provider")
		}
	})

	t.Run("reload drops removed providers", func(t *testing.T) {
		r := NewRegistry(configs, nil)
		if _, err := r.Client("router", "k"); err != nil {
			t.Fatalf("Client() error = %v", err)
		}
		r.Reload(map[string]LLMProviderConfig{"mock": {Type: "mock", Enabled: true}})
		if _, err := r.Client("router", "k"); err == nil {
			t.Error("expected error after reload removed provider")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		r := NewRegistry(configs, nil)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := r.Client("mock", ""); err != nil {
					t.Errorf("Client() error = %v", err)
				}
				r.List()
			}()
		}
		wg.Wait()
	})
}

func TestNewLLMClient_UnknownType(t *testing.T) {
	if _, err := NewLLMClient(LLMProviderConfig{Type: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
