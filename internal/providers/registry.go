package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// LLMProviderConfig describes one configured provider. APIKey may be empty
// when the key is resolved per invocation from a credential provider.
type LLMProviderConfig struct {
	Type       string // "openai", "openrouter", "mock"
	Model      string
	BaseURL    string
	APIKey     string
	MaxRetries int
	Timeout    time.Duration
	Enabled    bool
}

// Registry holds provider configuration and the clients built from it.
// Clients are rebuilt when their configuration or API key changes.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]LLMProviderConfig
	clients map[string]registered
	logger  *slog.Logger
}

type registered struct {
	client LLMClient
	cfg    LLMProviderConfig
}

// NewRegistry creates a registry from provider configs. Disabled providers are ignored.
func NewRegistry(configs map[string]LLMProviderConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		clients: make(map[string]registered),
		logger:  logger,
	}
	r.Reload(configs)
	return r
}

// Reload swaps in new provider configuration. Cached clients whose provider
// disappeared or changed are dropped.
func (r *Registry) Reload(configs map[string]LLMProviderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]LLMProviderConfig, len(configs))
	for name, cfg := range configs {
		if cfg.Enabled {
			next[name] = cfg
		}
	}
	for name, reg := range r.clients {
		cfg, ok := next[name]
		if !ok || cfg.Type != reg.cfg.Type || cfg.Model != reg.cfg.Model || cfg.BaseURL != reg.cfg.BaseURL {
			delete(r.clients, name)
			r.logger.Info("unregistered LLM client", "name", name)
		}
	}
	r.configs = next
}

// Client returns a client for the named provider using apiKey, or the
// configured key when apiKey is empty.
func (r *Registry) Client(name, apiKey string) (LLMClient, error) {
	r.mu.RLock()
	cfg, ok := r.configs[name]
	reg, cached := r.clients[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("LLM provider not configured: %s", name)
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if cached && reg.cfg == cfg {
		return reg.client, nil
	}

	client, err := NewLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.clients[name] = registered{client: client, cfg: cfg}
	r.mu.Unlock()
	r.logger.Info("registered LLM client", "name", name, "type", cfg.Type, "model", cfg.Model)
	return client, nil
}

// Config returns the configuration of a provider.
func (r *Registry) Config(name string) (LLMProviderConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[name]
	return cfg, ok
}

// List returns the enabled provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewLLMClient creates an LLM client based on provider type.
func NewLLMClient(cfg LLMProviderConfig) (LLMClient, error) {
	switch cfg.Type {
	case OpenAIName, "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", cfg.Type)
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			MaxRetries:   cfg.MaxRetries,
			Timeout:      cfg.Timeout,
		}), nil
	case OpenRouterName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", cfg.Type)
		}
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			MaxRetries:   cfg.MaxRetries,
			Timeout:      cfg.Timeout,
		}), nil
	case MockClientName:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider type: %q", cfg.Type)
	}
}
