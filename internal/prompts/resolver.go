package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// Resolver resolves prompts by key.
// Resolution order: override file > embedded default.
type Resolver struct {
	embedded  map[string]EmbeddedPrompt
	overrides map[string]string // key -> file path
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewResolver creates a new prompt resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		embedded:  make(map[string]EmbeddedPrompt),
		overrides: make(map[string]string),
		logger:    logger,
	}
}

// Register registers an embedded prompt.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}
	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// SetOverrides replaces the key -> file path override table.
func (r *Resolver) SetOverrides(overrides map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = make(map[string]string, len(overrides))
	for k, v := range overrides {
		if v != "" {
			r.overrides[k] = v
		}
	}
}

// Resolve returns the override text for key if one is configured, otherwise
// the embedded default. An unreadable override file is an error.
func (r *Resolver) Resolve(key string) (*ResolvedPrompt, error) {
	r.mu.RLock()
	path, hasOverride := r.overrides[key]
	embedded, hasEmbedded := r.embedded[key]
	r.mu.RUnlock()

	if hasOverride {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompt override %s: %w", key, err)
		}
		text := string(data)
		return &ResolvedPrompt{
			Key:        key,
			Text:       text,
			Variables:  ExtractVariables(text),
			IsOverride: true,
			Source:     path,
			Hash:       HashText(text),
		}, nil
	}

	if !hasEmbedded {
		return nil, fmt.Errorf("prompt not found: %s", key)
	}
	return &ResolvedPrompt{
		Key:       key,
		Text:      embedded.Text,
		Variables: embedded.Variables,
		Hash:      embedded.Hash,
	}, nil
}

// AllEmbedded returns all registered embedded prompts sorted by key.
func (r *Resolver) AllEmbedded() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}
