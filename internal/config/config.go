package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/qaflow/internal/extract"
	"github.com/jackzampolin/qaflow/internal/job"
	"github.com/jackzampolin/qaflow/internal/providers"
)

// EnvPrefix prefixes environment overrides, e.g. QAFLOW_PIPELINE_SAMPLE_ROWS.
const EnvPrefix = "QAFLOW"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches ./config.yaml and then homeDir/config.yaml.
func NewManager(cfgFile, homeDir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
		logger:    logger,
	}

	if err := cm.initViper(cfgFile, homeDir); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile, homeDir string) error {
	if err := setDefaults(cm.v, DefaultConfig()); err != nil {
		return err
	}

	// Environment variables with QAFLOW_ prefix; nested keys use underscores.
	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("config")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		if homeDir != "" {
			cm.v.AddConfigPath(homeDir)
		}
	}

	// Try to read config file (not required)
	if err := cm.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults registers every leaf of the default config as its own key so
// that environment overrides reach nested settings.
func setDefaults(v *viper.Viper, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to decode defaults: %w", err)
	}
	flatten("", tree, v.SetDefault)
	return nil
}

func flatten(prefix string, node map[string]any, set func(string, any)) {
	for k, val := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch child := val.(type) {
		case map[any]any:
			m := make(map[string]any, len(child))
			for ck, cv := range child {
				m[fmt.Sprint(ck)] = cv
			}
			flatten(key, m, set)
		default:
			set(key, val)
		}
	}
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file in use, or "" when running on defaults.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			cm.logger.Warn("config reload failed", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		cm.logger.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToProviderConfigs converts the config to a format suitable for providers.Registry.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToProviderConfigs() map[string]providers.LLMProviderConfig {
	out := make(map[string]providers.LLMProviderConfig, len(c.LLMProviders))
	for name, llm := range c.LLMProviders {
		out[name] = providers.LLMProviderConfig{
			Type:       llm.Type,
			Model:      llm.Model,
			BaseURL:    llm.BaseURL,
			APIKey:     ResolveEnvVars(llm.APIKey),
			MaxRetries: llm.MaxRetries,
			Timeout:    time.Duration(llm.TimeoutSeconds) * time.Second,
			Enabled:    llm.Enabled,
		}
	}
	return out
}

// StaticSecrets returns the configured static secrets with ${ENV_VAR}
// references resolved. Secrets that resolve to "" are left out.
func (c *Config) StaticSecrets() map[string]string {
	out := make(map[string]string, len(c.Secrets.Static))
	for name, value := range c.Secrets.Static {
		if v := ResolveEnvVars(value); v != "" {
			out[name] = v
		}
	}
	return out
}

// JobConfig builds the pipeline handler configuration.
func (c *Config) JobConfig() job.Config {
	p := c.Pipeline
	var delim rune
	if p.Delimiter != "" {
		delim, _ = utf8.DecodeRuneInString(p.Delimiter)
		if p.Delimiter == `\t` {
			delim = '\t'
		}
	}
	return job.Config{
		Provider:      c.Defaults.LLMProvider,
		Model:         c.Defaults.Model,
		Temperature:   c.Defaults.Temperature,
		MaxTokens:     c.Defaults.MaxTokens,
		SecretName:    c.Secrets.Name,
		JobPrefix:     p.JobPrefix,
		OutputSuffix:  p.OutputSuffix,
		Retention:     time.Duration(p.RetentionHours) * time.Hour,
		SampleRows:    p.SampleRows,
		QuestionToken: p.QuestionToken,
		Delimiter:     delim,
		RequireRows:   p.RequireRows,
		Sheet:         p.Sheet,
		Extract: extract.Config{
			StructuredTimeout: time.Duration(p.StructuredTimeoutSeconds) * time.Second,
			FallbackTimeout:   time.Duration(p.FallbackTimeoutSeconds) * time.Second,
			FallbackAttempts:  p.FallbackAttempts,
			FallbackDelay:     time.Duration(p.FallbackDelayMillis) * time.Millisecond,
			FallbackSummary:   p.FallbackSummary,
			FallbackTopics:    p.FallbackTopics,
		},
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# qaflow configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export GEMINI_API_KEY=xxx OPENROUTER_API_KEY=xxx
# Any key can be overridden from the environment, e.g. QAFLOW_PIPELINE_SAMPLE_ROWS=5

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
