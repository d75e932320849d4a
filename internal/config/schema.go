package config

import "github.com/jackzampolin/qaflow/internal/extract"

// Config holds qaflow configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Pipeline     PipelineCfg               `mapstructure:"pipeline" yaml:"pipeline"`
	Blob         BlobCfg                   `mapstructure:"blob" yaml:"blob"`
	Secrets      SecretsCfg                `mapstructure:"secrets" yaml:"secrets"`
	Prompts      PromptsCfg                `mapstructure:"prompts" yaml:"prompts"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`         // "gemini", "openai", "openrouter", "mock"
	Model          string `mapstructure:"model" yaml:"model"`       // Model name
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"` // Optional endpoint override
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`   // API key (supports ${ENV_VAR} syntax)
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg selects the provider and sampling settings used by jobs.
type DefaultsCfg struct {
	LLMProvider string  `mapstructure:"llm_provider" yaml:"llm_provider"`
	Model       string  `mapstructure:"model" yaml:"model"` // Overrides the provider model when set
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// PipelineCfg controls normalization, extraction and artifact placement.
type PipelineCfg struct {
	JobPrefix      string `mapstructure:"job_prefix" yaml:"job_prefix"`
	OutputSuffix   string `mapstructure:"output_suffix" yaml:"output_suffix"`
	RetentionHours int    `mapstructure:"retention_hours" yaml:"retention_hours"`
	SampleRows     int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	QuestionToken string `mapstructure:"question_token" yaml:"question_token"`
	Delimiter     string `mapstructure:"delimiter" yaml:"delimiter"` // Single character; empty means ","
	RequireRows   bool   `mapstructure:"require_rows" yaml:"require_rows"`
	Sheet         string `mapstructure:"sheet" yaml:"sheet"` // Workbook sheet; empty means the first

	StructuredTimeoutSeconds int      `mapstructure:"structured_timeout_seconds" yaml:"structured_timeout_seconds"`
	FallbackTimeoutSeconds   int      `mapstructure:"fallback_timeout_seconds" yaml:"fallback_timeout_seconds"`
	FallbackAttempts         int      `mapstructure:"fallback_attempts" yaml:"fallback_attempts"`
	FallbackDelayMillis      int      `mapstructure:"fallback_delay_ms" yaml:"fallback_delay_ms"`
	FallbackSummary          string   `mapstructure:"fallback_summary" yaml:"fallback_summary"`
	FallbackTopics           []string `mapstructure:"fallback_topics" yaml:"fallback_topics"`
}

// BlobCfg configures the stores behind locator schemes.
type BlobCfg struct {
	// FileRoot backs file:// locators. Empty means {home}/data.
	FileRoot string `mapstructure:"file_root" yaml:"file_root"`
	// S3Enabled registers the s3:// scheme using the default AWS credential chain.
	S3Enabled bool   `mapstructure:"s3_enabled" yaml:"s3_enabled"`
	S3Region  string `mapstructure:"s3_region" yaml:"s3_region"`
}

// SecretsCfg selects where the provider credential comes from.
type SecretsCfg struct {
	// Name of the secret holding api_key. Empty uses the provider api_key.
	Name string `mapstructure:"name" yaml:"name"`
	// Source is one of "static", "env", "file" or "aws".
	Source    string            `mapstructure:"source" yaml:"source"`
	EnvPrefix string            `mapstructure:"env_prefix" yaml:"env_prefix"`
	Dir       string            `mapstructure:"dir" yaml:"dir"` // For "file"; empty means {home}/secrets
	Region    string            `mapstructure:"region" yaml:"region"`
	Static    map[string]string `mapstructure:"static" yaml:"static"` // name -> api_key (supports ${ENV_VAR})
}

// PromptsCfg maps prompt keys to override template files.
type PromptsCfg struct {
	Overrides map[string]string `mapstructure:"overrides" yaml:"overrides"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// Secret sources.
const (
	SecretSourceStatic = "static"
	SecretSourceEnv    = "env"
	SecretSourceFile   = "file"
	SecretSourceAWS    = "aws"
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"gemini": {
				Type:           "gemini",
				Model:          "gemini-2.5-flash",
				TimeoutSeconds: 120,
				MaxRetries:     2,
				Enabled:        true,
			},
			"openrouter": {
				Type:           "openrouter",
				Model:          "google/gemini-2.5-flash",
				APIKey:         "${OPENROUTER_API_KEY}",
				TimeoutSeconds: 120,
				MaxRetries:     3,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "gemini",
			Temperature: 0.2,
			MaxTokens:   8192,
		},
		Pipeline: PipelineCfg{
			JobPrefix:                "gemini-job",
			OutputSuffix:             "-processed",
			RetentionHours:           24,
			SampleRows:               3,
			QuestionToken:            "pergunta",
			StructuredTimeoutSeconds: 120,
			FallbackTimeoutSeconds:   60,
			FallbackAttempts:         1,
			FallbackDelayMillis:      500,
			FallbackSummary:          extract.DefaultFallbackSummary,
			FallbackTopics:           append([]string{}, extract.DefaultFallbackTopics...),
		},
		Secrets: SecretsCfg{
			Name:      "gemini-api-key-dev-2",
			Source:    SecretSourceStatic,
			EnvPrefix: "QAFLOW_SECRET_",
			Static: map[string]string{
				"gemini-api-key-dev-2": "${GEMINI_API_KEY}",
			},
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
