// Package svcctx builds the long-lived services from configuration and
// carries them through request contexts. It is separate from server to avoid
// import cycles with endpoints.
package svcctx

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/jackzampolin/qaflow/internal/blob"
	"github.com/jackzampolin/qaflow/internal/config"
	"github.com/jackzampolin/qaflow/internal/credentials"
	"github.com/jackzampolin/qaflow/internal/extract"
	"github.com/jackzampolin/qaflow/internal/home"
	"github.com/jackzampolin/qaflow/internal/job"
	"github.com/jackzampolin/qaflow/internal/llmcall"
	"github.com/jackzampolin/qaflow/internal/prompts"
	"github.com/jackzampolin/qaflow/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry    *providers.Registry
	Prompts     *prompts.Resolver
	Blob        blob.Store
	Credentials credentials.Provider
	Home        *home.Dir
	Logger      *slog.Logger

	handler atomic.Pointer[job.Handler]
}

// Build wires services from cfg.
func Build(ctx context.Context, cfg *config.Config, h *home.Dir, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := NewBlobStore(ctx, cfg.Blob, h)
	if err != nil {
		return nil, err
	}
	creds, err := NewCredentialProvider(ctx, cfg, h)
	if err != nil {
		return nil, err
	}

	resolver := prompts.NewResolver(logger)
	extract.RegisterPrompts(resolver)

	s := &Services{
		Registry:    providers.NewRegistry(cfg.ToProviderConfigs(), logger),
		Prompts:     resolver,
		Blob:        store,
		Credentials: creds,
		Home:        h,
		Logger:      logger,
	}
	s.Prompts.SetOverrides(promptOverrides(cfg.Prompts.Overrides, h))
	s.handler.Store(s.newHandler(cfg))
	return s, nil
}

// Reload applies a new configuration. Provider clients and prompt overrides
// are refreshed in place and the job handler is rebuilt. Blob stores are
// kept; changing them requires a restart.
func (s *Services) Reload(ctx context.Context, cfg *config.Config) error {
	s.Registry.Reload(cfg.ToProviderConfigs())
	s.Prompts.SetOverrides(promptOverrides(cfg.Prompts.Overrides, s.Home))

	creds, err := NewCredentialProvider(ctx, cfg, s.Home)
	if err != nil {
		s.Logger.Warn("keeping previous credential provider", "error", err)
	} else {
		s.Credentials = creds
	}
	s.handler.Store(s.newHandler(cfg))
	s.Logger.Info("services reloaded", "provider", cfg.Defaults.LLMProvider)
	return err
}

// Handler returns the current job handler.
func (s *Services) Handler() *job.Handler {
	return s.handler.Load()
}

func (s *Services) newHandler(cfg *config.Config) *job.Handler {
	return job.New(cfg.JobConfig(), job.Deps{
		Blob:        s.Blob,
		Credentials: s.Credentials,
		Clients:     s.Registry,
		Prompts:     s.Prompts,
		Recorder:    llmcall.LogRecorder{Logger: s.Logger},
		Logger:      s.Logger,
	})
}

// NewBlobStore routes file:// to the local data directory and, when
// enabled, s3:// to S3.
func NewBlobStore(ctx context.Context, cfg config.BlobCfg, h *home.Dir) (blob.Store, error) {
	mux := blob.NewMux()
	root := cfg.FileRoot
	if root == "" && h != nil {
		root = h.DataPath()
	}
	if root != "" {
		mux.Handle(blob.SchemeFile, blob.NewFSStore(root))
	}
	if cfg.S3Enabled {
		s3Store, err := blob.NewS3StoreFromEnv(ctx, cfg.S3Region)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		mux.Handle(blob.SchemeS3, s3Store)
	}
	return mux, nil
}

// NewCredentialProvider builds the provider selected by secrets.source.
func NewCredentialProvider(ctx context.Context, cfg *config.Config, h *home.Dir) (credentials.Provider, error) {
	sc := cfg.Secrets
	switch sc.Source {
	case "", config.SecretSourceStatic:
		p := credentials.StaticProvider{}
		for name, key := range cfg.StaticSecrets() {
			p[name] = credentials.Secret{credentials.APIKeyField: key}
		}
		return p, nil
	case config.SecretSourceEnv:
		return credentials.EnvProvider{Prefix: sc.EnvPrefix}, nil
	case config.SecretSourceFile:
		dir := sc.Dir
		if dir == "" && h != nil {
			dir = h.SecretsPath()
		}
		return credentials.FileProvider{Dir: dir}, nil
	case config.SecretSourceAWS:
		return credentials.NewSecretsManagerProviderFromEnv(ctx, sc.Region)
	default:
		return nil, fmt.Errorf("unknown secrets source %q", sc.Source)
	}
}

// promptOverrides resolves relative override paths against the home prompts
// directory.
func promptOverrides(overrides map[string]string, h *home.Dir) map[string]string {
	out := make(map[string]string, len(overrides))
	for key, path := range overrides {
		if !filepath.IsAbs(path) && h != nil {
			path = filepath.Join(h.PromptsPath(), path)
		}
		out[key] = path
	}
	return out
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// HandlerFrom extracts the current job handler from context.
func HandlerFrom(ctx context.Context) *job.Handler {
	if s := ServicesFrom(ctx); s != nil {
		return s.Handler()
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// PromptsFrom extracts the prompt resolver from context.
func PromptsFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Prompts
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
