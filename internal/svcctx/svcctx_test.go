package svcctx

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/qaflow/internal/config"
	"github.com/jackzampolin/qaflow/internal/credentials"
	"github.com/jackzampolin/qaflow/internal/home"
	"github.com/jackzampolin/qaflow/internal/job"
	"github.com/jackzampolin/qaflow/internal/testutil"
)

func testConfig() *config.Config {
	return testutil.MockConfig()
}

func TestBuild_RunsJobAgainstLocalFiles(t *testing.T) {
	h := testutil.NewHome(t)
	src := testutil.WriteInput(t, h, "uploads/q.csv", "pergunta\nWhat is X?\n")

	s, err := Build(context.Background(), testConfig(), h, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ctx := WithServices(context.Background(), s)
	env := HandlerFrom(ctx).Handle(ctx, job.Event{SourceURI: src})
	if !env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	// The mock provider returns no structured output, so the run degrades.
	if !env.Result.FallbackUsed {
		t.Error("expected fallback result from mock provider")
	}

	out := filepath.Join(h.DataPath(), "uploads-processed", filepath.FromSlash(env.Metadata.OutputKey))
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if !json.Valid(data) {
		t.Error("artifact is not valid JSON")
	}
}

func TestReload_SwapsHandler(t *testing.T) {
	h, _ := home.New(t.TempDir())
	s, err := Build(context.Background(), testConfig(), h, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	before := s.Handler()

	cfg := testConfig()
	cfg.Prompts.Overrides = map[string]string{"extract.analysis": "custom.tmpl"}
	if err := s.Reload(context.Background(), cfg); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if s.Handler() == before {
		t.Error("expected a new handler after reload")
	}

	// Relative overrides resolve under the home prompts directory.
	if err := os.MkdirAll(h.PromptsPath(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(h.PromptsPath(), "custom.tmpl"), []byte("custom {{.QuestionsJSON}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := s.Prompts.Resolve("extract.analysis")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !p.IsOverride {
		t.Errorf("resolved = %+v", p)
	}

	bad := testConfig()
	bad.Secrets.Source = "vault"
	if err := s.Reload(context.Background(), bad); err == nil {
		t.Error("expected error for unknown secrets source")
	}
}

func TestNewCredentialProvider(t *testing.T) {
	t.Setenv("TEST_QAFLOW_KEY", "k")
	cfg := testConfig()
	cfg.Secrets = config.SecretsCfg{Name: "s", Static: map[string]string{"s": "${TEST_QAFLOW_KEY}"}}

	p, err := NewCredentialProvider(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewCredentialProvider() error = %v", err)
	}
	if key, err := credentials.APIKey(context.Background(), p, "s"); err != nil || key != "k" {
		t.Errorf("APIKey() = %q, %v", key, err)
	}

	cfg.Secrets.Source = config.SecretSourceFile
	p, err = NewCredentialProvider(context.Background(), cfg, &home.Dir{})
	if err != nil {
		t.Fatalf("NewCredentialProvider(file) error = %v", err)
	}
	if _, ok := p.(credentials.FileProvider); !ok {
		t.Errorf("provider = %T, want FileProvider", p)
	}
}

func TestServicesFrom_Empty(t *testing.T) {
	ctx := context.Background()
	if ServicesFrom(ctx) != nil || HandlerFrom(ctx) != nil || RegistryFrom(ctx) != nil || LoggerFrom(ctx) != nil || PromptsFrom(ctx) != nil {
		t.Error("expected nil services from empty context")
	}
}
