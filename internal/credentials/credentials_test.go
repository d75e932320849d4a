package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

func TestAPIKey(t *testing.T) {
	ctx := context.Background()
	p := StaticProvider{
		"ok":      {"api_key": " secret "},
		"empty":   {"api_key": ""},
		"missing": {"other": "x"},
		"wrong":   {"api_key": 42},
	}

	key, err := APIKey(ctx, p, "ok")
	if err != nil || key != "secret" {
		t.Fatalf("APIKey() = %q, %v", key, err)
	}
	for _, name := range []string{"empty", "missing", "wrong"} {
		if _, err := APIKey(ctx, p, name); !errors.Is(err, ErrMissingCredential) {
			t.Errorf("APIKey(%s) err = %v, want ErrMissingCredential", name, err)
		}
	}
	if _, err := APIKey(ctx, p, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("APIKey(nope) err = %v, want ErrNotFound", err)
	}
}

func TestEnvProvider(t *testing.T) {
	env := map[string]string{
		"QAFLOW_SECRET_GEMINI_API_KEY_DEV_2": `{"api_key":"abc"}`,
		"QAFLOW_SECRET_BROKEN":               `not json`,
	}
	p := EnvProvider{
		Prefix: "QAFLOW_SECRET_",
		Lookup: func(k string) (string, bool) { v, ok := env[k]; return v, ok },
	}

	if got := p.EnvName("gemini-api-key-dev-2"); got != "QAFLOW_SECRET_GEMINI_API_KEY_DEV_2" {
		t.Errorf("EnvName() = %q", got)
	}
	key, err := APIKey(context.Background(), p, "gemini-api-key-dev-2")
	if err != nil || key != "abc" {
		t.Fatalf("APIKey() = %q, %v", key, err)
	}
	if _, err := p.GetSecret(context.Background(), "broken"); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
	if _, err := p.GetSecret(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gemini.json"), []byte(`{"api_key":"from-file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	p := FileProvider{Dir: dir}

	key, err := APIKey(context.Background(), p, "gemini")
	if err != nil || key != "from-file" {
		t.Fatalf("APIKey() = %q, %v", key, err)
	}
	if _, err := p.GetSecret(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := p.GetSecret(context.Background(), "../etc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for path-like name", err)
	}
}

type fakeSecretsManager struct {
	value *string
	err   error
}

func (f fakeSecretsManager) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{Name: in.SecretId, SecretString: f.value}, nil
}

func TestSecretsManagerProvider(t *testing.T) {
	ctx := context.Background()

	p := NewSecretsManagerProvider(fakeSecretsManager{value: aws.String(`{"api_key":"sm"}`)})
	if key, err := APIKey(ctx, p, "gemini-api-key-dev-2"); err != nil || key != "sm" {
		t.Fatalf("APIKey() = %q, %v", key, err)
	}

	tests := []struct {
		name string
		fake fakeSecretsManager
		want error
	}{
		{name: "not found", fake: fakeSecretsManager{err: &types.ResourceNotFoundException{}}, want: ErrNotFound},
		{name: "access denied", fake: fakeSecretsManager{err: &smithy.GenericAPIError{Code: "AccessDeniedException"}}, want: ErrAccessDenied},
		{name: "binary secret", fake: fakeSecretsManager{}, want: ErrParse},
		{name: "invalid json", fake: fakeSecretsManager{value: aws.String("[1,2]")}, want: ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSecretsManagerProvider(tt.fake).GetSecret(ctx, "s")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
