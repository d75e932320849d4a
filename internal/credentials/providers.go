package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// StaticProvider serves secrets from memory, e.g. from config.
type StaticProvider map[string]Secret

// GetSecret returns the named secret.
func (p StaticProvider) GetSecret(ctx context.Context, name string) (Secret, error) {
	s, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// EnvProvider reads secrets from environment variables. The variable name is
// Prefix plus the secret name upper-cased with non-alphanumerics replaced by
// underscores, so "gemini-api-key-dev-2" becomes QAFLOW_SECRET_GEMINI_API_KEY_DEV_2.
type EnvProvider struct {
	Prefix string
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// EnvName returns the variable consulted for a secret name.
func (p EnvProvider) EnvName(name string) string {
	var b strings.Builder
	b.WriteString(p.Prefix)
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// GetSecret reads and decodes the variable for name.
func (p EnvProvider) GetSecret(ctx context.Context, name string) (Secret, error) {
	lookup := p.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(p.EnvName(name))
	if !ok || strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, name, p.EnvName(name))
	}
	return ParseSecret([]byte(v))
}

// FileProvider reads secrets from Dir/<name>.json.
type FileProvider struct {
	Dir string
}

// GetSecret reads and decodes the file for name.
func (p FileProvider) GetSecret(ctx context.Context, name string) (Secret, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid secret name %q", ErrNotFound, name)
	}
	data, err := os.ReadFile(filepath.Join(p.Dir, name+".json"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, name)
	case err != nil:
		return nil, fmt.Errorf("read secret %s: %w", name, err)
	}
	return ParseSecret(data)
}

var (
	_ Provider = StaticProvider(nil)
	_ Provider = EnvProvider{}
	_ Provider = FileProvider{}
)
