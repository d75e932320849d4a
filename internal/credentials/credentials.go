// Package credentials fetches named secrets. A secret is a JSON object; the
// generation provider key lives in its api_key field.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("credentials: secret not found")
	ErrAccessDenied      = errors.New("credentials: access denied")
	ErrParse             = errors.New("credentials: secret is not a JSON object")
	ErrMissingCredential = errors.New("credentials: api_key missing from secret")
)

// APIKeyField is the secret field holding the provider key.
const APIKeyField = "api_key"

// Secret is a decoded secret document.
type Secret map[string]any

// Provider fetches secrets by name.
type Provider interface {
	GetSecret(ctx context.Context, name string) (Secret, error)
}

// ParseSecret decodes a JSON object secret.
func ParseSecret(raw []byte) (Secret, error) {
	var s Secret
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return nil, ErrParse
	}
	return s, nil
}

// APIKey fetches the named secret and returns its non-empty api_key field.
func APIKey(ctx context.Context, p Provider, name string) (string, error) {
	secret, err := p.GetSecret(ctx, name)
	if err != nil {
		return "", err
	}
	key, _ := secret[APIKeyField].(string)
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingCredential, name)
	}
	return key, nil
}
