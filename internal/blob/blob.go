// Package blob reads and writes whole objects addressed by locators of the
// form scheme://namespace/key.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrInvalidLocator = errors.New("blob: invalid locator")
	ErrNotFound       = errors.New("blob: not found")
	ErrAccessDenied   = errors.New("blob: access denied")
	ErrWrite          = errors.New("blob: write failed")
)

// Store reads and writes whole objects.
type Store interface {
	Get(ctx context.Context, loc Locator) ([]byte, error)
	Put(ctx context.Context, loc Locator, data []byte, contentType string) error
}

// Locator addresses one object. Namespace is a bucket or top-level directory.
type Locator struct {
	Scheme    string
	Namespace string
	Key       string
}

// ParseLocator splits "scheme://namespace/key". All three parts are required.
func ParseLocator(s string) (Locator, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(s), "://")
	if !ok || scheme == "" {
		return Locator{}, fmt.Errorf("%w: %q: missing scheme", ErrInvalidLocator, s)
	}
	namespace, key, _ := strings.Cut(rest, "/")
	if namespace == "" {
		return Locator{}, fmt.Errorf("%w: %q: missing namespace", ErrInvalidLocator, s)
	}
	if key == "" {
		return Locator{}, fmt.Errorf("%w: %q: missing key", ErrInvalidLocator, s)
	}
	return Locator{Scheme: strings.ToLower(scheme), Namespace: namespace, Key: key}, nil
}

// String renders the locator back to scheme://namespace/key.
func (l Locator) String() string {
	return l.Scheme + "://" + l.Namespace + "/" + l.Key
}

// Base returns the final element of the key.
func (l Locator) Base() string {
	return path.Base(l.Key)
}
