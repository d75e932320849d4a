package blob

import (
	"context"
	"fmt"
	"sort"
)

// Mux routes requests to a Store by locator scheme.
type Mux struct {
	stores map[string]Store
}

// NewMux creates an empty mux.
func NewMux() *Mux {
	return &Mux{stores: make(map[string]Store)}
}

// Handle registers store for scheme.
func (m *Mux) Handle(scheme string, store Store) {
	m.stores[scheme] = store
}

// Schemes lists registered schemes, sorted.
func (m *Mux) Schemes() []string {
	out := make([]string, 0, len(m.stores))
	for s := range m.stores {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (m *Mux) store(loc Locator) (Store, error) {
	s, ok := m.stores[loc.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocator, loc.Scheme)
	}
	return s, nil
}

// Get reads from the store registered for loc's scheme.
func (m *Mux) Get(ctx context.Context, loc Locator) ([]byte, error) {
	s, err := m.store(loc)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loc)
}

// Put writes to the store registered for loc's scheme.
func (m *Mux) Put(ctx context.Context, loc Locator, data []byte, contentType string) error {
	s, err := m.store(loc)
	if err != nil {
		return err
	}
	return s.Put(ctx, loc, data, contentType)
}

var _ Store = (*Mux)(nil)
