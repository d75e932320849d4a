package blob

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Object is a stored blob with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	// PutErr, when set, fails every Put.
	PutErr error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string]Object)}
}

// Get returns a copy of the object at loc.
func (s *MemStore) Get(ctx context.Context, loc Locator) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[loc.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	return append([]byte(nil), obj.Data...), nil
}

// Put stores a copy of data at loc.
func (s *MemStore) Put(ctx context.Context, loc Locator, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.PutErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, loc, s.PutErr)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[loc.String()] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// Object returns the stored object at the locator string.
func (s *MemStore) Object(loc string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[loc]
	return obj, ok
}

// Keys lists stored locators, sorted.
func (s *MemStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ Store = (*MemStore)(nil)
