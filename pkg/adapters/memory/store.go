package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/ports"
)

// Store implements ports.TermStore in memory.
// Safe for concurrent use.
type Store struct {
	data     map[string]any
	mu       sync.RWMutex
	bindings ports.Bindings

	watchMu  sync.Mutex
	watchers []chan struct{}
}

var (
	_ ports.TermStore = (*Store)(nil)
	_ ports.Watchable = (*Store)(nil)
)

// NewStore creates a new in-memory store, optionally seeded with values.
func NewStore(seed map[string]any) *Store {
	data := make(map[string]any, len(seed))
	maps.Copy(data, seed)
	return &Store{data: data}
}

// Put stores the value.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	if key == "" {
		return fmt.Errorf("put: empty key")
	}
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	s.signal()
	return nil
}

// Get retrieves a value.
func (s *Store) Get(ctx context.Context, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ports.ErrTermNotFound)
	}
	return v, nil
}

// Delete removes a value.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	s.signal()
	return nil
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data)), nil
}

// Bind returns a term tracking key.
func (s *Store) Bind(ctx context.Context, id grammar.Identifier, key string) (*grammar.ValueTerm, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.bindings.Add(id, key, v), nil
}

// Release unbinds terms so Refresh no longer updates them.
func (s *Store) Release(terms ...grammar.Term) int {
	return s.bindings.Remove(terms...)
}

// Refresh copies current values into bound terms.
func (s *Store) Refresh(ctx context.Context) (int, error) {
	changed := 0
	for _, key := range s.bindings.Keys() {
		s.mu.RLock()
		v := s.data[key]
		s.mu.RUnlock()
		changed += s.bindings.Apply(key, v)
	}
	return changed, nil
}

// Watch signals after every Put or Delete. Signals coalesce while the
// receiver is busy.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	s.watchMu.Lock()
	s.watchers = append(s.watchers, ch)
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if i := slices.Index(s.watchers, ch); i >= 0 {
			s.watchers = slices.Delete(s.watchers, i, i+1)
		}
		close(ch)
	}()
	return ch, nil
}

func (s *Store) signal() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
