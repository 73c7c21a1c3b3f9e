package registry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

var (
	// ErrUnknownKind is returned when no constructor is registered for a kind.
	ErrUnknownKind = errors.New("unknown operation kind")
	// ErrDuplicateKind is returned when a kind name is registered twice.
	ErrDuplicateKind = errors.New("operation kind already registered")
)

// Constructor creates a new operation of one kind.
type Constructor func(id, transformID grammar.Identifier) grammar.Operation

// Entry describes a registered operation kind.
type Entry struct {
	Kind        string           `json:"kind"`
	Category    grammar.Category `json:"category"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	construct   Constructor
}

// Registry maps kind names (e.g. "add") to operation constructors.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Entry),
	}
}

// Register adds an operation kind. The constructor is invoked once with
// placeholder identifiers to capture the kind's name and description.
func (r *Registry) Register(kind string, ctor Constructor) error {
	if kind == "" {
		return fmt.Errorf("register: empty kind name")
	}
	if ctor == nil {
		return fmt.Errorf("register %q: nil constructor", kind)
	}

	sample := ctor(grammar.ID(kind), grammar.ID(kind))
	entry := Entry{
		Kind:        kind,
		Category:    sample.Category(),
		Name:        sample.Name(),
		Description: sample.Description(),
		construct:   ctor,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("register %q: %w", kind, ErrDuplicateKind)
	}
	r.kinds[kind] = entry
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind string, ctor Constructor) {
	if err := r.Register(kind, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the entry registered under kind.
func (r *Registry) Lookup(kind string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.kinds[kind]
	return e, ok
}

// New creates an operation of the given kind.
func (r *Registry) New(kind string, id, transformID grammar.Identifier) (grammar.Operation, error) {
	e, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	if id.IsZero() || transformID.IsZero() {
		return nil, fmt.Errorf("new %q: operation and transform identifiers are required", kind)
	}
	return e.construct(id, transformID), nil
}

// Kinds lists every registered entry sorted by kind name.
func (r *Registry) Kinds() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.kinds))
	for _, e := range r.kinds {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Kind, b.Kind) })
	return out
}

// ByCategory lists the entries of one category sorted by kind name.
func (r *Registry) ByCategory(c grammar.Category) []Entry {
	var out []Entry
	for _, e := range r.Kinds() {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}
