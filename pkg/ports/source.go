package ports

import (
	"context"
	"errors"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

// ErrTermNotFound is returned when a key holds no value.
var ErrTermNotFound = errors.New("term value not found")

// TermSource binds definition terms to externally held values.
type TermSource interface {
	// Bind returns a term identified by id whose value is read from key.
	// The term stays bound: later refreshes update its value.
	// Returns ErrTermNotFound if the key holds no value.
	Bind(ctx context.Context, id grammar.Identifier, key string) (*grammar.ValueTerm, error)

	// Release stops refreshing terms returned by Bind. Terms the source did
	// not bind are ignored. Returns how many terms were released.
	Release(terms ...grammar.Term) int
}

// ValueStore reads and writes raw term values.
type ValueStore interface {
	// Put stores value under key. Bound terms see it after the next refresh.
	Put(ctx context.Context, key string, value any) error

	// Get returns the value under key or ErrTermNotFound.
	Get(ctx context.Context, key string) (any, error)

	// Delete removes the value under key.
	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// Refresher pulls the current backend values into bound terms.
type Refresher interface {
	// Refresh updates every bound term whose value changed and returns how
	// many terms were updated. Terms whose key disappeared become nil.
	Refresh(ctx context.Context) (int, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled when values change.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// TermStore is the full contract of a term backend.
type TermStore interface {
	TermSource
	ValueStore
	Refresher
}
