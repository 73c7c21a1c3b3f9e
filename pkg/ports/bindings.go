package ports

import (
	"reflect"
	"slices"
	"sync"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

// Bindings tracks the terms bound to each backend key. Adapters embed it to
// implement Bind and Refresh. Safe for concurrent use.
type Bindings struct {
	mu    sync.Mutex
	terms map[string][]*grammar.ValueTerm
}

// Add creates a term for key holding the initial value.
func (b *Bindings) Add(id grammar.Identifier, key string, value any) *grammar.ValueTerm {
	term := grammar.NewTerm(id, value)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.terms == nil {
		b.terms = make(map[string][]*grammar.ValueTerm)
	}
	b.terms[key] = append(b.terms[key], term)
	return term
}

// Remove unbinds the given terms and drops keys left without terms. Terms
// not created by Add are ignored.
func (b *Bindings) Remove(terms ...grammar.Term) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for key, bound := range b.terms {
		kept := slices.DeleteFunc(bound, func(vt *grammar.ValueTerm) bool {
			for _, t := range terms {
				if other, ok := t.(*grammar.ValueTerm); ok && other == vt {
					removed++
					return true
				}
			}
			return false
		})
		if len(kept) == 0 {
			delete(b.terms, key)
		} else {
			b.terms[key] = kept
		}
	}
	return removed
}

// Len returns the number of bound terms.
func (b *Bindings) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, bound := range b.terms {
		n += len(bound)
	}
	return n
}

// Keys lists the bound keys in lexical order.
func (b *Bindings) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.terms))
	for k := range b.terms {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Apply sets value on every term bound to key whose value differs and returns
// how many terms changed. Subscribers run after the lock is released.
func (b *Bindings) Apply(key string, value any) int {
	b.mu.Lock()
	var stale []*grammar.ValueTerm
	for _, term := range b.terms[key] {
		if !reflect.DeepEqual(term.Value(), value) {
			stale = append(stale, term)
		}
	}
	b.mu.Unlock()

	for _, term := range stale {
		term.Set(value)
	}
	return len(stale)
}
