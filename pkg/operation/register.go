// Package operation provides the built-in operation kinds.
package operation

import (
	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/registry"
)

// Register adds every built-in kind to r.
func Register(r *registry.Registry) error {
	return r.Register(KindAdd, func(id, transformID grammar.Identifier) grammar.Operation {
		return NewAdd(id, transformID)
	})
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() *registry.Registry {
	r := registry.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
