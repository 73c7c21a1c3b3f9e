package dsl

import (
	"context"

	"github.com/aretw0/polyglotter/pkg/definition"
	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/operation"
	"github.com/aretw0/polyglotter/pkg/registry"
)

// Builder manages the transform construction.
type Builder struct {
	def   definition.Definition
	terms map[string]int
	ops   map[string]int
}

// New creates a new transform builder.
func New(id string) *Builder {
	return &Builder{
		def:   definition.Definition{ID: id},
		terms: make(map[string]int),
		ops:   make(map[string]int),
	}
}

// Namespace sets the identifier namespace of the transform.
func (b *Builder) Namespace(ns string) *Builder {
	b.def.Namespace = ns
	return b
}

// Name sets the display name.
func (b *Builder) Name(name string) *Builder {
	b.def.Name = name
	return b
}

// Describe sets the description.
func (b *Builder) Describe(description string) *Builder {
	b.def.Description = description
	return b
}

// Term declares a top-level term.
// If the term already exists, it returns the existing builder.
func (b *Builder) Term(id string) *TermBuilder {
	i, ok := b.terms[id]
	if !ok {
		i = len(b.def.Terms)
		b.def.Terms = append(b.def.Terms, definition.Term{ID: id})
		b.terms[id] = i
	}
	return &TermBuilder{builder: b, index: i}
}

// Operation declares an operation.
// If the operation already exists, it returns the existing builder.
func (b *Builder) Operation(id string) *OperationBuilder {
	i, ok := b.ops[id]
	if !ok {
		i = len(b.def.Operations)
		b.def.Operations = append(b.def.Operations, definition.Operation{ID: id})
		b.ops[id] = i
	}
	return &OperationBuilder{builder: b, index: i}
}

// Definition returns a copy of the accumulated definition.
func (b *Builder) Definition() *definition.Definition {
	def := b.def
	def.Terms = append([]definition.Term(nil), b.def.Terms...)
	def.Operations = make([]definition.Operation, len(b.def.Operations))
	for i, op := range b.def.Operations {
		op.Terms = append([]string(nil), op.Terms...)
		def.Operations[i] = op
	}
	return &def
}

// Validate checks the accumulated definition against reg.
func (b *Builder) Validate(reg *registry.Registry) error {
	return definition.Validate(b.Definition(), reg)
}

// Build compiles the transform.
func (b *Builder) Build(ctx context.Context, reg *registry.Registry, opts ...definition.BuildOption) (*grammar.Transform, error) {
	return definition.Build(ctx, b.Definition(), reg, opts...)
}

// TermBuilder provides a fluent API for configuring a term.
type TermBuilder struct {
	builder *Builder
	index   int
}

func (t *TermBuilder) term() *definition.Term {
	return &t.builder.def.Terms[t.index]
}

// Value sets a literal value and clears any key.
func (t *TermBuilder) Value(v any) *TermBuilder {
	t.term().Value = v
	t.term().Key = ""
	return t
}

// Key binds the term to a term source entry and clears any literal value.
func (t *TermBuilder) Key(key string) *TermBuilder {
	t.term().Key = key
	t.term().Value = nil
	return t
}

// Type declares the expected value type, e.g. "number".
func (t *TermBuilder) Type(typ string) *TermBuilder {
	t.term().Type = typ
	return t
}

// OperationBuilder provides a fluent API for configuring an operation.
type OperationBuilder struct {
	builder *Builder
	index   int
}

func (o *OperationBuilder) op() *definition.Operation {
	return &o.builder.def.Operations[o.index]
}

// Kind sets the registry kind.
func (o *OperationBuilder) Kind(kind string) *OperationBuilder {
	o.op().Kind = kind
	return o
}

// Uses appends term references (terms or other operations).
func (o *OperationBuilder) Uses(refs ...string) *OperationBuilder {
	o.op().Terms = append(o.op().Terms, refs...)
	return o
}

// Add makes this an Add operation over refs.
func (o *OperationBuilder) Add(refs ...string) *OperationBuilder {
	return o.Kind(operation.KindAdd).Uses(refs...)
}
