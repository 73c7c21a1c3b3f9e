package grammar

import (
	"fmt"
	"slices"
)

// Transform owns a set of operations and top-level terms sharing one
// identifier namespace. It neither validates nor computes by itself.
type Transform struct {
	id          Identifier
	name        string
	description string

	operations []Operation
	terms      []Term
	index      map[Identifier]Term

	hooks Hooks
}

// TransformOption configures a Transform.
type TransformOption func(*Transform)

// WithName sets the display name (defaults to the local identifier).
func WithName(name string) TransformOption {
	return func(t *Transform) {
		t.name = name
	}
}

// WithDescription sets the display description.
func WithDescription(description string) TransformOption {
	return func(t *Transform) {
		t.description = description
	}
}

// WithHooks installs lifecycle hooks on every owned operation.
func WithHooks(hooks Hooks) TransformOption {
	return func(t *Transform) {
		t.hooks = hooks
	}
}

// NewTransform creates an empty transform. It panics if id is zero.
func NewTransform(id Identifier, opts ...TransformOption) *Transform {
	mustIdentify("transform", id)
	t := &Transform{
		id:    id,
		name:  id.Local,
		index: make(map[Identifier]Term),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transform) ID() Identifier      { return t.id }
func (t *Transform) Name() string        { return t.name }
func (t *Transform) Description() string { return t.description }

// Hooks returns the hooks installed on owned operations.
func (t *Transform) Hooks() Hooks { return t.hooks }

// SetHooks replaces the hooks of the transform and of every owned operation.
func (t *Transform) SetHooks(hooks Hooks) {
	t.hooks = hooks
	for _, op := range t.operations {
		op.SetHooks(hooks)
	}
}

// AddOperation registers an operation constructed for this transform.
func (t *Transform) AddOperation(op Operation) error {
	if op.TransformID() != t.id {
		return fmt.Errorf("operation %s (transform %s) in %s: %w", op.ID(), op.TransformID(), t.id, ErrForeignOperation)
	}
	if err := t.claim(op.ID()); err != nil {
		return err
	}
	op.SetHooks(t.hooks)
	op.Attach()
	t.operations = append(t.operations, op)
	t.index[op.ID()] = op
	return nil
}

// RemoveOperation unregisters an operation and detaches it from its terms.
// Operations that use it as a term keep their reference.
func (t *Transform) RemoveOperation(id Identifier) bool {
	i := slices.IndexFunc(t.operations, func(op Operation) bool { return op.ID() == id })
	if i < 0 {
		return false
	}
	t.operations[i].Detach()
	t.operations = slices.Delete(t.operations, i, i+1)
	delete(t.index, id)
	return true
}

// AddTerm registers a top-level term.
func (t *Transform) AddTerm(term Term) error {
	if err := t.claim(term.ID()); err != nil {
		return err
	}
	t.terms = append(t.terms, term)
	t.index[term.ID()] = term
	return nil
}

// RemoveTerm unregisters a top-level term.
func (t *Transform) RemoveTerm(id Identifier) bool {
	i := slices.IndexFunc(t.terms, func(term Term) bool { return term.ID() == id })
	if i < 0 {
		return false
	}
	t.terms = slices.Delete(t.terms, i, i+1)
	delete(t.index, id)
	return true
}

func (t *Transform) claim(id Identifier) error {
	if id.IsZero() {
		return fmt.Errorf("transform %s: empty identifier", t.id)
	}
	if _, taken := t.index[id]; taken {
		return fmt.Errorf("transform %s: %s: %w", t.id, id, ErrDuplicateID)
	}
	return nil
}

// Lookup finds a top-level term or an operation by identifier.
func (t *Transform) Lookup(id Identifier) (Term, bool) {
	term, ok := t.index[id]
	return term, ok
}

// Operation finds an operation by identifier.
func (t *Transform) Operation(id Identifier) (Operation, bool) {
	op, ok := t.index[id].(Operation)
	return op, ok
}

// Operations returns the operations in registration order.
func (t *Transform) Operations() []Operation {
	return slices.Clone(t.operations)
}

// Terms returns the top-level terms in registration order.
func (t *Transform) Terms() []Term {
	return slices.Clone(t.terms)
}

// Validate runs a validation pass on every operation.
func (t *Transform) Validate() {
	for _, op := range t.operations {
		op.Validate()
	}
}

// Problems aggregates the problems of all operations in display order.
func (t *Transform) Problems() []ValidationProblem {
	var all []ValidationProblem
	for _, op := range t.operations {
		all = append(all, op.Problems().All()...)
	}
	SortProblems(all)
	return all
}

// IsValid reports whether no operation has an error problem.
func (t *Transform) IsValid() bool {
	for _, op := range t.operations {
		if op.Problems().IsError() {
			return false
		}
	}
	return true
}
