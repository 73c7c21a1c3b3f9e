package grammar

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/polyglotter/pkg/i18n"
)

// BaseOperation implements the operation lifecycle shared by every kind:
// term management, validation, memoized calculation and invalidation.
type BaseOperation[T any] struct {
	id          Identifier
	transformID Identifier
	kind        Kind[T]
	factory     Factory

	terms   []Term
	cancels []func() // parallel to terms; nil for non-observable terms

	problems Problems
	state    State
	result   T
	cached   bool

	hooks     Hooks
	listeners listeners

	validating   bool
	invalidating bool
}

var _ Operation = (*BaseOperation[any])(nil)

// NewBaseOperation creates an operation of the given kind.
// It panics if either identifier is zero or kind is nil.
func NewBaseOperation[T any](id, transformID Identifier, kind Kind[T]) *BaseOperation[T] {
	mustIdentify("operation", id)
	mustIdentify("transform", transformID)
	if kind == nil {
		panic("grammar: operation kind is required")
	}
	return &BaseOperation[T]{
		id:          id,
		transformID: transformID,
		kind:        kind,
		factory:     DefaultFactory,
	}
}

func (o *BaseOperation[T]) ID() Identifier          { return o.id }
func (o *BaseOperation[T]) TransformID() Identifier { return o.transformID }
func (o *BaseOperation[T]) Name() string            { return o.kind.Name() }
func (o *BaseOperation[T]) Description() string     { return o.kind.Description() }
func (o *BaseOperation[T]) Category() Category      { return o.kind.Category() }
func (o *BaseOperation[T]) State() State            { return o.state }

// Kind returns the kind driving this operation.
func (o *BaseOperation[T]) Kind() Kind[T] { return o.kind }

// SetFactory overrides the problem factory, e.g. to use another catalog.
func (o *BaseOperation[T]) SetFactory(f Factory) {
	o.factory = f
	o.invalidate(Identifier{})
}

// SetHooks installs lifecycle callbacks.
func (o *BaseOperation[T]) SetHooks(hooks Hooks) {
	o.hooks = hooks
}

// Terms returns a copy of the input terms.
func (o *BaseOperation[T]) Terms() []Term {
	return slices.Clone(o.terms)
}

// AddTerm appends terms. Operations added as terms become dependencies.
func (o *BaseOperation[T]) AddTerm(terms ...Term) {
	if len(terms) == 0 {
		return
	}
	for _, t := range terms {
		o.terms = append(o.terms, t)
		o.cancels = append(o.cancels, o.watch(t))
	}
	o.invalidate(Identifier{})
}

// RemoveTerm removes the first term with the identifier of term.
func (o *BaseOperation[T]) RemoveTerm(term Term) bool {
	if term == nil {
		return false
	}
	for i, t := range o.terms {
		if t != nil && t.ID() == term.ID() {
			if o.cancels[i] != nil {
				o.cancels[i]()
			}
			o.terms = slices.Delete(o.terms, i, i+1)
			o.cancels = slices.Delete(o.cancels, i, i+1)
			o.invalidate(Identifier{})
			return true
		}
	}
	return false
}

// SetTerm replaces the term at index.
func (o *BaseOperation[T]) SetTerm(index int, term Term) error {
	if index < 0 || index >= len(o.terms) {
		return fmt.Errorf("operation %s: index %d of %d: %w", o.id, index, len(o.terms), ErrIndexOutOfRange)
	}
	if o.cancels[index] != nil {
		o.cancels[index]()
	}
	o.terms[index] = term
	o.cancels[index] = o.watch(term)
	o.invalidate(Identifier{})
	return nil
}

// Detach stops observing the terms. The operation keeps its terms but term
// changes no longer invalidate it.
func (o *BaseOperation[T]) Detach() {
	for i, cancel := range o.cancels {
		if cancel != nil {
			cancel()
			o.cancels[i] = nil
		}
	}
}

// Attach observes the terms again after Detach and drops the cached result,
// since terms may have changed in between. Observed terms are left alone.
func (o *BaseOperation[T]) Attach() {
	resubscribed := false
	for i, t := range o.terms {
		if o.cancels[i] != nil {
			continue
		}
		o.cancels[i] = o.watch(t)
		resubscribed = resubscribed || o.cancels[i] != nil
	}
	if resubscribed {
		o.invalidate(Identifier{})
	}
}

func (o *BaseOperation[T]) watch(t Term) func() {
	obs, ok := t.(Observable)
	if !ok || t == nil {
		return nil
	}
	return obs.Subscribe(o.invalidate)
}

// Subscribe registers fn to be called whenever this operation is invalidated.
func (o *BaseOperation[T]) Subscribe(fn func(Identifier)) func() {
	return o.listeners.add(fn)
}

// Invalidate drops the cached result and problems and notifies dependents.
func (o *BaseOperation[T]) Invalidate() {
	o.invalidate(Identifier{})
}

func (o *BaseOperation[T]) invalidate(cause Identifier) {
	// A cyclic graph would otherwise bounce notifications forever.
	if o.invalidating {
		return
	}
	o.invalidating = true
	defer func() { o.invalidating = false }()

	o.problems.clear()
	o.clearCache()
	o.state = StateUnvalidated

	e := o.event(EventInvalidate)
	e.Cause = cause
	o.hooks.emit(o.hooks.OnInvalidate, e)

	o.listeners.notify(o.id)
}

func (o *BaseOperation[T]) clearCache() {
	var zero T
	o.result = zero
	o.cached = false
}

// Validate runs structural checks and the kind validation, replacing the
// previous problem set.
func (o *BaseOperation[T]) Validate() {
	if o.validating {
		return
	}
	o.validating = true
	defer func() { o.validating = false }()

	start := time.Now()
	o.problems.clear()

	v := &Validation{
		id:       o.id,
		terms:    slices.Clone(o.terms),
		problems: &o.problems,
		factory:  o.factory,
	}
	if o.validateStructure(v) {
		o.kind.Validate(v)
	}

	if o.problems.IsError() {
		o.state = StateInvalid
		o.clearCache()
	} else {
		o.state = StateValid
	}

	e := o.event(EventValidate)
	e.Duration = time.Since(start)
	o.hooks.emit(o.hooks.OnValidate, e)
}

// validateStructure reports undefined terms and dependency cycles. It returns
// false when the kind validation must not run.
func (o *BaseOperation[T]) validateStructure(v *Validation) bool {
	ok := true
	for i, t := range o.terms {
		if t == nil {
			v.Error(i18n.UndefinedTerm, o.id, i)
			ok = false
		}
	}
	if !ok {
		return false
	}
	if through, cyclic := findCycle(o.id, o.terms); cyclic {
		v.Error(i18n.CyclicDependency, o.id, through.ID())
		return false
	}
	return true
}

// Problems returns a copy of the current problems, validating first if needed.
func (o *BaseOperation[T]) Problems() Problems {
	if o.state == StateUnvalidated {
		o.Validate()
	}
	return o.problems.Clone()
}

// TypedResult returns the computed result. ok is false when the operation is
// invalid; Calculate is then never invoked.
func (o *BaseOperation[T]) TypedResult() (T, bool) {
	var zero T
	if o.validating {
		return zero, false
	}
	if o.state == StateUnvalidated {
		o.Validate()
	}
	if o.state != StateValid {
		return zero, false
	}
	if !o.cached {
		start := time.Now()
		o.result = o.kind.Calculate(slices.Clone(o.terms))
		o.cached = true

		e := o.event(EventCalculate)
		e.Duration = time.Since(start)
		o.hooks.emit(o.hooks.OnCalculate, e)
	}
	return o.result, true
}

// Result returns the computed result as an untyped value.
func (o *BaseOperation[T]) Result() (any, bool) {
	v, ok := o.TypedResult()
	if !ok {
		return nil, false
	}
	return v, true
}

// Value implements Term. It returns nil when the operation has no value.
func (o *BaseOperation[T]) Value() any {
	v, _ := o.Result()
	return v
}

func (o *BaseOperation[T]) event(t EventType) *OperationEvent {
	return &OperationEvent{
		Type:        t,
		OperationID: o.id,
		TransformID: o.transformID,
		Category:    o.kind.Category(),
		State:       o.state,
		Problems:    o.problems.Len(),
		Errors:      len(o.problems.Errors()),
	}
}
