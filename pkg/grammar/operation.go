package grammar

import "fmt"

// State is the lifecycle state of an operation.
type State int

const (
	StateUnvalidated State = iota
	StateValid
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateUnvalidated:
		return "UNVALIDATED"
	case StateValid:
		return "VALID"
	case StateInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Operation is a typed computation over an ordered list of terms. An operation
// is itself a Term: its Value is the computed result, or nil when the operation
// has no value.
type Operation interface {
	Term
	GrammarPart
	Observable

	// Category classifies the operation kind.
	Category() Category
	// TransformID identifies the owning transform.
	TransformID() Identifier

	// Terms returns a copy of the input terms in order.
	Terms() []Term
	// AddTerm appends terms.
	AddTerm(terms ...Term)
	// RemoveTerm removes the first term with the same identifier.
	RemoveTerm(term Term) bool
	// SetTerm replaces the term at index.
	SetTerm(index int, term Term) error

	// Validate runs a full validation pass. It is idempotent.
	Validate()
	// Problems returns a copy of the problems, validating first if needed.
	Problems() Problems
	// State returns the lifecycle state without triggering validation.
	State() State
	// Result returns the computed value. ok is false when the operation is
	// invalid, which is distinct from a valid nil result.
	Result() (value any, ok bool)
	// Invalidate drops the cached result and problems.
	Invalidate()

	// SetHooks installs lifecycle callbacks.
	SetHooks(hooks Hooks)

	// Detach stops observing the terms; Attach resumes it.
	Detach()
	Attach()
}

// Kind supplies the behaviour of one operation kind. BaseOperation calls
// Validate only after structural checks passed and Calculate only when the
// last validation produced no error problem.
type Kind[T any] interface {
	Category() Category
	Name() string
	Description() string
	Validate(v *Validation)
	Calculate(terms []Term) T
}

// Validation is the scope handed to Kind.Validate.
type Validation struct {
	id       Identifier
	terms    []Term
	problems *Problems
	factory  Factory
}

// ID returns the identifier of the operation being validated.
func (v *Validation) ID() Identifier { return v.id }

// Terms returns the operation terms.
func (v *Validation) Terms() []Term { return v.terms }

// Factory returns the problem factory in use.
func (v *Validation) Factory() Factory { return v.factory }

// Add records problems.
func (v *Validation) Add(problems ...ValidationProblem) {
	v.problems.Add(problems...)
}

// Error records an error problem built from a message key.
func (v *Validation) Error(key string, args ...any) {
	v.problems.Add(v.factory.Error(v.id, key, args...))
}

// Warning records a warning problem built from a message key.
func (v *Validation) Warning(key string, args ...any) {
	v.problems.Add(v.factory.Warning(v.id, key, args...))
}

// Info records an info problem built from a message key.
func (v *Validation) Info(key string, args ...any) {
	v.problems.Add(v.factory.Info(v.id, key, args...))
}
