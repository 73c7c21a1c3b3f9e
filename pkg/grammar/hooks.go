package grammar

import "time"

// EventType names a lifecycle event.
type EventType string

const (
	EventValidate   EventType = "validate"
	EventCalculate  EventType = "calculate"
	EventInvalidate EventType = "invalidate"
)

// OperationEvent describes one lifecycle step of an operation.
type OperationEvent struct {
	Type        EventType
	OperationID Identifier
	TransformID Identifier
	Category    Category
	State       State
	// Problems is the problem count after a validation pass.
	Problems int
	// Errors is the error-severity subset of Problems.
	Errors int
	// Cause identifies the term whose change triggered an invalidation.
	// It is zero for structural mutations.
	Cause    Identifier
	Duration time.Duration
}

// Hooks are optional observability callbacks. Nil fields are skipped.
type Hooks struct {
	OnValidate   func(*OperationEvent)
	OnCalculate  func(*OperationEvent)
	OnInvalidate func(*OperationEvent)
}

// ChainHooks combines several hook sets, calling them in order.
func ChainHooks(hooks ...Hooks) Hooks {
	var out Hooks
	for _, h := range hooks {
		out.OnValidate = chain(out.OnValidate, h.OnValidate)
		out.OnCalculate = chain(out.OnCalculate, h.OnCalculate)
		out.OnInvalidate = chain(out.OnInvalidate, h.OnInvalidate)
	}
	return out
}

func chain(a, b func(*OperationEvent)) func(*OperationEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e *OperationEvent) {
		a(e)
		b(e)
	}
}

func (h Hooks) emit(fn func(*OperationEvent), e *OperationEvent) {
	if fn != nil {
		fn(e)
	}
}
