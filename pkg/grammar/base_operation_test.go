package grammar_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

func TestBaseOperation_Metadata(t *testing.T) {
	op, _ := newSum("sum")

	assert.Equal(t, grammar.ID("sum"), op.ID())
	assert.Equal(t, transformID, op.TransformID())
	assert.Equal(t, "Sum", op.Name())
	assert.Equal(t, "Adds int terms", op.Description())
	assert.Equal(t, grammar.CategoryArithmetic, op.Category())
	assert.Equal(t, grammar.StateUnvalidated, op.State())
}

func TestBaseOperation_ConstructorPanics(t *testing.T) {
	k := &sumKind{}
	assert.Panics(t, func() { grammar.NewBaseOperation[int](grammar.Identifier{}, transformID, k) })
	assert.Panics(t, func() { grammar.NewBaseOperation[int](grammar.ID("x"), grammar.Identifier{}, k) })
	assert.Panics(t, func() { grammar.NewBaseOperation[int](grammar.ID("x"), transformID, nil) })
}

func TestBaseOperation_ValidLifecycle(t *testing.T) {
	op, k := newSum("sum")
	op.AddTerm(term("a", 10), term("b", 25))

	v, ok := op.Result()
	require.True(t, ok)
	assert.Equal(t, 35, v)
	assert.Equal(t, 35, op.Value())
	assert.Equal(t, grammar.StateValid, op.State())
	assert.True(t, op.Problems().IsEmpty())
	assert.Equal(t, 1, k.calculations)
}

func TestBaseOperation_Memoized(t *testing.T) {
	op, k := newSum("sum")
	op.AddTerm(term("a", 1), term("b", 2))

	for range 3 {
		v, ok := op.TypedResult()
		require.True(t, ok)
		assert.Equal(t, 3, v)
	}
	assert.Equal(t, 1, k.calculations)
	assert.Equal(t, 1, k.validations)
}

func TestBaseOperation_ValidateIsIdempotent(t *testing.T) {
	op, k := newSum("sum")
	op.AddTerm(term("a", "x"))

	op.Validate()
	first := op.Problems().All()
	op.Validate()
	second := op.Problems().All()

	assert.Equal(t, first, second)
	assert.Len(t, second, 1)
	assert.Equal(t, 2, k.validations)
}

func TestBaseOperation_InvalidNeverCalculates(t *testing.T) {
	op, k := newSum("sum")
	op.AddTerm(term("a", 1), term("b", "value-1"))

	v, ok := op.Result()
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Nil(t, op.Value())
	assert.Equal(t, grammar.StateInvalid, op.State())
	assert.Zero(t, k.calculations)

	problems := op.Problems()
	require.True(t, problems.IsError())
	assert.Contains(t, problems.Errors()[0].Message, "poly:b")
	assert.Equal(t, grammar.ID("sum"), problems.Errors()[0].SourceID)
}

func TestBaseOperation_NoTerms(t *testing.T) {
	op, _ := newSum("sum")

	_, ok := op.Result()
	assert.False(t, ok)
	require.Equal(t, 1, op.Problems().Len())
	assert.Equal(t, "noTerms: poly:sum", op.Problems().All()[0].Message)
}

func TestBaseOperation_ProblemsAreCopies(t *testing.T) {
	op, _ := newSum("sum")
	op.AddTerm(term("a", "x"))

	p := op.Problems()
	p.Add(grammar.NewError(grammar.ID("other"), "injected"))

	assert.Equal(t, 1, op.Problems().Len())
}

func TestBaseOperation_MutationResets(t *testing.T) {
	op, k := newSum("sum")
	a := term("a", 1)
	op.AddTerm(a)

	v, _ := op.Result()
	assert.Equal(t, 1, v)

	op.AddTerm(term("b", 2))
	assert.Equal(t, grammar.StateUnvalidated, op.State())
	v, _ = op.Result()
	assert.Equal(t, 3, v)

	require.NoError(t, op.SetTerm(0, term("c", 10)))
	v, _ = op.Result()
	assert.Equal(t, 12, v)

	assert.True(t, op.RemoveTerm(term("b", nil)))
	v, _ = op.Result()
	assert.Equal(t, 10, v)

	assert.False(t, op.RemoveTerm(term("missing", nil)))
	assert.Equal(t, 4, k.calculations)
}

func TestBaseOperation_RemovedTermIsUnwatched(t *testing.T) {
	op, _ := newSum("sum")
	a := term("a", 1)
	op.AddTerm(a, term("b", 2))
	op.RemoveTerm(a)

	op.Validate()
	a.Set(100)
	assert.Equal(t, grammar.StateValid, op.State())
}

func TestBaseOperation_SetTermOutOfRange(t *testing.T) {
	op, _ := newSum("sum")
	op.AddTerm(term("a", 1))

	err := op.SetTerm(1, term("b", 2))
	assert.True(t, errors.Is(err, grammar.ErrIndexOutOfRange))
	err = op.SetTerm(-1, term("b", 2))
	assert.ErrorIs(t, err, grammar.ErrIndexOutOfRange)
}

func TestBaseOperation_TermsAreCopies(t *testing.T) {
	op, _ := newSum("sum")
	op.AddTerm(term("a", 1))

	terms := op.Terms()
	terms[0] = term("z", 99)

	assert.Equal(t, grammar.ID("a"), op.Terms()[0].ID())
}

func TestBaseOperation_UndefinedTerm(t *testing.T) {
	op, k := newSum("sum")
	op.AddTerm(term("a", 1), nil)

	_, ok := op.Result()
	assert.False(t, ok)
	require.Equal(t, 1, op.Problems().Len())
	assert.Equal(t, "Operation 'poly:sum' references an undefined term at index 1", op.Problems().All()[0].Message)
	assert.Zero(t, k.validations)
}

func TestBaseOperation_TermValueChangeInvalidates(t *testing.T) {
	op, k := newSum("sum")
	a := term("a", 1)
	op.AddTerm(a, term("b", 2))

	v, _ := op.Result()
	assert.Equal(t, 3, v)

	a.Set(40)
	assert.Equal(t, grammar.StateUnvalidated, op.State())
	v, _ = op.Result()
	assert.Equal(t, 42, v)

	a.Set("oops")
	_, ok := op.Result()
	assert.False(t, ok)
	assert.Equal(t, 2, k.calculations)
}

func TestBaseOperation_NestedOperations(t *testing.T) {
	inner, innerKind := newSum("inner")
	x := term("x", 2)
	inner.AddTerm(x, term("y", 3))

	outer, outerKind := newSum("outer")
	outer.AddTerm(inner, term("z", 10))

	v, ok := outer.Result()
	require.True(t, ok)
	assert.Equal(t, 15, v)

	x.Set(7)
	assert.Equal(t, grammar.StateUnvalidated, inner.State())
	assert.Equal(t, grammar.StateUnvalidated, outer.State())

	v, _ = outer.Result()
	assert.Equal(t, 20, v)
	assert.Equal(t, 2, innerKind.calculations)
	assert.Equal(t, 2, outerKind.calculations)
}

func TestBaseOperation_InvalidInnerPoisonsOuter(t *testing.T) {
	inner, _ := newSum("inner")
	inner.AddTerm(term("x", "bad"))

	outer, outerKind := newSum("outer")
	outer.AddTerm(inner, term("z", 10))

	_, ok := outer.Result()
	assert.False(t, ok)
	assert.Contains(t, outer.Problems().Errors()[0].Message, "poly:inner")
	assert.Zero(t, outerKind.calculations)
}

func TestBaseOperation_Cycle(t *testing.T) {
	a, ak := newSum("A")
	b, bk := newSum("B")
	a.AddTerm(b)
	b.AddTerm(a)

	_, ok := a.Result()
	assert.False(t, ok)
	_, ok = b.Result()
	assert.False(t, ok)

	require.Equal(t, 1, a.Problems().Len())
	assert.Equal(t, "Operation 'poly:A' has a cyclic dependency through term 'poly:B'", a.Problems().All()[0].Message)
	assert.Equal(t, "Operation 'poly:B' has a cyclic dependency through term 'poly:A'", b.Problems().All()[0].Message)
	assert.Zero(t, ak.calculations+bk.calculations)
	assert.Zero(t, ak.validations+bk.validations)

	through, cyclic := grammar.DependencyCycle(a)
	require.True(t, cyclic)
	assert.Equal(t, grammar.ID("B"), through.ID())
}

func TestBaseOperation_SelfReference(t *testing.T) {
	a, _ := newSum("A")
	a.AddTerm(term("x", 1), a)

	_, ok := a.Result()
	assert.False(t, ok)
	assert.Contains(t, a.Problems().All()[0].Message, "cyclic dependency through term 'poly:A'")
}

func TestBaseOperation_DiamondIsNotACycle(t *testing.T) {
	shared, _ := newSum("shared")
	shared.AddTerm(term("x", 1))
	left, _ := newSum("left")
	left.AddTerm(shared)
	right, _ := newSum("right")
	right.AddTerm(shared)
	top, _ := newSum("top")
	top.AddTerm(left, right)

	_, cyclic := grammar.DependencyCycle(top)
	assert.False(t, cyclic)
	v, ok := top.Result()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestBaseOperation_Hooks(t *testing.T) {
	op, _ := newSum("sum")
	rec := &recorder{}
	op.SetHooks(rec.hooks())

	a := term("a", 1)
	op.AddTerm(a)
	op.Result()
	op.Result()
	a.Set(2)

	assert.Equal(t, 1, rec.count(grammar.EventValidate))
	assert.Equal(t, 1, rec.count(grammar.EventCalculate))
	assert.Equal(t, 2, rec.count(grammar.EventInvalidate))

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, grammar.EventInvalidate, last.Type)
	assert.Equal(t, grammar.ID("a"), last.Cause)
	assert.Equal(t, grammar.ID("sum"), last.OperationID)
	assert.Equal(t, transformID, last.TransformID)

	for _, e := range rec.events {
		if e.Type == grammar.EventValidate {
			assert.Equal(t, grammar.StateValid, e.State)
			assert.Zero(t, e.Errors)
		}
	}
}

func TestChainHooks(t *testing.T) {
	var order []string
	first := grammar.Hooks{OnValidate: func(*grammar.OperationEvent) { order = append(order, "first") }}
	second := grammar.Hooks{OnValidate: func(*grammar.OperationEvent) { order = append(order, "second") }}

	h := grammar.ChainHooks(first, grammar.Hooks{}, second)
	require.NotNil(t, h.OnValidate)
	assert.Nil(t, h.OnCalculate)

	h.OnValidate(&grammar.OperationEvent{})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBaseOperation_SetFactory(t *testing.T) {
	op, _ := newSum("sum")
	op.SetFactory(grammar.Factory{Localize: func(key string, args ...any) string { return "custom:" + key }})

	assert.Equal(t, "custom:noTerms", op.Problems().All()[0].Message)
}
