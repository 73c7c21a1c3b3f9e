package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

func TestTransform_Metadata(t *testing.T) {
	tr := grammar.NewTransform(transformID)
	assert.Equal(t, transformID, tr.ID())
	assert.Equal(t, "TransformTest", tr.Name())
	assert.Empty(t, tr.Description())

	tr = grammar.NewTransform(transformID, grammar.WithName("Pricing"), grammar.WithDescription("Totals"))
	assert.Equal(t, "Pricing", tr.Name())
	assert.Equal(t, "Totals", tr.Description())

	assert.Panics(t, func() { grammar.NewTransform(grammar.Identifier{}) })
}

func TestTransform_Registration(t *testing.T) {
	tr := grammar.NewTransform(transformID)
	a := term("a", 1)
	op, _ := newSum("sum")
	op.AddTerm(a)

	require.NoError(t, tr.AddTerm(a))
	require.NoError(t, tr.AddOperation(op))

	got, ok := tr.Operation(grammar.ID("sum"))
	require.True(t, ok)
	assert.Same(t, op, got)

	found, ok := tr.Lookup(grammar.ID("a"))
	require.True(t, ok)
	assert.Same(t, a, found)

	_, ok = tr.Operation(grammar.ID("a"))
	assert.False(t, ok, "terms are not operations")

	assert.Len(t, tr.Operations(), 1)
	assert.Len(t, tr.Terms(), 1)
}

func TestTransform_DuplicateIDs(t *testing.T) {
	tr := grammar.NewTransform(transformID)
	require.NoError(t, tr.AddTerm(term("a", 1)))

	assert.ErrorIs(t, tr.AddTerm(term("a", 2)), grammar.ErrDuplicateID)

	op, _ := newSum("a")
	assert.ErrorIs(t, tr.AddOperation(op), grammar.ErrDuplicateID)

	other, _ := newSum("b")
	require.NoError(t, tr.AddOperation(other))
	assert.ErrorIs(t, tr.AddOperation(other), grammar.ErrDuplicateID)
}

func TestTransform_ForeignOperation(t *testing.T) {
	tr := grammar.NewTransform(grammar.ID("Other"))
	op, _ := newSum("sum")

	assert.ErrorIs(t, tr.AddOperation(op), grammar.ErrForeignOperation)
	assert.Empty(t, tr.Operations())
}

func TestTransform_Remove(t *testing.T) {
	tr := grammar.NewTransform(transformID)
	op, _ := newSum("sum")
	require.NoError(t, tr.AddOperation(op))
	require.NoError(t, tr.AddTerm(term("a", 1)))

	assert.True(t, tr.RemoveOperation(grammar.ID("sum")))
	assert.False(t, tr.RemoveOperation(grammar.ID("sum")))
	assert.True(t, tr.RemoveTerm(grammar.ID("a")))
	assert.False(t, tr.RemoveTerm(grammar.ID("a")))

	// identifiers are free again
	require.NoError(t, tr.AddOperation(op))
}

func TestTransform_RemovedOperationStopsObserving(t *testing.T) {
	rec := &recorder{}
	tr := grammar.NewTransform(transformID, grammar.WithHooks(rec.hooks()))

	a := term("a", 1)
	op, _ := newSum("sum")
	op.AddTerm(a, term("b", 2))
	require.NoError(t, tr.AddOperation(op))
	v, ok := op.Result()
	require.True(t, ok)
	require.Equal(t, 3, v)

	require.True(t, tr.RemoveOperation(op.ID()))
	before := rec.count(grammar.EventInvalidate)
	a.Set(10)
	assert.Equal(t, before, rec.count(grammar.EventInvalidate))

	// re-adding observes the terms again and drops the stale result
	require.NoError(t, tr.AddOperation(op))
	v, ok = op.Result()
	require.True(t, ok)
	assert.Equal(t, 12, v)

	a.Set(20)
	v, _ = op.Result()
	assert.Equal(t, 22, v)
}

func TestTransform_Problems(t *testing.T) {
	tr := grammar.NewTransform(transformID)

	good, _ := newSum("good")
	good.AddTerm(term("a", 1))
	empty, _ := newSum("empty")
	bad, _ := newSum("bad")
	bad.AddTerm(term("x", "nope"))

	for _, op := range []grammar.Operation{good, empty, bad} {
		require.NoError(t, tr.AddOperation(op))
	}

	tr.Validate()
	assert.Equal(t, grammar.StateValid, good.State())
	assert.Equal(t, grammar.StateInvalid, bad.State())
	assert.False(t, tr.IsValid())

	problems := tr.Problems()
	require.Len(t, problems, 2)
	assert.Equal(t, grammar.ID("bad"), problems[0].SourceID)
	assert.Equal(t, grammar.ID("empty"), problems[1].SourceID)
}

func TestTransform_HooksReachOperations(t *testing.T) {
	rec := &recorder{}
	tr := grammar.NewTransform(transformID, grammar.WithHooks(rec.hooks()))

	first, _ := newSum("first")
	first.AddTerm(term("a", 1))
	require.NoError(t, tr.AddOperation(first))
	first.Result()
	assert.Equal(t, 1, rec.count(grammar.EventCalculate))

	late := &recorder{}
	tr.SetHooks(late.hooks())
	first.Invalidate()
	first.Result()
	assert.Equal(t, 1, late.count(grammar.EventCalculate))
	assert.Equal(t, 1, rec.count(grammar.EventCalculate))
}
