package grammar_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

func TestEvaluate(t *testing.T) {
	tr := grammar.NewTransform(transformID)

	good, _ := newSum("good")
	good.AddTerm(term("a", 10), term("b", 25))
	bad, _ := newSum("bad")
	bad.AddTerm(term("c", "value-1"))
	require.NoError(t, tr.AddOperation(good))
	require.NoError(t, tr.AddOperation(bad))

	r := grammar.Evaluate(tr)
	assert.Equal(t, transformID, r.TransformID)
	require.Len(t, r.Operations, 2)
	assert.True(t, r.HasErrors())
	require.Len(t, r.Problems, 1)

	g, ok := r.Operation(grammar.ID("good"))
	require.True(t, ok)
	assert.True(t, g.HasValue)
	assert.Equal(t, 35, g.Value)
	assert.Equal(t, grammar.StateValid, g.State)
	assert.Equal(t, []grammar.Identifier{grammar.ID("a"), grammar.ID("b")}, g.Terms)

	b, ok := r.Operation(grammar.ID("bad"))
	require.True(t, ok)
	assert.False(t, b.HasValue)
	assert.Nil(t, b.Value)
	assert.Equal(t, grammar.StateInvalid, b.State)
	assert.Len(t, b.Problems, 1)

	_, ok = r.Operation(grammar.ID("missing"))
	assert.False(t, ok)
}

func TestReport_JSON(t *testing.T) {
	tr := grammar.NewTransform(transformID)
	op, _ := newSum("sum")
	op.AddTerm(term("a", 1))
	require.NoError(t, tr.AddOperation(op))

	b, err := json.Marshal(grammar.Evaluate(tr))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "poly:TransformTest", out["transform_id"])

	ops := out["operations"].([]any)
	require.Len(t, ops, 1)
	first := ops[0].(map[string]any)
	assert.Equal(t, "poly:sum", first["id"])
	assert.Equal(t, "ARITHMETIC", first["category"])
	assert.Equal(t, "VALID", first["state"])
	assert.Equal(t, float64(1), first["value"])
}

func TestOperationReport_JSONNonFinite(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{math.Inf(1), `"+Inf"`},
		{math.Inf(-1), `"-Inf"`},
		{math.NaN(), `"NaN"`},
		{float32(math.Inf(1)), `"+Inf"`},
		{2.5, `2.5`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(grammar.OperationReport{ID: grammar.ID("op"), HasValue: true, Value: tt.value})
		require.NoError(t, err)

		var out map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, tt.want, string(out["value"]))
		assert.Equal(t, `"poly:op"`, string(out["id"]))
	}
}
