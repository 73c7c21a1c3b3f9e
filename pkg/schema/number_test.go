package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsNumber_Promotion(t *testing.T) {
	tests := []struct {
		name      string
		in        any
		wantFloat bool
		want      any
	}{
		{"int", 10, false, int64(10)},
		{"int8", int8(-3), false, int64(-3)},
		{"int16", int16(300), false, int64(300)},
		{"int32", int32(25), false, int64(25)},
		{"int64", int64(1) << 40, false, int64(1) << 40},
		{"uint8", uint8(255), false, int64(255)},
		{"uint64 small", uint64(7), false, int64(7)},
		{"uint64 huge", uint64(math.MaxUint64), true, float64(math.MaxUint64)},
		{"float32", float32(0.5), true, float64(0.5)},
		{"float64", 12.34, true, 12.34},
		{"json int", json.Number("25"), false, int64(25)},
		{"json float", json.Number("2.5"), true, 2.5},
		{"number", FloatNumber(1.25), true, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := AsNumber(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.wantFloat, n.IsFloat())
			assert.Equal(t, tt.want, n.Interface())
		})
	}
}

func TestAsNumber_Rejects(t *testing.T) {
	var nilNumber *Number
	for _, v := range []any{nil, "10", true, []int{1}, json.Number("x"), nilNumber} {
		_, ok := AsNumber(v)
		assert.False(t, ok, "AsNumber(%#v)", v)
	}
}

func TestNumber_Add(t *testing.T) {
	assert.Equal(t, IntNumber(35), IntNumber(10).Add(IntNumber(25)))

	sum := IntNumber(10).Add(FloatNumber(12.34))
	assert.True(t, sum.IsFloat())
	assert.InDelta(t, 22.34, sum.Float64(), 1e-9)

	sum = FloatNumber(0.5).Add(IntNumber(1))
	assert.True(t, sum.IsFloat())
	assert.Equal(t, 1.5, sum.Float64())

	wrapped := IntNumber(math.MaxInt64).Add(IntNumber(1))
	assert.False(t, wrapped.IsFloat())
	assert.Equal(t, int64(math.MinInt64), wrapped.Int64())
}

func TestNumber_Conversions(t *testing.T) {
	assert.Equal(t, int64(2), FloatNumber(2.9).Int64())
	assert.Equal(t, float64(4), IntNumber(4).Float64())
	assert.Equal(t, "35", IntNumber(35).String())
	assert.Equal(t, "22.34", FloatNumber(22.34).String())

	assert.True(t, IntNumber(1).Equal(IntNumber(1)))
	assert.False(t, IntNumber(1).Equal(FloatNumber(1)))
	assert.True(t, FloatNumber(math.NaN()).Equal(FloatNumber(math.NaN())))

	var zero Number
	assert.Equal(t, int64(0), zero.Interface())
}

func TestNumber_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Number{"a": IntNumber(35), "b": FloatNumber(22.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":35,"b":22.5}`, string(b))

	b, err = json.Marshal(FloatNumber(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, `"+Inf"`, string(b))
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"i":    json.Number("10"),
		"f":    json.Number("12.34"),
		"list": []any{json.Number("1"), "x"},
		"s":    "value-1",
	}

	out := Normalize(in)
	assert.Equal(t, map[string]any{
		"i":    int64(10),
		"f":    12.34,
		"list": []any{int64(1), "x"},
		"s":    "value-1",
	}, out)

	assert.Nil(t, Normalize(nil))
}
