package schema

import (
	"encoding/json"
	"math"
	"strconv"
)

// Number is a numeric value that is either a 64-bit integer or a 64-bit float.
// Narrower Go numeric kinds are promoted on entry; the float form wins as soon
// as one operand is a float.
type Number struct {
	i     int64
	f     float64
	float bool
}

// IntNumber creates an integer number.
func IntNumber(v int64) Number { return Number{i: v} }

// FloatNumber creates a floating-point number.
func FloatNumber(v float64) Number { return Number{f: v, float: true} }

// IsFloat reports whether the number is in float form.
func (n Number) IsFloat() bool { return n.float }

// Int64 returns the integer form, truncating floats.
func (n Number) Int64() int64 {
	if n.float {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the float form.
func (n Number) Float64() float64 {
	if n.float {
		return n.f
	}
	return float64(n.i)
}

// Interface returns the number as int64 or float64.
func (n Number) Interface() any {
	if n.float {
		return n.f
	}
	return n.i
}

// Add returns n + m. Integer addition wraps on overflow like int64 does.
func (n Number) Add(m Number) Number {
	if n.float || m.float {
		return FloatNumber(n.Float64() + m.Float64())
	}
	return IntNumber(n.i + m.i)
}

// Equal reports whether both numbers have the same form and value.
func (n Number) Equal(m Number) bool {
	if n.float != m.float {
		return false
	}
	if n.float {
		return n.f == m.f || (math.IsNaN(n.f) && math.IsNaN(m.f))
	}
	return n.i == m.i
}

func (n Number) String() string {
	if n.float {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

// MarshalJSON renders the number as a bare JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.float && (math.IsNaN(n.f) || math.IsInf(n.f, 0)) {
		return json.Marshal(n.String())
	}
	return []byte(n.String()), nil
}

// AsNumber converts any Go numeric value to a Number. Signed and unsigned
// integers become the integer form (uint64 values above MaxInt64 become
// floats); float32 and float64 become the float form. json.Number is parsed.
// Everything else, including nil, bool and numeric strings, is rejected.
func AsNumber(v any) (Number, bool) {
	switch x := v.(type) {
	case Number:
		return x, true
	case *Number:
		if x == nil {
			return Number{}, false
		}
		return *x, true
	case int:
		return IntNumber(int64(x)), true
	case int8:
		return IntNumber(int64(x)), true
	case int16:
		return IntNumber(int64(x)), true
	case int32:
		return IntNumber(int64(x)), true
	case int64:
		return IntNumber(x), true
	case uint:
		return fromUint(uint64(x)), true
	case uint8:
		return IntNumber(int64(x)), true
	case uint16:
		return IntNumber(int64(x)), true
	case uint32:
		return IntNumber(int64(x)), true
	case uint64:
		return fromUint(x), true
	case float32:
		return FloatNumber(float64(x)), true
	case float64:
		return FloatNumber(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntNumber(i), true
		}
		if f, err := x.Float64(); err == nil {
			return FloatNumber(f), true
		}
		return Number{}, false
	default:
		return Number{}, false
	}
}

func fromUint(u uint64) Number {
	if u > math.MaxInt64 {
		return FloatNumber(float64(u))
	}
	return IntNumber(int64(u))
}

// IsNumber reports whether AsNumber accepts v.
func IsNumber(v any) bool {
	_, ok := AsNumber(v)
	return ok
}

// Normalize rewrites json.Number values, including those nested in []any and
// map[string]any, to int64 when integral and float64 otherwise. Containers are
// updated in place.
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		n, ok := AsNumber(x)
		if !ok {
			return x.String()
		}
		return n.Interface()
	case []any:
		for i := range x {
			x[i] = Normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = Normalize(x[k])
		}
		return x
	default:
		return v
	}
}
