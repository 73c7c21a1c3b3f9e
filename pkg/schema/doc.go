// Package schema holds the value model shared by operation kinds.
//
// Number unifies Go's numeric kinds into an int64-or-float64 value with the
// promotion rules arithmetic kinds rely on:
//
//	a, _ := schema.AsNumber(int32(10))
//	b, _ := schema.AsNumber(12.34)
//	a.Add(b) // float 22.34
//
// Type and Schema let definitions declare the expected shape of term values
// ("number", "int", "float", "string", "bool", "any", "[int]") and check them
// before a transform is built:
//
//	s, err := schema.ParseTypeMap(map[string]string{"price": "number"})
//	err = schema.Validate(s, map[string]any{"price": 9.5})
package schema
