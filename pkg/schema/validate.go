package schema

import (
	"maps"
	"slices"
)

// Schema maps term keys to their declared types.
// Example: {"price": Numeric(), "label": String()}
type Schema map[string]Type

// Validate checks values against the schema in key order. Keys declared in the
// schema but absent from values are reported as required; values without a
// declared type are accepted.
func Validate(schema Schema, values map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error
	for _, key := range slices.Sorted(maps.Keys(schema)) {
		value, exists := values[key]
		if !exists {
			errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			continue
		}
		if err := schema[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
