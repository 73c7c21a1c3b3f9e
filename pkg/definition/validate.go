package definition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/registry"
	"github.com/aretw0/polyglotter/pkg/schema"
)

var structValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("identifier", validateIdentifier)
	_ = v.RegisterValidation("termtype", validateTermType)
	return v
}

func validateIdentifier(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	_, err := grammar.ParseIdentifier(s)
	return err == nil
}

func validateTermType(fl validator.FieldLevel) bool {
	_, err := schema.ParseType(fl.Field().String())
	return err == nil
}

// Validate checks the definition shape, identifier uniqueness, references and
// literal term types. When reg is not nil, operation kinds must be registered.
// All failures are reported together.
func Validate(def *Definition, reg *registry.Registry) error {
	if def == nil {
		return fmt.Errorf("nil definition")
	}

	var errs []error
	if err := structValidate.Struct(def); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fmt.Errorf("%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	seen := make(map[grammar.Identifier]bool)
	claim := func(what, local string) {
		if local == "" {
			return
		}
		id := def.ref(local)
		if seen[id] {
			errs = append(errs, fmt.Errorf("%s %q: %w", what, local, grammar.ErrDuplicateID))
		}
		seen[id] = true
	}

	types := make(schema.Schema)
	values := make(map[string]any)
	for _, t := range def.Terms {
		claim("term", t.ID)
		if t.Key != "" && t.Value != nil {
			errs = append(errs, fmt.Errorf("term %q: value and key are mutually exclusive", t.ID))
		}
		if t.Type == "" || t.Key != "" {
			continue
		}
		if typ, err := schema.ParseType(t.Type); err == nil {
			types[t.ID] = typ
			values[t.ID] = t.Value
		}
	}
	if err := schema.Validate(types, values); err != nil {
		errs = append(errs, schema.ValidationErrors(err)...)
	}

	for _, op := range def.Operations {
		claim("operation", op.ID)
		if reg != nil && op.Kind != "" {
			if _, ok := reg.Lookup(op.Kind); !ok {
				errs = append(errs, fmt.Errorf("operation %q: kind %q: %w", op.ID, op.Kind, registry.ErrUnknownKind))
			}
		}
	}

	for _, op := range def.Operations {
		for _, ref := range op.Terms {
			if ref != "" && !seen[def.ref(ref)] {
				errs = append(errs, fmt.Errorf("operation %q: term %q: %w", op.ID, ref, ErrUnknownReference))
			}
		}
	}

	return errors.Join(errs...)
}

// ref resolves a reference written in the definition. Bare names live in the
// definition namespace; qualified names ("poly:x", "{ns}x") are taken as is.
func (d *Definition) ref(s string) grammar.Identifier {
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, grammar.NamespacePrefix+":") {
		if id, err := grammar.ParseIdentifier(s); err == nil {
			return id
		}
	}
	return d.identifier(s)
}
