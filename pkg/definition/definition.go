// Package definition loads transforms from declarative files.
//
// A definition names a transform, its top-level terms and its operations.
// Terms either carry a literal value or a key read from a ports.TermSource.
// Operations reference terms and other operations by identifier; references
// may point forward, so any dependency graph (cyclic ones included) can be
// written down and is then diagnosed by validation rather than by the loader.
//
//	id: pricing
//	terms:
//	  - id: price
//	    value: 10
//	  - id: tax
//	    key: tax-rate
//	    type: number
//	operations:
//	  - id: total
//	    kind: add
//	    terms: [price, tax]
package definition

import (
	"errors"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

// ErrUnknownReference is returned when an operation references an undefined identifier.
var ErrUnknownReference = errors.New("unknown reference")

// Definition is the declarative form of a transform.
type Definition struct {
	ID          string         `json:"id" mapstructure:"id" validate:"required,identifier"`
	Namespace   string         `json:"namespace,omitempty" mapstructure:"namespace"`
	Name        string         `json:"name,omitempty" mapstructure:"name"`
	Description string         `json:"description,omitempty" mapstructure:"description"`
	Terms       []Term         `json:"terms,omitempty" mapstructure:"terms" validate:"dive"`
	Operations  []Operation    `json:"operations" mapstructure:"operations" validate:"required,min=1,dive"`
	Metadata    map[string]any `json:"metadata,omitempty" mapstructure:"metadata"`
}

// Term declares a top-level term.
type Term struct {
	ID    string `json:"id" mapstructure:"id" validate:"required,identifier"`
	Value any    `json:"value,omitempty" mapstructure:"value"`
	// Key binds the term to a TermSource entry instead of a literal value.
	Key string `json:"key,omitempty" mapstructure:"key"`
	// Type optionally constrains the value, e.g. "number" or "[int]".
	Type string `json:"type,omitempty" mapstructure:"type" validate:"omitempty,termtype"`
}

// Operation declares an operation. An empty ID gets a generated one.
type Operation struct {
	ID    string   `json:"id,omitempty" mapstructure:"id" validate:"omitempty,identifier"`
	Kind  string   `json:"kind" mapstructure:"kind" validate:"required"`
	Terms []string `json:"terms,omitempty" mapstructure:"terms" validate:"dive,required,identifier"`
}

// TransformID returns the qualified transform identifier.
func (d *Definition) TransformID() grammar.Identifier {
	return d.identifier(d.ID)
}

func (d *Definition) identifier(local string) grammar.Identifier {
	if d.Namespace == "" {
		return grammar.ID(local)
	}
	return grammar.NewIdentifier(d.Namespace, local)
}
