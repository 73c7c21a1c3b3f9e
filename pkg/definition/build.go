package definition

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/ports"
	"github.com/aretw0/polyglotter/pkg/registry"
	"github.com/aretw0/polyglotter/pkg/schema"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	source ports.TermSource
	hooks  grammar.Hooks
}

// WithSource binds keyed terms through source.
func WithSource(source ports.TermSource) BuildOption {
	return func(c *buildConfig) {
		c.source = source
	}
}

// WithHooks installs lifecycle hooks on the built transform.
func WithHooks(hooks grammar.Hooks) BuildOption {
	return func(c *buildConfig) {
		c.hooks = hooks
	}
}

// Build validates def and assembles the transform. Operations are created
// first and wired second, so references may point forward. Terms bound
// through the source are released again when Build fails.
func Build(ctx context.Context, def *Definition, reg *registry.Registry, opts ...BuildOption) (tr *grammar.Transform, err error) {
	if def == nil || reg == nil {
		return nil, fmt.Errorf("build: definition and registry are required")
	}
	if err := Validate(def, reg); err != nil {
		return nil, fmt.Errorf("invalid definition %q: %w", def.ID, err)
	}

	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	tid := def.TransformID()
	topts := []grammar.TransformOption{grammar.WithHooks(cfg.hooks)}
	if def.Name != "" {
		topts = append(topts, grammar.WithName(def.Name))
	}
	if def.Description != "" {
		topts = append(topts, grammar.WithDescription(def.Description))
	}
	tr = grammar.NewTransform(tid, topts...)

	var bound []grammar.Term
	defer func() {
		if err != nil && len(bound) > 0 {
			cfg.source.Release(bound...)
		}
	}()

	for _, t := range def.Terms {
		term, err := buildTerm(ctx, def, t, cfg.source)
		if term != nil && t.Key != "" {
			bound = append(bound, term)
		}
		if err != nil {
			return nil, err
		}
		if err := tr.AddTerm(term); err != nil {
			return nil, err
		}
	}

	ops := make([]grammar.Operation, len(def.Operations))
	for i, od := range def.Operations {
		local := od.ID
		if local == "" {
			local = od.Kind + "-" + uuid.NewString()[:8]
		}
		op, err := reg.New(od.Kind, def.ref(local), tid)
		if err != nil {
			return nil, err
		}
		if err := tr.AddOperation(op); err != nil {
			return nil, err
		}
		ops[i] = op
	}

	for i, od := range def.Operations {
		terms := make([]grammar.Term, 0, len(od.Terms))
		for _, ref := range od.Terms {
			term, ok := tr.Lookup(def.ref(ref))
			if !ok {
				return nil, fmt.Errorf("operation %q: term %q: %w", od.ID, ref, ErrUnknownReference)
			}
			terms = append(terms, term)
		}
		ops[i].AddTerm(terms...)
	}

	return tr, nil
}

// buildTerm returns the bound term alongside a type error so the caller can
// release it.
func buildTerm(ctx context.Context, def *Definition, t Term, source ports.TermSource) (grammar.Term, error) {
	id := def.ref(t.ID)
	if t.Key == "" {
		return grammar.NewTerm(id, t.Value), nil
	}
	if source == nil {
		return nil, fmt.Errorf("term %q: key %q needs a term source", t.ID, t.Key)
	}
	term, err := source.Bind(ctx, id, t.Key)
	if err != nil {
		return nil, fmt.Errorf("term %q: %w", t.ID, err)
	}
	if t.Type != "" {
		typ, err := schema.ParseType(t.Type)
		if err != nil {
			return term, fmt.Errorf("term %q: %w", t.ID, err)
		}
		if err := typ.Validate(term.Value()); err != nil {
			return term, fmt.Errorf("term %q (key %q): %w", t.ID, t.Key, err)
		}
	}
	return term, nil
}
