package grammar_test

import (
	"github.com/aretw0/polyglotter/pkg/grammar"
)

var transformID = grammar.ID("TransformTest")

// sumKind adds int terms and counts how often it calculates.
type sumKind struct {
	calculations int
	validations  int
}

func (k *sumKind) Category() grammar.Category { return grammar.CategoryArithmetic }
func (k *sumKind) Name() string               { return "Sum" }
func (k *sumKind) Description() string        { return "Adds int terms" }

func (k *sumKind) Validate(v *grammar.Validation) {
	k.validations++
	if len(v.Terms()) == 0 {
		v.Error("noTerms", v.ID())
		return
	}
	for _, t := range v.Terms() {
		if _, ok := t.Value().(int); !ok {
			v.Add(grammar.NewError(v.ID(), "not an int: "+t.ID().String()))
		}
	}
}

func (k *sumKind) Calculate(terms []grammar.Term) int {
	k.calculations++
	sum := 0
	for _, t := range terms {
		sum += t.Value().(int)
	}
	return sum
}

func newSum(local string) (*grammar.BaseOperation[int], *sumKind) {
	k := &sumKind{}
	return grammar.NewBaseOperation[int](grammar.ID(local), transformID, k), k
}

func term(local string, v any) *grammar.ValueTerm {
	return grammar.NewTerm(grammar.ID(local), v)
}

type recorder struct {
	events []grammar.OperationEvent
}

func (r *recorder) hooks() grammar.Hooks {
	rec := func(e *grammar.OperationEvent) { r.events = append(r.events, *e) }
	return grammar.Hooks{OnValidate: rec, OnCalculate: rec, OnInvalidate: rec}
}

func (r *recorder) count(t grammar.EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
