package operation

import (
	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/i18n"
	"github.com/aretw0/polyglotter/pkg/schema"
)

// KindAdd is the registry name of the Add operation.
const KindAdd = "add"

// Add sums two or more numeric terms. Integers are summed as int64 until a
// float term appears, after which the running sum continues as float64.
type Add struct {
	*grammar.BaseOperation[schema.Number]
}

// NewAdd creates an Add operation owned by the given transform.
// It panics if either identifier is zero.
func NewAdd(id, transformID grammar.Identifier) *Add {
	return &Add{BaseOperation: grammar.NewBaseOperation[schema.Number](id, transformID, addKind{})}
}

// Sum returns the typed result.
func (a *Add) Sum() (schema.Number, bool) {
	return a.TypedResult()
}

// Result reports the sum as int64 or float64.
func (a *Add) Result() (any, bool) {
	n, ok := a.TypedResult()
	if !ok {
		return nil, false
	}
	return n.Interface(), true
}

// Value implements grammar.Term.
func (a *Add) Value() any {
	v, _ := a.Result()
	return v
}

type addKind struct{}

func (addKind) Category() grammar.Category { return grammar.CategoryArithmetic }
func (addKind) Name() string               { return i18n.Text(i18n.AddOperationName) }
func (addKind) Description() string        { return i18n.Text(i18n.AddOperationDescription) }

func (addKind) Validate(v *grammar.Validation) {
	terms := v.Terms()
	if len(terms) == 0 {
		v.Error(i18n.AddOperationHasNoTerms, v.ID())
		return
	}
	if len(terms) < 2 {
		v.Error(i18n.InvalidTermCount, v.ID(), len(terms))
	}
	for _, t := range terms {
		if !schema.IsNumber(t.Value()) {
			v.Error(i18n.InvalidTermType, t.ID(), v.ID())
		}
	}
}

func (addKind) Calculate(terms []grammar.Term) schema.Number {
	sum := schema.IntNumber(0)
	for _, t := range terms {
		n, _ := schema.AsNumber(t.Value())
		sum = sum.Add(n)
	}
	return sum
}
