package grammar

import (
	"encoding/json"
	"math"
	"strconv"
)

// OperationReport is the evaluation snapshot of one operation.
type OperationReport struct {
	ID          Identifier          `json:"id"`
	Name        string              `json:"name"`
	Category    Category            `json:"category"`
	Terms       []Identifier        `json:"terms"`
	State       State               `json:"state"`
	HasValue    bool                `json:"has_value"`
	Value       any                 `json:"value,omitempty"`
	Problems    []ValidationProblem `json:"problems,omitempty"`
	Description string              `json:"description,omitempty"`
}

// MarshalJSON encodes NaN and infinite values as strings ("NaN", "+Inf",
// "-Inf"), which JSON numbers cannot represent.
func (r OperationReport) MarshalJSON() ([]byte, error) {
	type plain OperationReport
	out := plain(r)
	out.Value = finite(r.Value)
	return json.Marshal(out)
}

func finite(v any) any {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
	}
	return v
}

// Report is the evaluation snapshot of a transform: every operation's result
// plus the aggregated diagnostics.
type Report struct {
	TransformID Identifier          `json:"transform_id"`
	Name        string              `json:"name"`
	Operations  []OperationReport   `json:"operations"`
	Problems    []ValidationProblem `json:"problems,omitempty"`
}

// Evaluate requests the value of every operation of t and collects the outcome.
// Invalid operations yield no value but do not stop the evaluation of others.
func Evaluate(t *Transform) *Report {
	r := &Report{
		TransformID: t.ID(),
		Name:        t.Name(),
	}
	for _, op := range t.Operations() {
		r.Operations = append(r.Operations, EvaluateOperation(op))
	}
	r.Problems = t.Problems()
	return r
}

// EvaluateOperation evaluates a single operation.
func EvaluateOperation(op Operation) OperationReport {
	value, ok := op.Result()
	terms := op.Terms()
	ids := make([]Identifier, 0, len(terms))
	for _, term := range terms {
		if term != nil {
			ids = append(ids, term.ID())
		}
	}
	return OperationReport{
		ID:          op.ID(),
		Name:        op.Name(),
		Description: op.Description(),
		Category:    op.Category(),
		Terms:       ids,
		State:       op.State(),
		HasValue:    ok,
		Value:       value,
		Problems:    op.Problems().Sorted(),
	}
}

// HasErrors reports whether any operation has an error problem.
func (r *Report) HasErrors() bool {
	for _, p := range r.Problems {
		if p.IsError() {
			return true
		}
	}
	return false
}

// Operation finds the report of one operation.
func (r *Report) Operation(id Identifier) (OperationReport, bool) {
	for _, op := range r.Operations {
		if op.ID == id {
			return op, true
		}
	}
	return OperationReport{}, false
}
