package grammar

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity classifies a validation problem. Lower values sort first.
type Severity int

const (
	SeverityError   Severity = iota // blocks calculation
	SeverityWarning                 // informational
	SeverityInfo                    // informational
	SeverityOK                      // explicit "all good" marker
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOK:
		return "OK"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity converts a severity name (case-insensitive) back to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	case "OK":
		return SeverityOK, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ValidationProblem is a single diagnostic produced while validating an operation.
type ValidationProblem struct {
	SourceID Identifier `json:"source_id"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
}

// IsError reports whether the problem blocks calculation.
func (p ValidationProblem) IsError() bool {
	return p.Severity == SeverityError
}

func (p ValidationProblem) Error() string {
	return fmt.Sprintf("%s [%s]: %s", p.Severity, p.SourceID, p.Message)
}

// CompareProblems orders problems for display: errors before warnings before
// info, then by source identifier, then by message.
func CompareProblems(a, b ValidationProblem) int {
	if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SourceID.String(), b.SourceID.String()); c != 0 {
		return c
	}
	return cmp.Compare(a.Message, b.Message)
}

// SortProblems sorts problems in display order, in place.
func SortProblems(problems []ValidationProblem) {
	slices.SortStableFunc(problems, CompareProblems)
}

// Problems is an ordered collection of validation problems.
// The zero value is an empty collection.
type Problems struct {
	items []ValidationProblem
}

// Add appends problems to the collection.
func (p *Problems) Add(problems ...ValidationProblem) {
	p.items = append(p.items, problems...)
}

// Len returns the number of problems.
func (p Problems) Len() int { return len(p.items) }

// IsEmpty reports whether there are no problems at all.
func (p Problems) IsEmpty() bool { return len(p.items) == 0 }

// IsError reports whether at least one problem has error severity.
func (p Problems) IsError() bool {
	return p.has(SeverityError)
}

// IsWarning reports whether at least one problem has warning severity.
func (p Problems) IsWarning() bool {
	return p.has(SeverityWarning)
}

// IsOK reports whether nothing blocks calculation.
func (p Problems) IsOK() bool {
	return !p.IsError()
}

func (p Problems) has(s Severity) bool {
	for _, it := range p.items {
		if it.Severity == s {
			return true
		}
	}
	return false
}

// All returns a copy of the problems in insertion order.
func (p Problems) All() []ValidationProblem {
	return slices.Clone(p.items)
}

// Errors returns the error-severity problems.
func (p Problems) Errors() []ValidationProblem {
	return p.filter(SeverityError)
}

// Warnings returns the warning-severity problems.
func (p Problems) Warnings() []ValidationProblem {
	return p.filter(SeverityWarning)
}

func (p Problems) filter(s Severity) []ValidationProblem {
	var out []ValidationProblem
	for _, it := range p.items {
		if it.Severity == s {
			out = append(out, it)
		}
	}
	return out
}

// Sorted returns a copy of the problems in display order.
func (p Problems) Sorted() []ValidationProblem {
	out := p.All()
	SortProblems(out)
	return out
}

// Clone returns an independent copy.
func (p Problems) Clone() Problems {
	return Problems{items: p.All()}
}

// Err returns nil when there are no error problems, otherwise an
// *AggregateError holding them.
func (p Problems) Err() error {
	errs := p.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Problems: errs}
}

func (p *Problems) clear() {
	p.items = nil
}

// AggregateError reports multiple error problems as one Go error.
type AggregateError struct {
	Problems []ValidationProblem
}

func (e *AggregateError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, p.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual problems to errors.Is / errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p
	}
	return errs
}
