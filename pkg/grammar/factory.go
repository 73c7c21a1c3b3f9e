package grammar

import "github.com/aretw0/polyglotter/pkg/i18n"

// Localizer renders a message for key with args. Implementations must be total.
type Localizer func(key string, args ...any) string

// NewProblem creates a validation problem.
func NewProblem(source Identifier, severity Severity, message string) ValidationProblem {
	return ValidationProblem{SourceID: source, Severity: severity, Message: message}
}

// NewError creates an error-severity problem.
func NewError(source Identifier, message string) ValidationProblem {
	return NewProblem(source, SeverityError, message)
}

// NewWarning creates a warning-severity problem.
func NewWarning(source Identifier, message string) ValidationProblem {
	return NewProblem(source, SeverityWarning, message)
}

// NewInfo creates an info-severity problem.
func NewInfo(source Identifier, message string) ValidationProblem {
	return NewProblem(source, SeverityInfo, message)
}

// NewOK creates an ok-severity problem.
func NewOK(source Identifier, message string) ValidationProblem {
	return NewProblem(source, SeverityOK, message)
}

// Factory builds problems whose messages come from a Localizer.
type Factory struct {
	Localize Localizer
}

// DefaultFactory uses the embedded i18n catalog.
var DefaultFactory = Factory{Localize: i18n.Text}

func (f Factory) text(key string, args ...any) string {
	if f.Localize == nil {
		return i18n.Text(key, args...)
	}
	return f.Localize(key, args...)
}

// Error creates an error problem from a message key.
func (f Factory) Error(source Identifier, key string, args ...any) ValidationProblem {
	return NewError(source, f.text(key, args...))
}

// Warning creates a warning problem from a message key.
func (f Factory) Warning(source Identifier, key string, args ...any) ValidationProblem {
	return NewWarning(source, f.text(key, args...))
}

// Info creates an info problem from a message key.
func (f Factory) Info(source Identifier, key string, args ...any) ValidationProblem {
	return NewInfo(source, f.text(key, args...))
}

// Text renders a message key.
func (f Factory) Text(key string, args ...any) string {
	return f.text(key, args...)
}
