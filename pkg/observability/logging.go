package observability

import (
	"log/slog"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

// LoggingHooks logs every lifecycle event at debug level, and validations
// that end with errors at warn level.
func LoggingHooks(logger *slog.Logger) grammar.Hooks {
	if logger == nil {
		return grammar.Hooks{}
	}
	attrs := func(e *grammar.OperationEvent) []any {
		return []any{
			"transform", e.TransformID.String(),
			"operation", e.OperationID.String(),
			"state", e.State.String(),
		}
	}
	return grammar.Hooks{
		OnValidate: func(e *grammar.OperationEvent) {
			args := append(attrs(e), "problems", e.Problems, "errors", e.Errors, "duration", e.Duration)
			if e.Errors > 0 {
				logger.Warn("operation_invalid", args...)
				return
			}
			logger.Debug("operation_validated", args...)
		},
		OnCalculate: func(e *grammar.OperationEvent) {
			logger.Debug("operation_calculated", append(attrs(e), "duration", e.Duration)...)
		},
		OnInvalidate: func(e *grammar.OperationEvent) {
			args := attrs(e)
			if !e.Cause.IsZero() {
				args = append(args, "cause", e.Cause.String())
			}
			logger.Debug("operation_invalidated", args...)
		},
	}
}
