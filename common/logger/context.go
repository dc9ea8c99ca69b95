package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log line written with a context that
// carries them.
type LogFields struct {
	SessionID    *int64  // Planning session ID
	EvaluationID *int64  // Scored plan evaluation ID
	PlanID       *string // Generator-assigned plan ID
	Phase        *string // Session phase (INTAKE, SYNTHESIS, ...)
	Component    string  // Component name, e.g. "planner.brain.analyst"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, newer LogFields) LogFields {
	result := existing

	if newer.SessionID != nil {
		result.SessionID = newer.SessionID
	}
	if newer.EvaluationID != nil {
		result.EvaluationID = newer.EvaluationID
	}
	if newer.PlanID != nil {
		result.PlanID = newer.PlanID
	}
	if newer.Phase != nil {
		result.Phase = newer.Phase
	}
	if newer.Component != "" {
		result.Component = newer.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// Used for logging raw model output.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
