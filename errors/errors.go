package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified typedflow error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Assembly errors ---

// CompositionType creates an error for an operator applied to an operand
// pair that the legality matrix does not allow.
func CompositionType(op, lhs, rhs string) *AppError {
	return &AppError{
		Code:    ErrCodeCompositionType,
		Message: fmt.Sprintf("cannot %s %s with %s", op, lhs, rhs),
		Details: map[string]any{"op": op, "lhs": lhs, "rhs": rhs},
	}
}

// InvalidStage creates an error for a value that cannot be used as a stage.
func InvalidStage(what, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidStage,
		Message: fmt.Sprintf("invalid stage %s: %s", what, reason),
		Details: map[string]any{"stage": what},
	}
}

// DuplicateOutput creates an error for two terminals sharing an output name.
func DuplicateOutput(name string) *AppError {
	return &AppError{
		Code:    ErrCodeDuplicateOutput,
		Message: fmt.Sprintf("output %q is produced by more than one terminal; name them with Out", name),
		Details: map[string]any{"output": name},
	}
}

// --- Binding errors ---

// UnboundVariables creates a single error naming every unbound slot. Names
// are reported in the order given; callers sort them beforehand.
func UnboundVariables(names []string) *AppError {
	var b strings.Builder
	b.WriteString("network cannot run because the following variables are not set: ")
	b.WriteString(strings.Join(names, " "))
	for _, name := range names {
		switch name {
		case "IN":
			b.WriteString("\nSet IN by providing a source.")
		case "OUT":
			b.WriteString("\nSet OUT by providing a sink.")
		}
	}
	return &AppError{
		Code:    ErrCodeUnboundVariable,
		Message: b.String(),
		Details: map[string]any{"variables": names},
	}
}

// InvalidBinding creates an error for a bound value that cannot fill its slot.
func InvalidBinding(name, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidBinding,
		Message: fmt.Sprintf("variable %s: %s", name, reason),
		Details: map[string]any{"variable": name},
	}
}

// --- Run errors ---

// EmptyStream creates an error for a fold that saw no items and has no
// initial value to fall back on.
func EmptyStream(output string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyStream,
		Message: fmt.Sprintf("fold for output %q received no items and has no initial value", output),
		Details: map[string]any{"output": output},
	}
}

// StageFailed wraps an error returned by a user function.
func StageFailed(stage string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeStageFailed,
		Message: fmt.Sprintf("stage %s failed", stage),
		Details: map[string]any{"stage": stage},
		Cause:   cause,
	}
}

// RunCancelled wraps the context error that ended a run.
func RunCancelled(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeRunCancelled,
		Message: "run cancelled before the input was exhausted",
		Cause:   cause,
	}
}

// --- Generic errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, id),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsCompositionError reports whether err is a composition type error.
func IsCompositionError(err error) bool { return HasCode(err, ErrCodeCompositionType) }

// IsUnbound reports whether err is an unbound-variable error.
func IsUnbound(err error) bool { return HasCode(err, ErrCodeUnboundVariable) }

// IsEmptyStream reports whether err is an empty-stream fold error.
func IsEmptyStream(err error) bool { return HasCode(err, ErrCodeEmptyStream) }
