// Package errors provides the structured error type used across typedflow.
// Every failure carries a machine-readable code, a human-readable message
// and optional details, so callers can branch on the code with HasCode or
// errors.As instead of matching message text.
package errors
