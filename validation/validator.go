package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kbukum/typedflow/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": v.errors,
	}

	return appErr
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Identifier checks that a non-empty value is a plain identifier: a letter or
// underscore followed by letters, digits or underscores.
func (v *Validator) Identifier(field, value string) *Validator {
	if value == "" {
		v.AddError(field, "is required")
		return v
	}
	if !identifierPattern.MatchString(value) {
		v.AddError(field, fmt.Sprintf("%q is not a valid identifier", value))
	}
	return v
}

// Distinct checks that no value appears twice.
func (v *Validator) Distinct(field string, values []string) *Validator {
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		if seen[value] {
			v.AddError(field, fmt.Sprintf("%q appears more than once", value))
			continue
		}
		seen[value] = true
	}
	return v
}

// MinCount checks that a list holds at least n entries.
func (v *Validator) MinCount(field string, count, n int) *Validator {
	if count < n {
		v.AddError(field, fmt.Sprintf("needs at least %d entries", n))
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required validates a single required field and returns an error if empty.
func Required(field, value string) error {
	v := New().Required(field, value)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
