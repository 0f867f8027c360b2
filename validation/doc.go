// Package validation provides input validation for typedflow.
//
// Struct tag validation (using go-playground/validator) checks loaded
// configuration; the fluent Validator checks names handed to slot
// constructors. Both report failures as an *errors.AppError with code
// INVALID_INPUT and the per-field messages in Details["fields"].
//
// # Struct Tag Validation
//
//	type EngineConfig struct {
//	    EmptyFold string `mapstructure:"empty_fold" validate:"oneof=error absent"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().Identifier("get", name).Validate()
package validation
