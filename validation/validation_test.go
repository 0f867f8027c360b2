package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/typedflow/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "stats")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorIdentifier(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"total", true},
		{"_private", true},
		{"a1_b2", true},
		{"A", true},
		{"", false},
		{"1abc", false},
		{"has.dot", false},
		{"has space", false},
		{"dash-ed", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			v := New().Identifier("get", tc.value)
			if v.HasErrors() == tc.valid {
				t.Errorf("Identifier(%q): valid=%v, errors=%v", tc.value, tc.valid, v.Errors())
			}
		})
	}
}

func TestValidatorDistinct(t *testing.T) {
	v := New().Distinct("put", []string{"a", "b", "a"})
	if !v.HasErrors() {
		t.Fatal("expected duplicate error")
	}
	if !strings.Contains(v.Errors()[0].Message, `"a"`) {
		t.Errorf("expected duplicate name in message, got %q", v.Errors()[0].Message)
	}
	if New().Distinct("put", []string{"a", "b"}).HasErrors() {
		t.Error("expected no error for distinct names")
	}
}

func TestValidatorMinCount(t *testing.T) {
	if !New().MinCount("pick", 0, 1).HasErrors() {
		t.Error("expected error for empty list")
	}
	if New().MinCount("pick", 2, 1).HasErrors() {
		t.Error("expected no error")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"error", "absent"}
	if New().OneOf("empty_fold", "absent", allowed).HasErrors() {
		t.Error("expected valid")
	}
	if New().OneOf("empty_fold", "", allowed).HasErrors() {
		t.Error("empty values are skipped")
	}
	if !New().OneOf("empty_fold", "zero", allowed).HasErrors() {
		t.Error("expected error for unknown value")
	}
}

func TestValidatorCustom(t *testing.T) {
	if New().Custom(true, "x", "bad").HasErrors() {
		t.Error("expected no error when condition holds")
	}
	if !New().Custom(false, "x", "bad").HasErrors() {
		t.Error("expected error when condition fails")
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil {
		t.Error("expected nil for no errors")
	}

	appErr := New().Required("a", "").Identifier("b", "1x").Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", appErr.Details["fields"])
	}
	if !strings.Contains(appErr.Message, "a: is required") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("name", "stats").Identifier("name", "stats").Distinct("names", []string{"x"})
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestStructValidateValid(t *testing.T) {
	type Engine struct {
		EmptyFold string `mapstructure:"empty_fold" validate:"oneof=error absent"`
	}

	if err := Validate(Engine{EmptyFold: "error"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid_UsesConfigKeys(t *testing.T) {
	type Telemetry struct {
		SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	}
	type Root struct {
		Name      string    `mapstructure:"name" validate:"required"`
		Telemetry Telemetry `mapstructure:"telemetry"`
	}

	err := Validate(Root{Telemetry: Telemetry{SampleRate: 2}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "name: is required") {
		t.Errorf("expected error to mention 'name', got %q", errStr)
	}
	if !strings.Contains(errStr, "telemetry.sample_rate") {
		t.Errorf("expected nested config key, got %q", errStr)
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("name", "value"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected error for empty required field")
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("EmptyFold"); got != "empty_fold" {
		t.Errorf("got %q", got)
	}
}
