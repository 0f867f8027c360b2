package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidStage, "bad stage")
	if err.Code != ErrCodeInvalidStage {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidStage, err.Code)
	}
	if err.Message != "bad stage" {
		t.Errorf("expected message 'bad stage', got %q", err.Message)
	}
}

func TestAppError_CompositionType(t *testing.T) {
	err := CompositionType("chain", "sink", "pipe")
	if err.Code != ErrCodeCompositionType {
		t.Fatalf("expected COMPOSITION_TYPE, got %s", err.Code)
	}
	for _, key := range []string{"op", "lhs", "rhs"} {
		if _, ok := err.Details[key]; !ok {
			t.Errorf("expected detail %q", key)
		}
	}
	if !strings.Contains(err.Error(), "sink") || !strings.Contains(err.Error(), "pipe") {
		t.Errorf("expected both operand kinds in message, got %q", err.Error())
	}
	if !IsAssemblyCode(err.Code) {
		t.Error("composition errors belong to the assembly phase")
	}
}

func TestAppError_UnboundVariables_Hints(t *testing.T) {
	tests := []struct {
		name     string
		vars     []string
		contains []string
		excludes []string
	}{
		{"in and out", []string{"IN", "OUT"}, []string{"IN OUT", "Set IN by providing a source.", "Set OUT by providing a sink."}, nil},
		{"only get", []string{"A"}, []string{": A"}, []string{"Set IN", "Set OUT"}},
		{"in first", []string{"IN", "A", "B"}, []string{"IN A B", "Set IN"}, []string{"Set OUT"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := UnboundVariables(tc.vars)
			msg := err.Error()
			for _, want := range tc.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("expected %q in %q", want, msg)
				}
			}
			for _, unwanted := range tc.excludes {
				if strings.Contains(msg, unwanted) {
					t.Errorf("did not expect %q in %q", unwanted, msg)
				}
			}
			got, ok := err.Details["variables"].([]string)
			if !ok || len(got) != len(tc.vars) {
				t.Errorf("expected variables detail %v, got %v", tc.vars, err.Details["variables"])
			}
		})
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := StageFailed("square", nil).WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := NotFound("definition", "stats").WithDetails(map[string]any{
		"extra": "info",
	})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["resource"] != "definition" {
		t.Error("expected original details to be preserved")
	}

	err.WithDetails(map[string]any{"another": "detail"})
	if err.Details["another"] != "detail" {
		t.Error("expected another=detail to be merged")
	}
	if err.Details["extra"] != "info" {
		t.Error("expected extra=info to be preserved after second merge")
	}
}

func TestAppError_WithDetails_Nil(t *testing.T) {
	err := Internal(nil).WithDetails(nil)
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized even with nil input")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Internal(cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	err2 := EmptyStream("total")
	if err2.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     ErrorCode
		assembly bool
	}{
		{"CompositionType", CompositionType("terminate", "sink", "func"), ErrCodeCompositionType, true},
		{"InvalidStage", InvalidStage("Set", "needs one predicate"), ErrCodeInvalidStage, true},
		{"DuplicateOutput", DuplicateOutput("main"), ErrCodeDuplicateOutput, true},
		{"UnboundVariables", UnboundVariables([]string{"IN"}), ErrCodeUnboundVariable, false},
		{"InvalidBinding", InvalidBinding("OUT", "not a sink"), ErrCodeInvalidBinding, false},
		{"EmptyStream", EmptyStream("total"), ErrCodeEmptyStream, false},
		{"StageFailed", StageFailed("parse", nil), ErrCodeStageFailed, false},
		{"RunCancelled", RunCancelled(nil), ErrCodeRunCancelled, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if IsAssemblyCode(tc.err.Code) != tc.assembly {
				t.Errorf("expected assembly=%v for %s", tc.assembly, tc.code)
			}
		})
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	inner := EmptyStream("total")
	wrapped := fmt.Errorf("run failed: %w", inner)

	if !HasCode(wrapped, ErrCodeEmptyStream) {
		t.Error("expected HasCode to see through fmt.Errorf wrapping")
	}
	if !IsEmptyStream(wrapped) {
		t.Error("expected IsEmptyStream")
	}
	if IsUnbound(wrapped) || IsCompositionError(wrapped) {
		t.Error("unexpected code match")
	}
	if HasCode(stderrors.New("plain"), ErrCodeEmptyStream) {
		t.Error("plain errors carry no code")
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", InvalidBinding("IN", "not iterable")))
	if !ok || appErr.Code != ErrCodeInvalidBinding {
		t.Errorf("expected INVALID_BINDING, got %v", appErr)
	}
	if !IsAppError(appErr) {
		t.Error("expected IsAppError")
	}
}
