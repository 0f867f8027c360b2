package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Assembly errors, raised while a pipeline is being composed.
const (
	// ErrCodeCompositionType indicates an operator was applied to an illegal pair of stage kinds.
	ErrCodeCompositionType ErrorCode = "COMPOSITION_TYPE"
	// ErrCodeInvalidStage indicates a value could not be turned into a stage.
	ErrCodeInvalidStage ErrorCode = "INVALID_STAGE"
	// ErrCodeDuplicateOutput indicates two terminals publish under the same name.
	ErrCodeDuplicateOutput ErrorCode = "DUPLICATE_OUTPUT"
)

// Binding errors, raised when a pipeline is invoked.
const (
	// ErrCodeUnboundVariable indicates one or more slots were left unbound.
	ErrCodeUnboundVariable ErrorCode = "UNBOUND_VARIABLE"
	// ErrCodeInvalidBinding indicates a bound value cannot fill its slot.
	ErrCodeInvalidBinding ErrorCode = "INVALID_BINDING"
)

// Run errors.
const (
	// ErrCodeEmptyStream indicates a fold without an initial value received no items.
	ErrCodeEmptyStream ErrorCode = "EMPTY_STREAM"
	// ErrCodeStageFailed indicates a user function failed while handling an item.
	ErrCodeStageFailed ErrorCode = "STAGE_FAILED"
	// ErrCodeRunCancelled indicates the run context ended before the input was exhausted.
	ErrCodeRunCancelled ErrorCode = "RUN_CANCELLED"
)

// Generic errors.
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var assemblyCodes = map[ErrorCode]bool{
	ErrCodeCompositionType: true,
	ErrCodeInvalidStage:    true,
	ErrCodeDuplicateOutput: true,
}

// IsAssemblyCode returns true if the code is raised while composing a
// pipeline rather than while running it.
func IsAssemblyCode(code ErrorCode) bool {
	return assemblyCodes[code]
}
