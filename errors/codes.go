package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution errors
const (
	// ErrCodeUnresolvableName indicates no definition exists for the requested name.
	ErrCodeUnresolvableName ErrorCode = "UNRESOLVABLE_NAME"
	// ErrCodeCircularDependency indicates a cycle that no early reference could break.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeCreationFailed indicates a hook or factory failed while constructing an instance.
	ErrCodeCreationFailed ErrorCode = "CREATION_FAILED"
)

// Scope errors
const (
	// ErrCodeScopeNotActive indicates the scope's storage context is not available.
	ErrCodeScopeNotActive ErrorCode = "SCOPE_NOT_ACTIVE"
	// ErrCodeUnsupportedScopeOperation indicates the scope cannot perform the requested operation.
	ErrCodeUnsupportedScopeOperation ErrorCode = "UNSUPPORTED_SCOPE_OPERATION"
)

// Container errors
const (
	// ErrCodeContainerNotActive indicates the container has no live generation.
	ErrCodeContainerNotActive ErrorCode = "CONTAINER_NOT_ACTIVE"
	// ErrCodeInvalidDefinition indicates a definition failed validation or registration.
	ErrCodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"
	// ErrCodeIllegalState indicates an operation is not allowed in the current state.
	ErrCodeIllegalState ErrorCode = "ILLEGAL_STATE"
)

// configurationCodes are codes caused by the registered definitions rather than by
// the runtime environment. Retrying the same call cannot succeed.
var configurationCodes = map[ErrorCode]bool{
	ErrCodeUnresolvableName:   true,
	ErrCodeCircularDependency: true,
	ErrCodeInvalidDefinition:  true,
}

// IsConfigurationCode returns true if the code points at a definition problem.
func IsConfigurationCode(code ErrorCode) bool {
	return configurationCodes[code]
}
