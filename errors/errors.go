package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified container error type.
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

// --- Constructors ---

// UnresolvableName creates an error for a name with no definition.
func UnresolvableName(name string) *AppError {
	return &AppError{
		Code:    ErrCodeUnresolvableName,
		Message: fmt.Sprintf("No managed definition named '%s'", name),
		Details: map[string]any{"name": name},
	}
}

// CircularDependency creates an error for a cycle that could not be broken.
// chain lists the names in resolution order, ending with the repeated name.
func CircularDependency(chain []string) *AppError {
	c := append([]string(nil), chain...)
	return &AppError{
		Code:    ErrCodeCircularDependency,
		Message: fmt.Sprintf("Circular dependency with no early reference: %s", strings.Join(c, " -> ")),
		Details: map[string]any{"chain": c},
	}
}

// CreationFailed wraps the cause of a failed construction of name.
func CreationFailed(name string, chain []string, cause error) *AppError {
	c := append([]string(nil), chain...)
	return &AppError{
		Code:    ErrCodeCreationFailed,
		Message: fmt.Sprintf("Error creating '%s' (chain: %s)", name, strings.Join(c, " -> ")),
		Details: map[string]any{"name": name, "chain": c},
		Cause:   cause,
	}
}

// ScopeNotActive creates an error for a scope without an active storage context.
func ScopeNotActive(scope, name string) *AppError {
	return &AppError{
		Code:    ErrCodeScopeNotActive,
		Message: fmt.Sprintf("Scope '%s' is not active for '%s'", scope, name),
		Details: map[string]any{"scope": scope, "name": name},
	}
}

// UnsupportedScopeOperation creates an error for an operation a scope cannot perform.
func UnsupportedScopeOperation(scope, operation string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedScopeOperation,
		Message: fmt.Sprintf("Scope '%s' does not support %s", scope, operation),
		Details: map[string]any{"scope": scope, "operation": operation},
	}
}

// ContainerNotActive creates an error for a call that needs a live generation.
func ContainerNotActive(state string) *AppError {
	return &AppError{
		Code:    ErrCodeContainerNotActive,
		Message: fmt.Sprintf("Container is not active (state: %s)", state),
		Details: map[string]any{"state": state},
	}
}

// InvalidDefinition creates an error for a rejected definition.
func InvalidDefinition(name, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidDefinition,
		Message: fmt.Sprintf("Invalid definition '%s': %s", name, reason),
		Details: map[string]any{"name": name},
	}
}

// IllegalState creates an error for an operation the current state forbids.
func IllegalState(reason string) *AppError {
	return &AppError{Code: ErrCodeIllegalState, Message: reason}
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

// Find walks the cause chain and returns the first AppError with the given code.
func Find(err error, code ErrorCode) (*AppError, bool) {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return appErr, true
		}
		err = stderrors.Unwrap(err)
	}
	return nil, false
}

// HasCode reports whether any error in the cause chain carries code.
func HasCode(err error, code ErrorCode) bool {
	_, ok := Find(err, code)
	return ok
}

// Chain returns the dependency chain attached to the outermost error that has one.
func Chain(err error) []string {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			if chain, ok := appErr.Details["chain"].([]string); ok {
				return chain
			}
		}
		err = stderrors.Unwrap(err)
	}
	return nil
}
