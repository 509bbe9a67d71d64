// Package errors provides the structured error type shared by the container,
// the module registration pipeline, and the lazy activation gate. Errors carry
// a machine-readable code, optional details, and an HTTP status used by the
// IPC bridge when serializing failures.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
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
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// IsCode reports whether err is (or wraps) an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// --- Container errors ---

// ModuleNotRegistered creates the error for provider registration against an
// unknown module.
func ModuleNotRegistered(module string) *AppError {
	return &AppError{
		Code: ErrCodeModuleNotRegistered, Message: fmt.Sprintf("module %q is not registered; call AddModule first", module),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module},
	}
}

// ProviderNotFound creates the error for a token that is neither provided
// locally nor reachable through imports.
func ProviderNotFound(token, module string) *AppError {
	return &AppError{
		Code: ErrCodeProviderNotFound, Message: fmt.Sprintf("no provider for token %q in module %q or its imports", token, module),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"token": token, "module": module},
	}
}

// InvalidProvider creates the error for a providers entry that is neither a
// constructor function nor a Provide descriptor.
func InvalidProvider(module string, entry any) *AppError {
	return &AppError{
		Code: ErrCodeInvalidProvider, Message: fmt.Sprintf("module %q declares an invalid provider entry of type %T", module, entry),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module, "entry_type": fmt.Sprintf("%T", entry)},
	}
}

// InvalidConstructor creates the error for a value that cannot be used as a
// constructor or factory.
func InvalidConstructor(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConstructor, Message: reason,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// DependencyCycle creates the error for a resolution chain that re-enters an
// in-progress (module, token) pair.
func DependencyCycle(chain []string) *AppError {
	return &AppError{
		Code: ErrCodeDependencyCycle, Message: fmt.Sprintf("dependency cycle detected: %v", chain),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"chain": chain},
	}
}

// --- Module descriptor errors ---

// ModuleDescriptorMissing creates the error for a module reference passed to
// bootstrap without a descriptor.
func ModuleDescriptorMissing(module string) *AppError {
	return &AppError{
		Code: ErrCodeModuleDescriptorMissing, Message: fmt.Sprintf("module %q has no descriptor", module),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module},
	}
}

// LazyModuleExportsNotAllowed creates the error for a lazy module declaring
// exports.
func LazyModuleExportsNotAllowed(module string) *AppError {
	return &AppError{
		Code: ErrCodeLazyModuleExportsNotAllowed, Message: fmt.Sprintf("lazy module %q must not declare exports", module),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module},
	}
}

// LazyModuleImportsLazy creates the error for a lazy module importing another
// lazy module.
func LazyModuleImportsLazy(module, imported string) *AppError {
	return &AppError{
		Code: ErrCodeLazyModuleImportsLazy, Message: fmt.Sprintf("lazy module %q cannot import lazy module %q", module, imported),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module, "imported": imported},
	}
}

// EagerModuleImportsLazy creates the error for an eager module importing a
// lazy module.
func EagerModuleImportsLazy(module, imported string) *AppError {
	return &AppError{
		Code: ErrCodeEagerModuleImportsLazy, Message: fmt.Sprintf("eager module %q cannot import lazy module %q", module, imported),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module, "imported": imported},
	}
}

// --- Lazy trigger errors ---

// InvalidLazyTrigger creates the error for a malformed lazy trigger name.
func InvalidLazyTrigger(module string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidLazyTrigger, Message: fmt.Sprintf("lazy module %q declares an empty trigger name", module),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module},
	}
}

// DuplicateLazyTrigger creates the error for two lazy modules sharing one
// trigger name.
func DuplicateLazyTrigger(trigger string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateLazyTrigger, Message: fmt.Sprintf("lazy trigger %q is already registered", trigger),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"trigger": trigger},
	}
}

// --- Collaborator errors ---

// SettingsNotInitialized creates the error for settings access before Init.
func SettingsNotInitialized() *AppError {
	return &AppError{
		Code: ErrCodeSettingsNotInitialized, Message: "settings accessed before Init",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// ChannelNotFound creates the error for an IPC invocation on an unknown
// channel.
func ChannelNotFound(channel string) *AppError {
	return &AppError{
		Code: ErrCodeChannelNotFound, Message: fmt.Sprintf("no handler registered for channel %q", channel),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"channel": channel},
	}
}

// Internal creates a generic internal error wrapping a cause.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: message,
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
