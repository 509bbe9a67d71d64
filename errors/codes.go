package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Container errors
const (
	// ErrCodeModuleNotRegistered indicates provider registration was attempted
	// on a module that has not been added to the container.
	ErrCodeModuleNotRegistered ErrorCode = "MODULE_NOT_REGISTERED"
	// ErrCodeProviderNotFound indicates resolution failed for a token neither
	// provided locally nor reachable via imports.
	ErrCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	// ErrCodeInvalidProvider indicates a providers entry with an unsupported shape.
	ErrCodeInvalidProvider ErrorCode = "INVALID_PROVIDER"
	// ErrCodeInvalidConstructor indicates a value that is not a usable constructor.
	ErrCodeInvalidConstructor ErrorCode = "INVALID_CONSTRUCTOR"
	// ErrCodeDependencyCycle indicates a resolution chain that depends on itself.
	ErrCodeDependencyCycle ErrorCode = "DEPENDENCY_CYCLE"
)

// Module descriptor errors
const (
	// ErrCodeModuleDescriptorMissing indicates a module reference without a descriptor.
	ErrCodeModuleDescriptorMissing ErrorCode = "MODULE_DESCRIPTOR_MISSING"
	// ErrCodeLazyModuleExportsNotAllowed indicates a lazy module declaring exports.
	ErrCodeLazyModuleExportsNotAllowed ErrorCode = "LAZY_MODULE_EXPORTS_NOT_ALLOWED"
	// ErrCodeLazyModuleImportsLazy indicates a lazy module importing a lazy module.
	ErrCodeLazyModuleImportsLazy ErrorCode = "LAZY_MODULE_IMPORTS_LAZY"
	// ErrCodeEagerModuleImportsLazy indicates an eager module importing a lazy module.
	ErrCodeEagerModuleImportsLazy ErrorCode = "EAGER_MODULE_IMPORTS_LAZY"
)

// Lazy trigger errors
const (
	// ErrCodeInvalidLazyTrigger indicates a trigger name that is empty after trimming.
	ErrCodeInvalidLazyTrigger ErrorCode = "INVALID_LAZY_TRIGGER"
	// ErrCodeDuplicateLazyTrigger indicates two lazy modules sharing a trigger name.
	ErrCodeDuplicateLazyTrigger ErrorCode = "DUPLICATE_LAZY_TRIGGER"
)

// Collaborator errors
const (
	// ErrCodeSettingsNotInitialized indicates settings access before Init.
	ErrCodeSettingsNotInitialized ErrorCode = "SETTINGS_NOT_INITIALIZED"
	// ErrCodeChannelNotFound indicates an IPC invocation on an unknown channel.
	ErrCodeChannelNotFound ErrorCode = "CHANNEL_NOT_FOUND"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
