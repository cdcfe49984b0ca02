package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeDataset represents a failure inside a dataset operation
	ErrTypeDataset ErrorType = "dataset"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeMode represents operations invoked outside their required mode
	ErrTypeMode ErrorType = "mode"
	// ErrTypeMissingEnv represents unresolvable environment placeholders
	ErrTypeMissingEnv ErrorType = "missing_env"
	// ErrTypeInvalidLogLevel represents log calls with an unknown level
	ErrTypeInvalidLogLevel ErrorType = "invalid_log_level"
	// ErrTypeConnection represents connection-related errors
	ErrTypeConnection ErrorType = "connection"
	// ErrTypeValidation represents validation errors
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
	// ErrTypeTimeout represents timeout errors
	ErrTypeTimeout ErrorType = "timeout"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// DatasetError creates a dataset error naming the dataset and the failed
// operation, wrapping the original cause.
func DatasetError(dataset, op string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeDataset,
		Message: fmt.Sprintf("failed to %s dataset %s", op, dataset),
		Cause:   cause,
		Context: map[string]interface{}{"dataset": dataset},
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// ModeError creates an error for an operation called outside its required
// mode, naming the precondition the caller must establish.
func ModeError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeMode,
		Message: msg,
	}
}

// MissingEnvError creates an error for an unresolvable environment variable
func MissingEnvError(name string) *AppError {
	return &AppError{
		Type:    ErrTypeMissingEnv,
		Message: fmt.Sprintf("failed to inject environment variable: %s was not found", name),
		Context: map[string]interface{}{"variable": name},
	}
}

// InvalidLogLevelError creates an error for an unknown log level, listing
// the valid options.
func InvalidLogLevelError(level string, valid []string) *AppError {
	return &AppError{
		Type:    ErrTypeInvalidLogLevel,
		Message: fmt.Sprintf("invalid logging level %s, valid options are: %s", level, strings.Join(valid, ", ")),
		Context: map[string]interface{}{"level": level},
	}
}

// ConnectionError creates a new connection error
func ConnectionError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeConnection,
		Message: msg,
		Cause:   cause,
	}
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// TimeoutError creates a new timeout error
func TimeoutError(operation string) *AppError {
	return &AppError{
		Type:    ErrTypeTimeout,
		Message: fmt.Sprintf("timeout during %s", operation),
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return ErrTypeInternal
	}

	return appErr.Type
}
