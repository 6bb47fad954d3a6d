package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents malformed or missing input detected locally
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents a missing or foreign campaign/entity
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeTransport represents network/HTTP failures reaching a collaborator
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeMalformedResponse represents a collaborator response with the wrong shape
	ErrorTypeMalformedResponse ErrorType = "malformed_response"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// ValidationError is returned when input is malformed or a required field is missing.
// It never reaches the network.
type ValidationError struct {
	*BaseError
	Field string
}

func NewValidation(field, reason string) *ValidationError {
	msg := reason
	if field != "" {
		msg = fmt.Sprintf("%s: %s", field, reason)
	}
	return &ValidationError{
		BaseError: NewBaseError(ErrorTypeValidation, msg, nil),
		Field:     field,
	}
}

// WrapValidation wraps a lower-level validation failure (ozzo, json) as a ValidationError
func WrapValidation(field string, err error) *ValidationError {
	return &ValidationError{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s", field), err),
		Field:     field,
	}
}

// NotFoundError is returned when a campaign or entity is absent or not owned by the caller
type NotFoundError struct {
	*BaseError
	Kind string
	ID   string
}

func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, id), nil),
		Kind:      kind,
		ID:        id,
	}
}

// TransportError is returned when the persistence gateway or AI collaborator cannot be reached
// or answers with a non-2xx status. StatusCode is zero for connection-level failures.
type TransportError struct {
	*BaseError
	Operation  string
	StatusCode int
}

func NewTransport(operation string, statusCode int, err error) *TransportError {
	msg := fmt.Sprintf("%s failed", operation)
	if statusCode != 0 {
		msg = fmt.Sprintf("%s failed with status %d", operation, statusCode)
	}
	return &TransportError{
		BaseError:  NewBaseError(ErrorTypeTransport, msg, err),
		Operation:  operation,
		StatusCode: statusCode,
	}
}

// MalformedResponseError is returned when a collaborator answered but violated the expected shape
type MalformedResponseError struct {
	*BaseError
	Operation string
	Reason    string
}

func NewMalformedResponse(operation, reason string, err error) *MalformedResponseError {
	return &MalformedResponseError{
		BaseError: NewBaseError(ErrorTypeMalformedResponse, fmt.Sprintf("malformed %s response: %s", operation, reason), err),
		Operation: operation,
		Reason:    reason,
	}
}

// ConfigError is returned when configuration validation fails
type ConfigError struct {
	*BaseError
	Field string
}

func NewConfig(field string, err error) *ConfigError {
	return &ConfigError{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("invalid config: %s", field), err),
		Field:     field,
	}
}

// Helper functions

type typed interface {
	errorType() ErrorType
	message() string
}

func (e *BaseError) errorType() ErrorType { return e.Type }

func (e *BaseError) message() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := err.(typed); ok && t.errorType() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

func IsValidation(err error) bool { return IsErrorType(err, ErrorTypeValidation) }

func IsNotFound(err error) bool { return IsErrorType(err, ErrorTypeNotFound) }

func IsTransport(err error) bool { return IsErrorType(err, ErrorTypeTransport) }

func IsMalformedResponse(err error) bool { return IsErrorType(err, ErrorTypeMalformedResponse) }

// HTTPStatus maps an error kind to the status the API answers with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsTransport(err), IsMalformedResponse(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns the error type carried by err, or "" for untyped errors
func Kind(err error) ErrorType {
	for err != nil {
		if t, ok := err.(typed); ok {
			return t.errorType()
		}
		err = stderrors.Unwrap(err)
	}
	return ""
}

// Message returns the text of the first typed error in the chain without its kind prefix,
// or err.Error() for untyped errors
func Message(err error) string {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if t, ok := e.(typed); ok {
			return t.message()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// FromResponse rebuilds a typed error from an API error body on the client side.
// kind is the "kind" field the API sends next to "error"; the status is the fallback.
func FromResponse(operation string, statusCode int, kind ErrorType, message string) error {
	switch {
	case kind == ErrorTypeValidation || (kind == "" && statusCode == http.StatusBadRequest):
		return NewValidation("", message)
	case kind == ErrorTypeNotFound || (kind == "" && (statusCode == http.StatusNotFound || statusCode == http.StatusForbidden)):
		return NewNotFound(operation, message)
	case kind == ErrorTypeMalformedResponse:
		return NewMalformedResponse(operation, message, nil)
	default:
		return NewTransport(operation, statusCode, stderrors.New(message))
	}
}
