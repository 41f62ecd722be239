package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInvalidInput represents malformed or rejected caller input
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeNotFound represents an identifier that could not be resolved or created
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeStoreUnavailable represents transport or timeout failures against the graph store
	ErrorTypeStoreUnavailable ErrorType = "store_unavailable"
	// ErrorTypePartialBatch represents a bulk operation that skipped some rows
	ErrorTypePartialBatch ErrorType = "partial_batch"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
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

// Kind returns the error category. The typed wrappers embed *BaseError,
// so they all promote this method; classification goes through it rather
// than a concrete type assertion.
func (e *BaseError) Kind() ErrorType {
	return e.Type
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

// Input Errors

// ErrInvalidInput is returned when caller input fails validation
type ErrInvalidInput struct {
	*BaseError
	Field  string
	Reason string
}

func NewInvalidInput(field, reason string) *ErrInvalidInput {
	return &ErrInvalidInput{
		BaseError: NewBaseError(ErrorTypeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrSelfFollow is returned when a user attempts to follow themselves
type ErrSelfFollow struct {
	*BaseError
	UserID string
}

func NewSelfFollow(userID string) *ErrSelfFollow {
	return &ErrSelfFollow{
		BaseError: NewBaseError(ErrorTypeInvalidInput, fmt.Sprintf("user cannot follow itself: %s", userID), nil),
		UserID:    userID,
	}
}

// ErrUnknownInteraction is returned for an unrecognized interaction type
type ErrUnknownInteraction struct {
	*BaseError
	Kind string
}

func NewUnknownInteraction(kind string) *ErrUnknownInteraction {
	return &ErrUnknownInteraction{
		BaseError: NewBaseError(ErrorTypeInvalidInput, fmt.Sprintf("unknown interaction type: %s", kind), nil),
		Kind:      kind,
	}
}

// Resolution Errors

// ErrNodeNotFound is returned when an identifier cannot be resolved or created
type ErrNodeNotFound struct {
	*BaseError
	Kind string // "user" or "post"
	ID   string
}

func NewNodeNotFound(kind, id string, err error) *ErrNodeNotFound {
	return &ErrNodeNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, id), err),
		Kind:      kind,
		ID:        id,
	}
}

// Store Errors

// ErrStoreUnavailable is returned when the graph store cannot be reached
// or an in-flight query fails at the transport level
type ErrStoreUnavailable struct {
	*BaseError
	Operation string
}

func NewStoreUnavailable(operation string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeStoreUnavailable, fmt.Sprintf("store operation failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrStoreConnectionFailed is returned when the initial connection fails
type ErrStoreConnectionFailed struct {
	*BaseError
	URI string
}

func NewStoreConnectionFailed(uri string, err error) *ErrStoreConnectionFailed {
	return &ErrStoreConnectionFailed{
		BaseError: NewBaseError(ErrorTypeStoreUnavailable, fmt.Sprintf("failed to connect to graph store: %s", uri), err),
		URI:       uri,
	}
}

// Batch Errors

// ErrPartialBatch is returned when every row of a bulk operation was skipped.
// A non-zero skip count alongside loaded rows is reported as a count, not an error.
type ErrPartialBatch struct {
	*BaseError
	BatchID string
	Skipped int
}

func NewPartialBatch(batchID string, skipped int) *ErrPartialBatch {
	return &ErrPartialBatch{
		BaseError: NewBaseError(ErrorTypePartialBatch, fmt.Sprintf("batch %s: all %d rows skipped", batchID, skipped), nil),
		BatchID:   batchID,
		Skipped:   skipped,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// ErrContextTimeout is returned when context times out
type ErrContextTimeout struct {
	*BaseError
	Operation string
	Timeout   time.Duration
}

func NewContextTimeout(operation string, timeout time.Duration) *ErrContextTimeout {
	return &ErrContextTimeout{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context timeout: %s (timeout: %v)", operation, timeout), nil),
		Operation: operation,
		Timeout:   timeout,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type. The typed wrappers
// satisfy the Kind interface through their embedded *BaseError; the Unwrap
// walk covers errors wrapped further with fmt.Errorf and %w.
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if kinded, ok := err.(interface{ Kind() ErrorType }); ok {
		return kinded.Kind() == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(wrapped.Unwrap(), errType)
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Store transport failures are retryable
	if IsErrorType(err, ErrorTypeStoreUnavailable) {
		return true
	}
	return false
}
