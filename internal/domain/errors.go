package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Draft specific errors
	CodeDraftNotFound   ErrorCode = "DRAFT_NOT_FOUND"
	CodeSaveInProgress  ErrorCode = "SAVE_IN_PROGRESS"
	CodeSaveFailed      ErrorCode = "SAVE_FAILED"
	CodeParentCreate    ErrorCode = "PARENT_CREATE_FAILED"
	CodeCMSUnavailable  ErrorCode = "CMS_UNAVAILABLE"
	CodeCMSBadResponse  ErrorCode = "CMS_BAD_RESPONSE"
	CodeOptionImmutable ErrorCode = "OPTION_IMMUTABLE"
	CodeOptionFloor     ErrorCode = "OPTION_FLOOR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext attaches a key/value pair for the error handler to expose.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewDraftNotFoundError(lessonID string) *DomainError {
	return NewError(CodeDraftNotFound, fmt.Sprintf("No draft loaded for lesson: %s", lessonID), nil)
}

func NewSaveInProgressError(lessonID string) *DomainError {
	return NewError(CodeSaveInProgress, fmt.Sprintf("A save is already running for lesson: %s", lessonID), nil)
}

func NewParentCreateError(lessonID string, cause error) *DomainError {
	return NewError(CodeParentCreate, fmt.Sprintf("Failed to create parent document for lesson: %s", lessonID), cause)
}

func NewCMSError(message string, cause error) *DomainError {
	return NewError(CodeCMSUnavailable, message, cause)
}

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func NewValidationError(message string) ValidationError {
	return ValidationError{Message: message}
}

func NewFieldValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("%s is required", field)}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("%s has an invalid format: %s", field, value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("%s must be between %d and %d, got %d", field, min, max, value)}
}

// ValidationErrors aggregates validation failures for one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}
