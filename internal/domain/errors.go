package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Pipeline specific errors
	ErrExtractionFailed     ErrorCode = "EXTRACTION_FAILED"
	ErrMalformedLLMResponse ErrorCode = "MALFORMED_LLM_RESPONSE"
	ErrRunEmpty             ErrorCode = "RUN_EMPTY"
	ErrLLMServiceError      ErrorCode = "LLM_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
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
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

// NewExtractionError is returned when no text could be recovered from a
// source document. It is fatal to the run and never retried.
func NewExtractionError(message string, err error) *DomainError {
	return NewError(ErrExtractionFailed, message, err)
}

// NewMalformedResponseError marks an LLM response that is not a parseable
// JSON object of the expected shape. It is retried at the unit level.
func NewMalformedResponseError(message string) *DomainError {
	return NewError(ErrMalformedLLMResponse, message, nil)
}

// NewRunEmptyError is raised after all units have completed and the merged
// question list is still empty.
func NewRunEmptyError() *DomainError {
	return NewError(ErrRunEmpty,
		"no valid questions could be extracted; ensure the document contains properly formatted multiple choice questions", nil)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(ErrLLMServiceError, "Failed to process with LLM service", err)
}

// IsCode reports whether err is, or wraps, a DomainError carrying the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
