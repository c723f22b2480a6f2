package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"

	// Quiz lifecycle errors
	ErrIneligibleToStart   ErrorCode = "INELIGIBLE_TO_START"
	ErrInvalidAnswerIndex  ErrorCode = "INVALID_ANSWER_INDEX"
	ErrDuplicateSubmission ErrorCode = "DUPLICATE_SUBMISSION"
	ErrGenerationFailed    ErrorCode = "GENERATION_FAILED"
	ErrStorageUnavailable  ErrorCode = "STORAGE_UNAVAILABLE"
	ErrDocumentLocked      ErrorCode = "DOCUMENT_LOCKED"
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

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates per-field validation failures so a bad request
// reports every problem at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", e[0].Error(), len(e)-1)
}

// NewFieldError creates a single field validation error.
func NewFieldError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
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

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(ErrForbidden, message, nil)
}

// NewIneligibleToStartError signals that a session may not be created:
// the quiz window is closed, the student already submitted, or another
// session for the same (student, quiz) pair is still running.
func NewIneligibleToStartError(reason string) *DomainError {
	return NewError(ErrIneligibleToStart, fmt.Sprintf("Ineligible to start quiz: %s", reason), nil)
}

func NewInvalidAnswerIndexError(message string) *DomainError {
	return NewError(ErrInvalidAnswerIndex, message, nil)
}

// NewDuplicateSubmissionError signals the create-once guard tripped.
func NewDuplicateSubmissionError(quizID, studentID string) *DomainError {
	return NewError(ErrDuplicateSubmission,
		fmt.Sprintf("Submission already exists for quiz %s by student %s", quizID, studentID), nil)
}

func NewGenerationFailedError(err error) *DomainError {
	return NewError(ErrGenerationFailed, "Question generation failed", err)
}

func NewStorageUnavailableError(err error) *DomainError {
	return NewError(ErrStorageUnavailable, "Persistent storage is unavailable", err)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(ErrNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewDocumentLockedError(documentID string) *DomainError {
	return NewError(ErrDocumentLocked,
		fmt.Sprintf("Document %s is locked until its quiz deadline passes", documentID), nil)
}
