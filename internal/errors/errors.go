// Package errors defines the application error taxonomy for the extraction
// engine. Fatal conditions are typed AppError values carrying the pipeline
// stage that failed; non-fatal conditions are domain.Warning values and
// never travel as errors.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Is, As and Unwrap re-export the standard library helpers so callers can
// stay on this package's import.
func Is(err, target error) bool             { return stderrors.Is(err, target) }
func As(err error, target interface{}) bool { return stderrors.As(err, target) }
func Unwrap(err error) error                { return stderrors.Unwrap(err) }
func New(text string) error                 { return stderrors.New(text) }

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeStructure  ErrorType = "STRUCTURE_DETECTION"
	ErrTypeDuplicate  ErrorType = "DUPLICATE_PERIOD"
	ErrTypeMapping    ErrorType = "COLUMN_MAPPING"
	ErrTypeExtraction ErrorType = "EXTRACTION"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Stage identifies the extraction pipeline stage an error surfaced from.
type Stage string

const (
	StageStructureDetection Stage = "structure-detection"
	StageColumnMapping      Stage = "column-mapping"
	StageExtraction         Stage = "extraction"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Stage   Stage
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
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

// NewAppError creates a new application error
func NewAppError(errType ErrorType, stage Stage, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper constructors for the extraction taxonomy

// NewStructureDetectionError reports that no usable period columns were
// found. Always fatal.
func NewStructureDetectionError(message string) *AppError {
	return NewAppError(ErrTypeStructure, StageStructureDetection, message, nil)
}

// NewDuplicatePeriodError reports an ambiguous column scan where the same
// period key appeared twice. The offending columns are named so the caller
// can surface them; guessing which occurrence is right is unsafe.
func NewDuplicatePeriodError(periodKey string, firstCol, secondCol int) *AppError {
	err := NewAppError(ErrTypeDuplicate, StageStructureDetection,
		fmt.Sprintf("period %s appears in columns %d and %d", periodKey, firstCol, secondCol), nil)
	err.Context["period_key"] = periodKey
	err.Context["first_col"] = firstCol
	err.Context["second_col"] = secondCol
	return err
}

// NewColumnMappingError reports a required role that could not be resolved
// with no template supplied.
func NewColumnMappingError(message string) *AppError {
	return NewAppError(ErrTypeMapping, StageColumnMapping, message, nil)
}

// NewExtractionError reports a fatal failure while walking the data range.
func NewExtractionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExtraction, StageExtraction, message, cause)
}

// NewTemplateNotFoundError reports a missing mapping template at the store
// level.
func NewTemplateNotFoundError(id string) *AppError {
	return NewAppError(ErrTypeNotFound, "", fmt.Sprintf("mapping template %s not found", id), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, "", message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, "", message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, "", message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, "", message, cause)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if !As(err, &appErr) {
		return false
	}
	return appErr.Type == t
}

// StageOf returns the pipeline stage carried by err, or "" when err is not
// an AppError or carries none.
func StageOf(err error) Stage {
	var appErr *AppError
	if !As(err, &appErr) {
		return ""
	}
	return appErr.Stage
}
