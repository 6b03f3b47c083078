package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the risk engine
type ErrorType string

const (
	// File errors, recovered locally and counted as skips
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeEncoding   ErrorType = "encoding"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeTooLarge   ErrorType = "too_large"
	ErrorTypeRead       ErrorType = "read"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Fatal: the root cannot be analyzed at all
	ErrorTypeRoot ErrorType = "root"
)

var (
	// ErrRootNotFound is returned when the analysis root does not exist
	ErrRootNotFound = stderrors.New("root path does not exist")
	// ErrRootNotDirectory is returned when the analysis root is a regular file
	ErrRootNotDirectory = stderrors.New("root path is not a directory")
	// ErrRootUnreadable is returned when the analysis root cannot be listed
	ErrRootUnreadable = stderrors.New("root path is not readable")
)

// FileReadError represents a file that could not be read or decoded.
// The engine never propagates it; the file is skipped and counted.
type FileReadError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileReadError creates a file read error, classifying the cause
func NewFileReadError(op, path string, err error) *FileReadError {
	return &FileReadError{
		Type:       classifyFileError(err),
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewEncodingError creates a file read error for content that is not text
func NewEncodingError(path, reason string) *FileReadError {
	return &FileReadError{
		Type:       ErrorTypeEncoding,
		Path:       path,
		Operation:  "decode",
		Underlying: stderrors.New(reason),
		Timestamp:  time.Now(),
	}
}

func classifyFileError(err error) ErrorType {
	switch {
	case err == nil:
		return ErrorTypeRead
	case stderrors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	case stderrors.Is(err, fs.ErrNotExist):
		return ErrorTypeNotFound
	default:
		return ErrorTypeRead
	}
}

// Error implements the error interface
func (e *FileReadError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileReadError) Unwrap() error {
	return e.Underlying
}

// Reason returns the skip reason recorded in reports
func (e *FileReadError) Reason() string {
	return string(e.Type)
}

// RootError is the only fatal condition: no partial report is possible
type RootError struct {
	Type       ErrorType
	Root       string
	Underlying error
	Timestamp  time.Time
}

// NewRootError creates a new root error
func NewRootError(root string, err error) *RootError {
	return &RootError{
		Type:       ErrorTypeRoot,
		Root:       root,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *RootError) Error() string {
	return fmt.Sprintf("cannot analyze %s: %v", e.Root, e.Underlying)
}

// Unwrap returns the underlying error
func (e *RootError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Section    string
	Field      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(section, field string, err error) *ConfigError {
	return &ConfigError{
		Section:    section,
		Field:      field,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error in %s: %v", e.Section, e.Underlying)
	}
	return fmt.Sprintf("config error for %s.%s: %v", e.Section, e.Field, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
