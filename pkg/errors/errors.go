// Package errors provides custom error types for the kepmap system.
// Lookup failures, archive failures and cache I/O failures each have a
// dedicated type so callers can branch with errors.Is / errors.As instead
// of matching strings.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are re-exported so callers importing this package under the
// name errors keep access to the standard helpers.
var (
	Is = errors.Is
	As = errors.As
)

// Sentinel errors for the kepmap system
var (
	// ErrInvalidIdentifier indicates a raw identifier that no normalization pattern accepts
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrUnknownIdentifier indicates a well-formed identifier absent from a catalog
	ErrUnknownIdentifier = errors.New("unknown identifier")

	// ErrPropertyNotFound indicates a valid row without the requested column
	ErrPropertyNotFound = errors.New("property not found")

	// ErrCatalogUnavailable indicates the remote fetch failed and no local copy exists
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrArchiveUnavailable indicates that the archive answered with a server error
	ErrArchiveUnavailable = errors.New("archive unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// InvalidIdentifierError reports an identifier that could not be normalized.
type InvalidIdentifierError struct {
	Raw    string
	Reason string
}

// Error implements the error interface
func (e *InvalidIdentifierError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%q is not a valid KOI name: %s", e.Raw, e.Reason)
	}
	return fmt.Sprintf("%q is not a valid KOI name", e.Raw)
}

// Is implements errors.Is support
func (e *InvalidIdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// NewInvalidIdentifierError creates a new InvalidIdentifierError
func NewInvalidIdentifierError(raw any, reason string) *InvalidIdentifierError {
	return &InvalidIdentifierError{Raw: fmt.Sprint(raw), Reason: reason}
}

// UnknownIdentifierError reports an identifier missing from a catalog.
type UnknownIdentifierError struct {
	Catalog string
	ID      string
	Err     error
}

// Error implements the error interface
func (e *UnknownIdentifierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s not found in %s: %v", e.ID, e.Catalog, e.Err)
	}
	return fmt.Sprintf("%s not found in %s", e.ID, e.Catalog)
}

// Unwrap implements errors.Unwrap
func (e *UnknownIdentifierError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UnknownIdentifierError) Is(target error) bool {
	return target == ErrUnknownIdentifier
}

// NewUnknownIdentifierError creates a new UnknownIdentifierError
func NewUnknownIdentifierError(catalog, id string, err error) *UnknownIdentifierError {
	return &UnknownIdentifierError{Catalog: catalog, ID: id, Err: err}
}

// PropertyNotFoundError reports a missing column or a resolved key without a row.
type PropertyNotFoundError struct {
	Catalog  string
	ID       string
	Property string
}

// Error implements the error interface
func (e *PropertyNotFoundError) Error() string {
	switch {
	case e.Property == "":
		return fmt.Sprintf("no %s row for %s", e.Catalog, e.ID)
	case e.ID == "":
		return fmt.Sprintf("%s has no column %s", e.Catalog, e.Property)
	default:
		return fmt.Sprintf("property %s not found for %s in %s", e.Property, e.ID, e.Catalog)
	}
}

// Is implements errors.Is support
func (e *PropertyNotFoundError) Is(target error) bool {
	return target == ErrPropertyNotFound
}

// NewPropertyNotFoundError creates a new PropertyNotFoundError
func NewPropertyNotFoundError(catalog, id, property string) *PropertyNotFoundError {
	return &PropertyNotFoundError{Catalog: catalog, ID: id, Property: property}
}

// CatalogUnavailableError reports a catalog that could neither be read locally nor fetched.
type CatalogUnavailableError struct {
	Catalog string
	Err     error
}

// Error implements the error interface
func (e *CatalogUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s unavailable: %v", e.Catalog, e.Err)
	}
	return fmt.Sprintf("catalog %s unavailable", e.Catalog)
}

// Unwrap implements errors.Unwrap
func (e *CatalogUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *CatalogUnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

// NewCatalogUnavailableError creates a new CatalogUnavailableError
func NewCatalogUnavailableError(catalog string, err error) *CatalogUnavailableError {
	return &CatalogUnavailableError{Catalog: catalog, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a non-success answer from the remote archive
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("archive error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("archive error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	return e.StatusCode >= 500 && target == ErrArchiveUnavailable
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "sqlite", "yaml"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "lock"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "load", "refresh", "create", "fetch"
	Resource  string // "catalog", "request", "config"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// Helper functions for error checking

// IsInvalidIdentifier checks if an error is a normalization failure
func IsInvalidIdentifier(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier)
}

// IsUnknownIdentifier checks if an error is a missing-row error
func IsUnknownIdentifier(err error) bool {
	return errors.Is(err, ErrUnknownIdentifier)
}

// IsPropertyNotFound checks if an error is a missing-column error
func IsPropertyNotFound(err error) bool {
	return errors.Is(err, ErrPropertyNotFound)
}

// IsCatalogUnavailable checks if an error means a catalog could not be loaded
func IsCatalogUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
