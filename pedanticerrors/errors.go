package pedanticerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a document could not be loaded or parsed.
	ErrParse = errors.New("parse error")

	// ErrReference indicates an !include could not be resolved.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates an include cycle was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrPathTraversal indicates a path traversal attempt was blocked.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrWrite indicates the converted output could not be written.
	ErrWrite = errors.New("write error")

	// ErrFixture indicates a malformed fixture payload.
	ErrFixture = errors.New("fixture error")

	// ErrUndefinedSchema indicates the schema has no definition for the fixture.
	ErrUndefinedSchema = errors.New("undefined schema")

	// ErrSchemaValidation indicates a fixture failed schema validation.
	ErrSchemaValidation = errors.New("schema validation error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to load or parse a RAML document.
type ParseError struct {
	// Path is the file path, URL or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a failure to resolve an !include.
type ReferenceError struct {
	// Ref is the include target that failed to resolve
	Ref string
	// RefType indicates the include type: "file" or "http"
	RefType string
	// IsCircular is true if the include closes a cycle
	IsCircular bool
	// IsPathTraversal is true if the include escapes the root directory
	IsPathTraversal bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	} else if e.IsPathTraversal {
		msg = "path traversal detected"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference or ErrPathTraversal
// when appropriate flags are set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	if target == ErrCircularReference && e.IsCircular {
		return true
	}
	if target == ErrPathTraversal && e.IsPathTraversal {
		return true
	}
	return false
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "include_depth", "file_size"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// WriteError represents a failure to write converted output.
type WriteError struct {
	// Path is the destination path
	Path string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *WriteError) Error() string {
	msg := "write error"
	if e.Path != "" {
		msg += " for " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// FixtureError represents a malformed fixture payload.
// Its message is reported to clients verbatim.
type FixtureError struct {
	// Field is the fixture field at fault, if any
	Field string
	// Message describes the problem
	Message string
}

// Error returns the message; the field is carried for programmatic use only.
func (e *FixtureError) Error() string {
	if e.Message == "" {
		return "fixture error"
	}
	return e.Message
}

// Is reports whether target matches this error type.
func (e *FixtureError) Is(target error) bool {
	return target == ErrFixture
}

// UndefinedSchemaError is returned when the schema does not describe the
// resource, method or status code a fixture exercises.
type UndefinedSchemaError struct {
	// Path is the fixture path_info
	Path string
	// Method is the fixture method, if relevant
	Method string
	// StatusCode is the response status code, if relevant
	StatusCode string
	// Message is the complete human-readable description
	Message string
}

// Error returns a human-readable error message.
func (e *UndefinedSchemaError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("undefined schema for %s %s", e.Method, e.Path)
}

// Is reports whether target matches this error type.
func (e *UndefinedSchemaError) Is(target error) bool {
	return target == ErrUndefinedSchema
}

// SchemaValidationError carries the formatted report of one or more
// schema violations found in a fixture.
type SchemaValidationError struct {
	// Report is the formatted, multi-line violation report
	Report string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns the report.
func (e *SchemaValidationError) Error() string {
	if e.Report == "" && e.Cause != nil {
		return "schema validation error: " + e.Cause.Error()
	}
	return e.Report
}

// Unwrap returns the underlying cause for error chaining.
func (e *SchemaValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SchemaValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
