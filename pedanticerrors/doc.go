// Package pedanticerrors provides structured error types for pedantic.
//
// Import path: github.com/percolate/pedantic/pedanticerrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between loader failures, output failures and
// fixture validation failures.
//
// # Error Types
//
//   - [ParseError]: YAML syntax errors, missing RAML header, unreadable sources
//   - [ReferenceError]: !include resolution failures, include cycles, path traversal
//   - [ResourceLimitError]: include depth or document size limits exceeded
//   - [WriteError]: the converted JSON could not be written to its destination
//   - [FixtureError]: a fixture payload is malformed
//   - [UndefinedSchemaError]: the fixture targets a resource, method or status
//     code the schema does not declare
//   - [SchemaValidationError]: the fixture does not conform to the schema
//   - [ConfigError]: invalid configuration or input options
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrPathTraversal]: Matches [ReferenceError] with IsPathTraversal=true
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrWrite]: Matches any [WriteError]
//   - [ErrFixture]: Matches any [FixtureError]
//   - [ErrUndefinedSchema]: Matches any [UndefinedSchemaError]
//   - [ErrSchemaValidation]: Matches any [SchemaValidationError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage
//
//	err := converter.ConvertFile(ctx, "api.raml", "schema.json")
//	var refErr *pedanticerrors.ReferenceError
//	if errors.As(err, &refErr) && refErr.IsCircular {
//	    // include cycle
//	}
package pedanticerrors
