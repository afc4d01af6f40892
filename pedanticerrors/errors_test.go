package pedanticerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ParseError{
			Path:    "/path/to/api.raml",
			Line:    42,
			Column:  10,
			Message: "invalid syntax",
			Cause:   cause,
		}

		msg := err.Error()
		if msg != "parse error in /path/to/api.raml at line 42, column 10: invalid syntax: underlying error" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ParseError{}
		if err.Error() != "parse error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message with line only", func(t *testing.T) {
		err := &ParseError{Line: 10}
		if err.Error() != "parse error at line 10" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ParseError{Cause: cause}
		//nolint:errorlint // testing pointer identity
		if unwrapped := err.Unwrap(); unwrapped != cause {
			t.Error("Unwrap should return cause")
		}
	})

	t.Run("Is matches ErrParse only", func(t *testing.T) {
		err := &ParseError{Message: "test"}
		if !errors.Is(err, ErrParse) {
			t.Error("ParseError should match ErrParse")
		}
		if errors.Is(err, ErrReference) || errors.Is(err, ErrWrite) {
			t.Error("ParseError should not match other sentinels")
		}
	})

	t.Run("As extracts ParseError through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("converter: %w", &ParseError{Path: "index.raml"})
		var pe *ParseError
		if !errors.As(wrapped, &pe) {
			t.Fatal("errors.As should find ParseError")
		}
		if pe.Path != "index.raml" {
			t.Errorf("unexpected path: %s", pe.Path)
		}
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("circular", func(t *testing.T) {
		err := &ReferenceError{Ref: "types.raml", RefType: "file", IsCircular: true}
		if err.Error() != "circular reference: types.raml" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
		if !errors.Is(err, ErrReference) || !errors.Is(err, ErrCircularReference) {
			t.Error("circular ReferenceError should match ErrReference and ErrCircularReference")
		}
		if errors.Is(err, ErrPathTraversal) {
			t.Error("circular ReferenceError should not match ErrPathTraversal")
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		err := &ReferenceError{Ref: "../../etc/passwd", IsPathTraversal: true}
		if err.Error() != "path traversal detected: ../../etc/passwd" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
		if !errors.Is(err, ErrPathTraversal) {
			t.Error("should match ErrPathTraversal")
		}
	})

	t.Run("cause", func(t *testing.T) {
		cause := errors.New("no such file")
		err := &ReferenceError{Ref: "a.json", Message: "failed to read", Cause: cause}
		if err.Error() != "reference error: a.json: failed to read: no such file" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("should unwrap to cause")
		}
	})
}

func TestResourceLimitError(t *testing.T) {
	err := &ResourceLimitError{ResourceType: "include_depth", Limit: 10, Actual: 11, Message: "too deep"}
	if err.Error() != "resource limit exceeded: include_depth (limit: 10, actual: 11): too deep" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrResourceLimit) {
		t.Error("should match ErrResourceLimit")
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap should return nil")
	}
}

func TestWriteError(t *testing.T) {
	cause := errors.New("permission denied")
	err := &WriteError{Path: "/ro/schema.json", Cause: cause}
	if err.Error() != "write error for /ro/schema.json: permission denied" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrWrite) || !errors.Is(err, cause) {
		t.Error("WriteError should match ErrWrite and its cause")
	}
}

func TestFixtureError(t *testing.T) {
	err := &FixtureError{Field: "path_info", Message: "Path info must begin with `/`."}
	if err.Error() != "Path info must begin with `/`." {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrFixture) {
		t.Error("should match ErrFixture")
	}
	if (&FixtureError{}).Error() != "fixture error" {
		t.Error("empty FixtureError should have a default message")
	}
}

func TestUndefinedSchemaError(t *testing.T) {
	err := &UndefinedSchemaError{Path: "/api", Method: "get"}
	if err.Error() != "undefined schema for get /api" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	err.Message = "The requested resource '/api' was not found in spec."
	if err.Error() != err.Message {
		t.Errorf("Message should take precedence, got %s", err.Error())
	}
	if !errors.Is(err, ErrUndefinedSchema) {
		t.Error("should match ErrUndefinedSchema")
	}
}

func TestSchemaValidationError(t *testing.T) {
	err := &SchemaValidationError{Report: " - .name: String length must be greater than or equal to 1\n"}
	if err.Error() != err.Report {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Error("should match ErrSchemaValidation")
	}

	cause := errors.New("invalid character")
	bare := &SchemaValidationError{Cause: cause}
	if bare.Error() != "schema validation error: invalid character" {
		t.Errorf("unexpected error message: %s", bare.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Option: "port", Value: "abc", Message: "must be a number"}
	if err.Error() != "configuration error for port (value: abc): must be a number" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrConfig) {
		t.Error("should match ErrConfig")
	}
}
