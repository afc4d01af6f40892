package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/percolate/pedantic/raml"
)

// deprecatedBodyKeys are removed from request bodies before validation.
// Clients still send api_key, so schemas with additionalProperties: false
// would otherwise reject every recorded request.
var deprecatedBodyKeys = []string{"api_key"}

// ValidateRequest checks the query parameters and body of f against the
// method definition spec. All violations are collected into a single
// *pedanticerrors.SchemaValidationError.
func ValidateRequest(f *Fixture, spec map[string]any) error {
	var report strings.Builder

	queryReport, err := validateQuery(f.Query, spec)
	if err != nil {
		return err
	}
	if queryReport != "" {
		report.WriteString("\n\nRequest query param validation errors...\n\n")
		report.WriteString(queryReport)
	}

	if truthy(f.Request) && spec["body"] != nil {
		schema, ok, err := bodySchema(spec["body"])
		if err != nil {
			return fmt.Errorf("validator: request body of %s %s: %w", f.Method, f.Path, err)
		}
		if ok {
			body, err := validateInstance(withoutDeprecatedKeys(f.Request), schema)
			if err != nil {
				return fmt.Errorf("validator: request body of %s %s: %w", f.Method, f.Path, err)
			}
			if body != "" {
				report.WriteString("\nFound during request validation...\n\n")
				report.WriteString(body)
			}
		}
	}

	if report.Len() == 0 {
		return nil
	}
	fmt.Fprintf(&report, "\nRequest detail:\n\n%s\n", requestDetail(f))
	return &pedanticerrors.SchemaValidationError{Report: report.String()}
}

// validateQuery checks required, undefined and malformed query parameters.
// Required parameters are checked first in name order, then every other
// parameter in name order.
func validateQuery(query map[string]any, spec map[string]any) (string, error) {
	defs, hasDefs := spec["queryParameters"].(map[string]any)
	if !hasDefs {
		if len(query) > 0 {
			return " - `queryParameters` must be defined in specification\n", nil
		}
		return "", nil
	}

	var report strings.Builder
	checked := make(map[string]bool, len(query))
	for _, name := range sortedKeys(defs) {
		def, _ := defs[name].(map[string]any)
		if def == nil || !isRequired(def) {
			continue
		}
		value, present := query[name]
		if !present {
			fmt.Fprintf(&report, " - Missing required query param: '%s'\n", name)
			continue
		}
		msg, err := validateParam(value, def)
		if err != nil {
			return "", fmt.Errorf("validator: query parameter %q: %w", name, err)
		}
		report.WriteString(msg)
		checked[name] = true
	}

	for _, name := range sortedKeys(query) {
		if checked[name] {
			continue
		}
		def, _ := defs[name].(map[string]any)
		if def == nil {
			fmt.Fprintf(&report, " - Query parameter '%s' undefined in specification.\n", name)
			continue
		}
		msg, err := validateParam(query[name], def)
		if err != nil {
			return "", fmt.Errorf("validator: query parameter %q: %w", name, err)
		}
		report.WriteString(msg)
	}
	return report.String(), nil
}

// ValidateResponse checks the response body of f against the response
// declared for its status code. Fields listed as required are not enforced.
// A status code the method does not declare yields an
// *pedanticerrors.UndefinedSchemaError.
func ValidateResponse(f *Fixture, spec map[string]any) error {
	responses, _ := spec["responses"].(map[string]any)
	declared, ok := responses[f.StatusCode]
	if !ok {
		return &pedanticerrors.UndefinedSchemaError{
			Path:       f.Path,
			Method:     f.Method,
			StatusCode: f.StatusCode,
			Message: fmt.Sprintf("The status code '%s' for method '%s' and path '%s' is not defined by the specification.",
				f.StatusCode, f.Method, f.Path),
		}
	}

	response, _ := declared.(map[string]any)
	if response["body"] == nil {
		return nil
	}
	schema, ok, err := bodySchema(response["body"])
	if err != nil {
		return fmt.Errorf("validator: response %s of %s %s: %w", f.StatusCode, f.Method, f.Path, err)
	}
	if !ok {
		return nil
	}
	removeRequired(schema)

	report, err := validateInstance(f.Response, schema)
	if err != nil {
		return fmt.Errorf("validator: response %s of %s %s: %w", f.StatusCode, f.Method, f.Path, err)
	}
	if report == "" {
		return nil
	}
	return &pedanticerrors.SchemaValidationError{Report: fmt.Sprintf(
		"Found during response validation:\n%s\nRequest:\n\n%s\n\nResponse:\n\nSTATUS CODE: %s\nCONTENT: %s\n",
		report, requestDetail(f), f.StatusCode, describe(f.Response)),
	}
}

func withoutDeprecatedKeys(body any) any {
	m, ok := body.(map[string]any)
	if !ok {
		return body
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range deprecatedBodyKeys {
		delete(out, k)
	}
	return out
}

func requestDetail(f *Fixture) string {
	return describe(map[string]any{
		"path_info": f.Path,
		"method":    f.Method,
		"query":     f.Query,
		"request":   f.Request,
	})
}

// Result is the outcome of a successful Check.
type Result struct {
	// Whitelisted is true when the schema does not describe the fixture but
	// the whitelist exempts it
	Whitelisted bool
	// Warning is the message reported for whitelisted fixtures
	Warning string
	// Method is the matched method definition; nil when whitelisted
	Method map[string]any
}

// Validator checks fixtures against a converted RAML schema. The schema
// and whitelist are never modified, so a Validator is safe for concurrent
// use.
type Validator struct {
	// Schema is the converted RAML document
	Schema map[string]any
	// Whitelist exempts endpoints the schema does not describe
	Whitelist Whitelist
	// Logger receives debug output. If nil, logging is disabled.
	Logger raml.Logger
}

// New creates a Validator for schema with an optional whitelist.
func New(schema map[string]any, whitelist Whitelist) *Validator {
	return &Validator{Schema: schema, Whitelist: whitelist}
}

func (v *Validator) log() raml.Logger {
	return raml.OrNop(v.Logger)
}

// Check finds the method f exercises and validates its request and
// response. Request and response violations are reported together in one
// *pedanticerrors.SchemaValidationError.
func (v *Validator) Check(f *Fixture) (*Result, error) {
	spec, err := FindMethod(v.Schema, f)
	if err != nil {
		if errors.Is(err, pedanticerrors.ErrUndefinedSchema) && v.Whitelist.Allows(f) {
			v.log().Debug("fixture whitelisted", "path", f.Path, "method", f.Method)
			return &Result{
				Whitelisted: true,
				Warning:     fmt.Sprintf("Requested endpoint `%s` is whitelisted against validation.", f.Path),
			}, nil
		}
		return nil, err
	}

	var report strings.Builder
	if f.HasRequest {
		if err := ValidateRequest(f, spec); err != nil {
			var sve *pedanticerrors.SchemaValidationError
			if !errors.As(err, &sve) {
				return nil, err
			}
			report.WriteString(sve.Report + "\n\n")
		}
	}
	if f.HasResponse {
		if err := ValidateResponse(f, spec); err != nil {
			var sve *pedanticerrors.SchemaValidationError
			if !errors.As(err, &sve) {
				return nil, err
			}
			report.WriteString(sve.Report)
		}
	}

	if report.Len() > 0 {
		v.log().Debug("fixture failed validation", "path", f.Path, "method", f.Method)
		return nil, &pedanticerrors.SchemaValidationError{Report: report.String()}
	}
	return &Result{Method: spec}, nil
}
