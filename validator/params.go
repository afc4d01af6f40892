package validator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// validateParam checks one query or URI parameter value against its RAML
// named-parameter definition and returns the report lines, if any.
func validateParam(value any, def map[string]any) (string, error) {
	paramType, _ := def["type"].(string)
	if paramType == "" {
		paramType = "string"
	}

	switch v := value.(type) {
	case []any:
		var report strings.Builder
		for _, item := range v {
			msg, err := validateParam(item, def)
			if err != nil {
				return "", err
			}
			report.WriteString(msg)
		}
		return report.String(), nil
	case map[string]any:
		value = describe(v)
	case json.Number:
		if paramType == "string" {
			value = v.String()
		}
	case float64:
		if paramType == "string" {
			value = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case int:
		if paramType == "string" {
			value = strconv.Itoa(v)
		}
	case bool:
		if paramType == "string" {
			value = strconv.FormatBool(v)
		}
	}

	if paramType == "date" {
		text := fmt.Sprint(value)
		if _, err := dateparse.ParseAny(text); err != nil {
			return fmt.Sprintf(" - Request query param '%s' does not conform to any known date format.\n", text), nil
		}
		return "", nil
	}

	return validateInstance(value, paramSchema(def))
}

// paramSchema converts a named-parameter definition into a Draft 4 schema:
// the boolean "required" is dropped and RAML-only types (file) are left
// unconstrained.
func paramSchema(def map[string]any) map[string]any {
	schema := make(map[string]any, len(def))
	for k, v := range def {
		schema[k] = v
	}
	delete(schema, "required")
	if t, ok := schema["type"].(string); ok && !jsonSchemaTypes[t] {
		delete(schema, "type")
	}
	return schema
}

// isRequired reports whether a named parameter is declared required.
func isRequired(def map[string]any) bool {
	required, _ := def["required"].(bool)
	return required
}
