package validator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// LoadSchema decodes a converted RAML document.
func LoadSchema(data []byte) (map[string]any, error) {
	var schema map[string]any
	if err := decodeJSON(data, &schema); err != nil {
		return nil, fmt.Errorf("validator: failed to decode schema: %w", err)
	}
	if schema == nil {
		return nil, fmt.Errorf("validator: schema must be a JSON object")
	}
	return schema, nil
}

// jsonSchemaTypes are the primitive types Draft 4 accepts.
var jsonSchemaTypes = map[string]bool{
	"array": true, "boolean": true, "integer": true, "null": true,
	"number": true, "object": true, "string": true,
}

// validateInstance validates data against schema (Draft 4) and returns the
// formatted report, one " - path: message" line per violation. An empty
// report means data is valid; an error means the schema itself is unusable.
func validateInstance(data any, schema any) (string, error) {
	loader := gojsonschema.NewSchemaLoader()
	loader.Draft = gojsonschema.Draft4
	loader.AutoDetect = false

	compiled, err := loader.Compile(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return "", fmt.Errorf("invalid JSON schema: %w", err)
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return "", fmt.Errorf("failed to validate instance: %w", err)
	}
	if result.Valid() {
		return "", nil
	}

	type violation struct {
		path    string
		message string
	}
	violations := make([]violation, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, violation{path: prettyPath(e.Context()), message: e.Description()})
	}
	sort.SliceStable(violations, func(i, j int) bool { return violations[i].path < violations[j].path })

	var report strings.Builder
	for _, v := range violations {
		fmt.Fprintf(&report, " - %s: %s\n", v.path, v.message)
	}
	return report.String(), nil
}

// prettyPath renders a validation context as ".field[0].name"; the root is
// the empty string.
func prettyPath(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return ""
	}
	const sep = "\x00"
	parts := strings.Split(ctx.String(sep), sep)
	var b strings.Builder
	for _, p := range parts[1:] {
		if isIndex(p) {
			b.WriteString("[" + p + "]")
		} else {
			b.WriteString("." + p)
		}
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// bodySchema returns the decoded application/json schema of a body
// definition. ok is false when the body declares no JSON schema.
func bodySchema(body any) (schema any, ok bool, err error) {
	media, _ := body.(map[string]any)
	def, _ := media["application/json"].(map[string]any)
	if def == nil {
		return nil, false, nil
	}
	switch s := def["schema"].(type) {
	case string:
		if err := decodeJSON([]byte(s), &schema); err != nil {
			return nil, false, fmt.Errorf("invalid JSON schema: %w", err)
		}
		return schema, true, nil
	case map[string]any:
		return deepCopy(s), true, nil
	default:
		return nil, false, nil
	}
}

// removeRequired deletes "required" lists from schema in place, except in
// the object alternatives directly under a oneOf that has more than one of
// them.
func removeRequired(schema any) {
	removeRequiredIn(schema, "", false)
}

func removeRequiredIn(node any, parent string, keep bool) {
	switch n := node.(type) {
	case []any:
		keepItems := false
		if parent == "oneOf" {
			objects := 0
			for _, item := range n {
				if m, ok := item.(map[string]any); ok && m["type"] == "object" {
					objects++
				}
			}
			keepItems = objects > 1
		}
		for _, item := range n {
			removeRequiredIn(item, parent, keepItems)
		}
	case map[string]any:
		for key, value := range n {
			if _, isList := value.([]any); key == "required" && isList && !keep {
				delete(n, key)
				continue
			}
			removeRequiredIn(value, key, false)
		}
	}
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return x
	}
}

// describe renders v as compact JSON for reports.
func describe(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
