package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/percolate/pedantic/pedanticerrors"
)

// Fixture is one recorded exchange to check against the schema.
type Fixture struct {
	// Path is the request path; it always begins with "/"
	Path string `json:"path_info"`
	// Method is the HTTP method as recorded
	Method string `json:"method"`
	// Query holds the decoded query string values. Values are JSON scalars
	// when the raw text decodes as JSON, lists when the parameter repeats or
	// contains commas, and strings otherwise.
	Query map[string]any `json:"query,omitempty"`
	// HasRequest reports whether the fixture carries a request
	HasRequest bool `json:"-"`
	// Request is the request body
	Request any `json:"request,omitempty"`
	// HasResponse reports whether the fixture carries a response
	HasResponse bool `json:"-"`
	// Response is the response body
	Response any `json:"response,omitempty"`
	// StatusCode is the response status code in its decimal text form
	StatusCode string `json:"status_code,omitempty"`
}

// ParseFixtureJSON decodes a fixture payload and parses it with ParseFixture.
func ParseFixtureJSON(data []byte) (*Fixture, error) {
	var raw map[string]any
	if err := decodeJSON(data, &raw); err != nil {
		return nil, &pedanticerrors.FixtureError{Message: "fixture must be a JSON object: " + err.Error()}
	}
	return ParseFixture(raw)
}

// ParseFixture builds a Fixture from a decoded payload with the keys
// path_info, method, query_string, request, response and status_code.
//
// path_info and method are required. At least one of request and response
// must be present, and a response must come with a status code.
func ParseFixture(raw map[string]any) (*Fixture, error) {
	if raw == nil {
		return nil, &pedanticerrors.FixtureError{Message: "fixture must be a JSON object"}
	}

	path, _ := raw["path_info"].(string)
	method, _ := raw["method"].(string)
	if path == "" || method == "" {
		return nil, &pedanticerrors.FixtureError{
			Field:   "path_info",
			Message: "The following fields are required: ['path_info', 'method']",
		}
	}

	_, hasRequest := raw["request"]
	_, hasResponse := raw["response"]
	if !hasRequest && !hasResponse {
		return nil, &pedanticerrors.FixtureError{
			Field:   "request",
			Message: "One or more of the following fields are required: ['request', 'response']",
		}
	}

	f := &Fixture{Path: path, Method: method}

	if qs, ok := raw["query_string"].(string); ok && qs != "" {
		query, err := parseQuery(qs)
		if err != nil {
			return nil, &pedanticerrors.FixtureError{Field: "query_string", Message: "invalid query_string: " + err.Error()}
		}
		f.Query = query
	}

	if req := raw["request"]; req != nil {
		f.HasRequest = true
		f.Request = req
	}

	status := statusCode(raw["status_code"])
	response := raw["response"]
	switch {
	case truthy(response) && status != "":
		f.HasResponse = true
		f.Response = response
		f.StatusCode = status
	case truthy(response):
		return nil, &pedanticerrors.FixtureError{
			Field:   "status_code",
			Message: "A `response` must be accompanied by a value in `status_code`.",
		}
	case status != "":
		return nil, &pedanticerrors.FixtureError{Field: "response", Message: "A `response` must not be empty."}
	}

	if !strings.HasPrefix(path, "/") {
		return nil, &pedanticerrors.FixtureError{Field: "path_info", Message: "Path info must begin with `/`."}
	}

	if !f.HasRequest && !f.HasResponse {
		return nil, &pedanticerrors.FixtureError{
			Field:   "request",
			Message: "One or more of the following fields are required: ['request', 'response']",
		}
	}

	return f, nil
}

// parseQuery decodes a query string keeping blank values. Repeated keys
// become lists.
func parseQuery(qs string) (map[string]any, error) {
	values, err := url.ParseQuery(qs)
	if err != nil {
		return nil, err
	}
	query := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			query[key] = parseFromString(vals[0])
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = parseFromString(v)
		}
		query[key] = list
	}
	return query, nil
}

// parseFromString decodes s as JSON when possible. Strings containing a
// comma are split into lists, each element decoded the same way.
func parseFromString(s string) any {
	var field any
	if err := decodeJSON([]byte(s), &field); err != nil {
		field = s
	}
	if str, ok := field.(string); ok && strings.Contains(str, ",") {
		parts := strings.Split(str, ",")
		list := make([]any, len(parts))
		for i, p := range parts {
			list[i] = parseFromString(p)
		}
		return list
	}
	return field
}

// statusCode returns the decimal text of a status code given as a JSON
// number or string. Zero and empty values yield "".
func statusCode(v any) string {
	switch c := v.(type) {
	case json.Number:
		if c.String() == "0" {
			return ""
		}
		return c.String()
	case float64:
		if c == 0 {
			return ""
		}
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		if c == 0 {
			return ""
		}
		return strconv.Itoa(c)
	case string:
		return c
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}

// truthy reports whether v is a non-empty JSON value.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case int:
		return x != 0
	case map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	default:
		return true
	}
}

// decodeJSON unmarshals data keeping numbers as json.Number, so integers
// survive the round trip into schema validation unchanged. Trailing data is
// an error.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
