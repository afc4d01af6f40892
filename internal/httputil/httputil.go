// Package httputil provides HTTP method and media type helpers shared by the
// RAML loader and the validator service.
package httputil

import (
	"strings"
)

// HTTP Method Constants
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
	MethodConnect = "connect"
)

// MediaTypeJSON is the media type whose body schemas the validator checks.
const MediaTypeJSON = "application/json"

var methods = map[string]bool{
	MethodGet: true, MethodPut: true, MethodPost: true, MethodDelete: true,
	MethodOptions: true, MethodHead: true, MethodPatch: true, MethodTrace: true,
	MethodConnect: true,
}

// IsMethod reports whether name is an HTTP method, ignoring case.
func IsMethod(name string) bool {
	return methods[strings.ToLower(name)]
}

// IsJSONContentType reports whether a Content-Type header value contains
// application/json, ignoring case. Suffixed types such as
// application/json-patch+json match too.
func IsJSONContentType(header string) bool {
	return strings.Contains(strings.ToLower(header), MediaTypeJSON)
}
