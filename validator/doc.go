// Package validator checks recorded HTTP fixtures against a converted RAML
// schema (the JSON written by the converter package).
//
// A fixture describes one exchange with an API: the request path, method,
// query string and body, and optionally the response status code and body.
// The validator finds the resource and method the fixture exercises, then
// checks the query parameters against their RAML named-parameter
// definitions and the request and response bodies against the JSON Schema
// (Draft 4) declared for application/json.
//
// # Lookup
//
// Resources are matched one path segment at a time. A segment of the form
// "{name}" (or containing one, such as "/item:{id}") matches any request
// segment whose value satisfies the uriParameters definition for name. The
// first resource that matches a prefix of the remaining path wins; lookup
// does not backtrack into sibling resources once it has descended.
//
// # Responses
//
// Response bodies are validated with "required" removed from the schema, so
// a fixture may omit fields. Required lists of the object alternatives
// directly under a oneOf with more than one object are kept, since they are
// what tells the alternatives apart.
//
// # Whitelist
//
// Endpoints the schema does not describe can be whitelisted by path regular
// expression, optionally narrowed by method and status code. A whitelisted
// fixture produces a warning instead of an error.
//
// # Example
//
//	schema, err := validator.LoadSchema(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v := validator.New(schema, nil)
//	fixture, err := validator.ParseFixtureJSON(payload)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := v.Check(fixture)
package validator
