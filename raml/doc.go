// Package raml loads RAML 0.8 and 1.0 documents into an ordered tree.
//
// The loader reads YAML with go.yaml.in/yaml/v4, resolves !include
// directives and shapes the result the way RAML tooling conventionally
// serializes it:
//
//   - top-level "/path" keys become a "resources" array
//   - every resource carries "relativeUri" and "relativeUriPathSegments"
//   - method keys become a "methods" array of {"method": "get", ...}
//   - resource types (type:) and traits (is:) are applied, with <<param>>
//     substitution and the standard parameter functions
//   - a body schema that names a declared schema is replaced by its text
//
// Mappings keep the key order of the source, so a document serializes to the
// same JSON bytes every time.
//
// # Includes
//
// Relative !include targets resolve against the including file (or URL).
// Files ending in .raml, .yaml or .yml are parsed and inlined as trees; any
// other file is inlined as a string. Local includes may not leave the root
// document's directory, include cycles are rejected, and nesting depth and
// file size are bounded (see WithMaxIncludeDepth and WithMaxFileSize).
//
// # Usage
//
//	doc, err := raml.ParseWithOptions(ctx, raml.WithFilePath("index.raml"))
//	if err != nil {
//	    return err
//	}
//	doc.Strip("documentation")
//	out, err := doc.MarshalJSONIndent("", "  ")
//
// Errors are typed (see package pedanticerrors): malformed input yields a
// *ParseError, include failures a *ReferenceError, and exceeded limits a
// *ResourceLimitError.
package raml
