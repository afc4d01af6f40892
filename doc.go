// Package pedantic converts RAML API descriptions to JSON and validates HTTP
// test fixtures against them.
//
// # Overview
//
// The module is organised like a small toolkit:
//
//   - raml: load a RAML 0.8 document (files, URLs, !include, traits and
//     resource types) into an order-preserving tree
//   - converter: strip the documentation section and write the tree as
//     2-space indented JSON
//   - validator: check recorded request/response fixtures against the
//     converted schema using Draft 4 JSON Schema
//   - pedanticerrors: structured error types shared by all packages
//
// The pedantic command wires these together:
//
//	pedantic convert api.raml schema.json
//	pedantic serve --whitelist=whitelist.json schema.json
//	pedantic run https://example.com/api/index.raml
//
// The convertraml command is the zero-argument variant that converts
// index.raml in the working directory to schema.json.
//
// # Quick Start
//
// Convert a document from Go code:
//
//	import "github.com/percolate/pedantic/converter"
//
//	if err := converter.ConvertFile(ctx, "index.raml", "schema.json"); err != nil {
//		log.Fatal(err)
//	}
//
// Validate a fixture:
//
//	fixture, err := validator.ParseFixture(payload)
//	if err != nil {
//		return err
//	}
//	spec, err := validator.FindMethod(schema, fixture)
//	if err != nil {
//		return err
//	}
//	return validator.ValidateRequest(fixture, spec)
package pedantic
