// Package converter turns RAML documents into JSON schema files.
//
// A conversion loads the RAML source with package raml, removes the
// top-level "documentation" key and writes the remaining tree as JSON
// indented with two spaces. Key order follows the source document, so
// converting the same input twice yields identical bytes.
//
// # Quick Start
//
//	result, err := converter.ConvertFile(ctx, "index.raml", "schema.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("wrote %d bytes\n", len(result.Output))
//
// Or configure a reusable Converter:
//
//	c := converter.New()
//	c.StripKeys = []string{"documentation", "baseUriParameters"}
//	c.ParserOptions = []raml.Option{raml.WithMaxIncludeDepth(8)}
//	_, err := c.Convert(ctx, "index.raml", "schema.json")
//
// # Errors
//
// Load failures are reported as *pedanticerrors.ParseError,
// *pedanticerrors.ReferenceError or *pedanticerrors.ResourceLimitError;
// destination failures as *pedanticerrors.WriteError. The source is loaded
// completely before the destination is opened, and the destination is
// replaced atomically, so a failed conversion never leaves partial output.
package converter
