package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/percolate/pedantic/internal/fileutil"
	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/percolate/pedantic/raml"
)

// DefaultStripKeys are the top-level keys removed from every converted document.
var DefaultStripKeys = []string{"documentation"}

// DefaultIndent is the JSON indentation unit.
const DefaultIndent = "  "

// ConversionResult describes one conversion.
type ConversionResult struct {
	// Document is the loaded document after stripping
	Document *raml.Document
	// Output is the JSON text that was (or would be) written
	Output []byte
	// SourcePath is the RAML file path or URL
	SourcePath string
	// OutputPath is the destination path; empty when writing to an io.Writer
	OutputPath string
	// RAMLVersion is the version from the source header
	RAMLVersion string
	// StrippedKeys lists the configured keys that were present and removed
	StrippedKeys []string
	// IncludeCount is the number of !include directives resolved
	IncludeCount int
	// LoadTime is the time spent loading the source document
	LoadTime time.Duration
}

// Converter converts RAML documents to JSON.
type Converter struct {
	// StripKeys are the top-level keys to remove. Nil means DefaultStripKeys;
	// an empty non-nil slice removes nothing.
	StripKeys []string
	// Indent is the per-level indentation. Empty means DefaultIndent.
	Indent string
	// FileMode is the permission of newly created destination files.
	// Zero means fileutil.ReadableByAll.
	FileMode os.FileMode
	// Logger receives debug output. If nil, logging is disabled.
	Logger raml.Logger
	// ParserOptions are applied when loading the source document, after the
	// source location and logger.
	ParserOptions []raml.Option
}

// New creates a new Converter instance with default settings
func New() *Converter {
	return &Converter{}
}

func (c *Converter) log() raml.Logger {
	return raml.OrNop(c.Logger)
}

func (c *Converter) stripKeys() []string {
	if c.StripKeys == nil {
		return DefaultStripKeys
	}
	return c.StripKeys
}

func (c *Converter) indent() string {
	if c.Indent == "" {
		return DefaultIndent
	}
	return c.Indent
}

func (c *Converter) fileMode() os.FileMode {
	if c.FileMode == 0 {
		return fileutil.ReadableByAll
	}
	return c.FileMode
}

// ConvertFile is a convenience function that converts src (a RAML file path
// or URL) to dst with default settings.
//
// Example:
//
//	if _, err := converter.ConvertFile(ctx, "index.raml", "schema.json"); err != nil {
//	    log.Fatal(err)
//	}
func ConvertFile(ctx context.Context, src, dst string) (*ConversionResult, error) {
	return New().Convert(ctx, src, dst)
}

// Convert loads src, removes the strip keys and writes indented JSON to dst.
// The source is fully loaded before dst is touched, so a failed load never
// creates or truncates the destination.
func (c *Converter) Convert(ctx context.Context, src, dst string) (*ConversionResult, error) {
	result, err := c.convert(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := c.writeFile(dst, result.Output); err != nil {
		return nil, err
	}
	result.OutputPath = dst
	c.log().Debug("wrote converted document", "path", dst, "bytes", len(result.Output))
	return result, nil
}

// ConvertTo loads src and writes the JSON to w.
func (c *Converter) ConvertTo(ctx context.Context, src string, w io.Writer) (*ConversionResult, error) {
	result, err := c.convert(ctx, src)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(result.Output); err != nil {
		return nil, &pedanticerrors.WriteError{Message: "failed to write output", Cause: err}
	}
	return result, nil
}

// ConvertBytes converts an in-memory RAML document. name is reported as the
// source path and used in error messages; includes resolve against the
// working directory.
func (c *Converter) ConvertBytes(ctx context.Context, name string, data []byte) (*ConversionResult, error) {
	return c.load(ctx, name, raml.WithBytes(data), raml.WithSourceName(name))
}

// ConvertDocument removes the strip keys from doc and returns its indented
// JSON. It performs no I/O. The output has no HTML escaping and no trailing
// newline, so equal documents produce equal bytes.
func (c *Converter) ConvertDocument(doc *raml.Document) ([]byte, error) {
	out, _, err := c.render(doc)
	return out, err
}

// render strips doc and marshals it, returning the keys that were removed.
func (c *Converter) render(doc *raml.Document) ([]byte, []string, error) {
	if doc == nil || doc.Root == nil {
		return nil, nil, errors.New("converter: nil document")
	}
	removed := doc.Strip(c.stripKeys()...)
	out, err := doc.MarshalJSONIndent("", c.indent())
	if err != nil {
		return nil, nil, fmt.Errorf("converter: failed to marshal document: %w", err)
	}
	return out, removed, nil
}

func (c *Converter) convert(ctx context.Context, src string) (*ConversionResult, error) {
	return c.load(ctx, src, raml.WithFilePath(src))
}

// load parses the document described by source and renders it. The source
// options come first so ParserOptions can override them.
func (c *Converter) load(ctx context.Context, name string, source ...raml.Option) (*ConversionResult, error) {
	opts := append(slices.Clone(source), raml.WithLogger(c.log()))
	opts = append(opts, c.ParserOptions...)

	doc, err := raml.ParseWithOptions(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("converter: failed to load %s: %w", name, err)
	}

	out, removed, err := c.render(doc)
	if err != nil {
		return nil, err
	}

	return &ConversionResult{
		Document:     doc,
		Output:       out,
		SourcePath:   name,
		RAMLVersion:  doc.RAMLVersion,
		StrippedKeys: removed,
		IncludeCount: doc.IncludeCount,
		LoadTime:     doc.LoadTime,
	}, nil
}

func (c *Converter) writeFile(dst string, data []byte) error {
	if err := fileutil.WriteAtomic(dst, data, c.fileMode()); err != nil {
		return &pedanticerrors.WriteError{Path: dst, Cause: err}
	}
	return nil
}
