package raml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/percolate/pedantic"
)

// Option is a function that configures a parse operation
type Option func(*parseConfig) error

// parseConfig holds configuration for a parse operation
type parseConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte

	userAgent       string
	httpClient      *http.Client
	logger          Logger
	maxIncludeDepth int
	maxFileSize     int64
	maxAliasNodes   int64

	// sourceName overrides Document.SourcePath
	sourceName *string
}

// ParseWithOptions loads a RAML document using functional options.
//
// Example:
//
//	doc, err := raml.ParseWithOptions(ctx,
//	    raml.WithFilePath("index.raml"),
//	    raml.WithLogger(raml.NewSlogAdapter(slog.Default())),
//	)
func ParseWithOptions(ctx context.Context, opts ...Option) (*Document, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("raml: invalid options: %w", err)
	}

	p := &Parser{
		Logger:          cfg.logger,
		HTTPClient:      cfg.httpClient,
		UserAgent:       cfg.userAgent,
		MaxIncludeDepth: cfg.maxIncludeDepth,
		MaxFileSize:     cfg.maxFileSize,
		MaxAliasNodes:   cfg.maxAliasNodes,
	}

	var doc *Document
	switch {
	case cfg.filePath != nil:
		doc, err = p.Parse(ctx, *cfg.filePath)
	case cfg.reader != nil:
		doc, err = p.ParseReader(ctx, cfg.reader)
	default:
		name := ""
		if cfg.sourceName != nil {
			name = *cfg.sourceName
		}
		doc, err = p.ParseBytes(ctx, cfg.bytes, name)
	}
	if err != nil {
		return nil, err
	}

	if cfg.sourceName != nil {
		doc.SourcePath = *cfg.sourceName
	}
	return doc, nil
}

func applyOptions(opts ...Option) (*parseConfig, error) {
	cfg := &parseConfig{
		userAgent: pedantic.UserAgent(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	sources := 0
	for _, set := range []bool{cfg.filePath != nil, cfg.reader != nil, cfg.bytes != nil} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return nil, errors.New("must specify an input source (use WithFilePath, WithURL, WithReader, or WithBytes)")
	case sources > 1:
		return nil, errors.New("must specify exactly one input source")
	}
	return cfg, nil
}

// WithFilePath specifies a file path or URL as the input source
func WithFilePath(path string) Option {
	return func(cfg *parseConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithURL specifies an http(s) URL as the input source
func WithURL(u string) Option {
	return func(cfg *parseConfig) error {
		if !isURL(u) {
			return fmt.Errorf("not an http(s) URL: %q", u)
		}
		cfg.filePath = &u
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *parseConfig) error {
		if r == nil {
			return errors.New("reader cannot be nil")
		}
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *parseConfig) error {
		if data == nil {
			return errors.New("bytes cannot be nil")
		}
		cfg.bytes = data
		return nil
	}
}

// WithLogger sets the structured logger.
// Default: no logging
func WithLogger(l Logger) Option {
	return func(cfg *parseConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithHTTPClient sets the client used for remote documents and includes.
// A nil client has no effect.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *parseConfig) error {
		if c != nil {
			cfg.httpClient = c
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent string for HTTP requests
// Default: "pedantic/<version>"
func WithUserAgent(ua string) Option {
	return func(cfg *parseConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithMaxIncludeDepth limits nested !include directives.
// Default: DefaultMaxIncludeDepth
func WithMaxIncludeDepth(depth int) Option {
	return func(cfg *parseConfig) error {
		if depth < 0 {
			return fmt.Errorf("max include depth must be non-negative, got %d", depth)
		}
		cfg.maxIncludeDepth = depth
		return nil
	}
}

// WithMaxFileSize limits the size of every loaded file in bytes.
// Default: DefaultMaxFileSize
func WithMaxFileSize(size int64) Option {
	return func(cfg *parseConfig) error {
		if size < 0 {
			return fmt.Errorf("max file size must be non-negative, got %d", size)
		}
		cfg.maxFileSize = size
		return nil
	}
}

// WithMaxAliasNodes limits how many nodes YAML alias expansion may produce.
// Default: DefaultMaxAliasNodes
func WithMaxAliasNodes(n int64) Option {
	return func(cfg *parseConfig) error {
		if n < 0 {
			return fmt.Errorf("max alias nodes must be non-negative, got %d", n)
		}
		cfg.maxAliasNodes = n
		return nil
	}
}

// WithSourceName overrides the SourcePath recorded on the Document.
func WithSourceName(name string) Option {
	return func(cfg *parseConfig) error {
		cfg.sourceName = &name
		return nil
	}
}
