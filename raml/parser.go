package raml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/percolate/pedantic"
	"github.com/percolate/pedantic/pedanticerrors"
	"go.yaml.in/yaml/v4"
)

const (
	// DefaultMaxIncludeDepth is the default limit for nested !include directives.
	DefaultMaxIncludeDepth = 32
	// DefaultMaxFileSize is the default size limit for the root document and
	// each included file (10MB).
	DefaultMaxFileSize int64 = 10 * 1024 * 1024
	// DefaultMaxAliasNodes is the default limit on nodes produced by
	// expanding YAML aliases, summed over the root document and its includes.
	DefaultMaxAliasNodes int64 = 100_000
	// DefaultHTTPTimeout is the timeout of the HTTP client created when
	// Parser.HTTPClient is nil.
	DefaultHTTPTimeout = 30 * time.Second
)

var headerPattern = regexp.MustCompile(`^#%RAML[ \t]+(0\.8|1\.0)\b`)

// Parser loads RAML documents.
type Parser struct {
	// Logger is the structured logger for debug output.
	// If nil, logging is disabled (default)
	Logger Logger
	// HTTPClient is used for remote documents and remote !include targets.
	// If nil, a client with DefaultHTTPTimeout is created.
	HTTPClient *http.Client
	// UserAgent is sent with every HTTP request.
	// Defaults to pedantic.UserAgent() if not set
	UserAgent string
	// MaxIncludeDepth limits nested !include directives (0 means use default).
	MaxIncludeDepth int
	// MaxFileSize limits the size of every loaded file (0 means use default).
	MaxFileSize int64
	// MaxAliasNodes limits the nodes built while expanding YAML aliases
	// (0 means use default).
	MaxAliasNodes int64
}

// New creates a new Parser instance with default settings.
func New() *Parser {
	return &Parser{
		UserAgent: pedantic.UserAgent(),
	}
}

func (p *Parser) log() Logger {
	return OrNop(p.Logger)
}

func (p *Parser) maxIncludeDepth() int {
	if p.MaxIncludeDepth > 0 {
		return p.MaxIncludeDepth
	}
	return DefaultMaxIncludeDepth
}

func (p *Parser) maxFileSize() int64 {
	if p.MaxFileSize > 0 {
		return p.MaxFileSize
	}
	return DefaultMaxFileSize
}

func (p *Parser) maxAliasNodes() int64 {
	if p.MaxAliasNodes > 0 {
		return p.MaxAliasNodes
	}
	return DefaultMaxAliasNodes
}

// Parse loads a RAML document from a file path or an http(s) URL.
// Relative !include targets are resolved against the directory (or URL) of
// the document that contains them.
func (p *Parser) Parse(ctx context.Context, pathOrURL string) (*Document, error) {
	start := time.Now()
	src, err := rootSource(pathOrURL)
	if err != nil {
		return nil, &pedanticerrors.ParseError{Path: pathOrURL, Message: "invalid document location", Cause: err}
	}

	l := p.newLoader(ctx, src)
	data, err := l.read(src)
	if err != nil {
		return nil, &pedanticerrors.ParseError{Path: pathOrURL, Message: "failed to read document", Cause: err}
	}

	doc, err := l.load(data, src, pathOrURL)
	if err != nil {
		return nil, err
	}
	doc.LoadTime = time.Since(start)
	p.log().Debug("loaded RAML document",
		"path", pathOrURL,
		"version", doc.RAMLVersion,
		"includes", doc.IncludeCount,
		"duration", doc.LoadTime,
	)
	return doc, nil
}

// ParseReader loads a RAML document from r. Relative includes are resolved
// against the current working directory.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxFileSize()+1))
	if err != nil {
		return nil, &pedanticerrors.ParseError{Path: "ParseReader.raml", Message: "failed to read data", Cause: err}
	}
	return p.ParseBytes(ctx, data, "ParseReader.raml")
}

// ParseBytes loads a RAML document held in memory. name is used as the
// document's SourcePath and error location; it defaults to "ParseBytes.raml".
// Relative includes are resolved against the current working directory.
func (p *Parser) ParseBytes(ctx context.Context, data []byte, name string) (*Document, error) {
	start := time.Now()
	if name == "" {
		name = "ParseBytes.raml"
	}
	if int64(len(data)) > p.maxFileSize() {
		return nil, &pedanticerrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        p.maxFileSize(),
			Actual:       int64(len(data)),
			Message:      name,
		}
	}
	cwd, err := filepath.Abs(".")
	if err != nil {
		return nil, &pedanticerrors.ParseError{Path: name, Message: "failed to resolve working directory", Cause: err}
	}
	src := source{location: filepath.Join(cwd, filepath.Base(name))}

	doc, err := p.newLoader(ctx, src).load(data, src, name)
	if err != nil {
		return nil, err
	}
	doc.LoadTime = time.Since(start)
	return doc, nil
}

// load turns raw document bytes into a shaped Document.
func (l *loader) load(data []byte, src source, name string) (*Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	version, err := ramlVersion(data)
	if err != nil {
		return nil, &pedanticerrors.ParseError{Path: name, Line: 1, Message: err.Error()}
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, yamlError(name, err)
	}

	l.stack = append(l.stack, src.key())
	tree, err := l.build(&node, src, 0)
	if err != nil {
		return nil, err
	}
	root, ok := tree.(*Map)
	if !ok {
		return nil, &pedanticerrors.ParseError{Path: name, Message: "document must be a map"}
	}

	shaped, err := newShaper(root, version, l.p.log()).shape()
	if err != nil {
		var pe *pedanticerrors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = name
		}
		return nil, err
	}

	return &Document{
		Root:         shaped,
		RAMLVersion:  version,
		SourcePath:   name,
		SourceSize:   int64(len(data)),
		IncludeCount: l.includes,
	}, nil
}

// ramlVersion validates the "#%RAML <version>" header line.
func ramlVersion(data []byte) (string, error) {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	m := headerPattern.FindSubmatch(bytes.TrimRight(line, "\r"))
	if m == nil {
		return "", fmt.Errorf("invalid RAML version header: expected \"#%%RAML 0.8\" or \"#%%RAML 1.0\" on the first line")
	}
	return string(m[1]), nil
}

var yamlPosition = regexp.MustCompile(`line (\d+)(?:, column (\d+))?`)

// yamlError converts a YAML syntax error into a ParseError, keeping the
// reported position when the message carries one.
func yamlError(path string, err error) error {
	pe := &pedanticerrors.ParseError{Path: path, Message: "invalid YAML", Cause: err}
	if m := yamlPosition.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			pe.Column, _ = strconv.Atoi(m[2])
		}
	}
	return pe
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readFile reads a local file, enforcing the size limit before loading it.
func readFile(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > limit {
		return nil, &pedanticerrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        limit,
			Actual:       info.Size(),
			Message:      path,
		}
	}
	return os.ReadFile(path) //nolint:gosec // path comes from the caller or a checked include
}

// fetchURL downloads a remote document.
func (p *Parser) fetchURL(ctx context.Context, urlStr string) ([]byte, error) {
	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("raml: failed to create request: %w", err)
	}
	userAgent := p.UserAgent
	if userAgent == "" {
		userAgent = pedantic.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)

	p.log().Debug("fetching remote document", "url", urlStr)
	resp, err := client.Do(req) //nolint:gosec // URL is user-provided input
	if err != nil {
		return nil, fmt.Errorf("raml: failed to fetch URL: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("raml: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limit := p.maxFileSize()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("raml: failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, &pedanticerrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        limit,
			Actual:       int64(len(data)),
			Message:      urlStr,
		}
	}
	return data, nil
}
