package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/percolate/pedantic/converter"
	"github.com/percolate/pedantic/internal/fileutil"
	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/percolate/pedantic/raml"
	"github.com/percolate/pedantic/validator"
)

// ramlInput represents the three ways a RAML document can be provided to a
// tool. Exactly one of File, URL, or Content must be set.
type ramlInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a RAML file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch a RAML document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline RAML document content"`
}

func (r ramlInput) check() error {
	count := 0
	for _, v := range []string{r.File, r.URL, r.Content} {
		if v != "" {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}
	if int64(len(r.Content)) > cfg.MaxInlineSize {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set PEDANTIC_MAX_INLINE_SIZE to increase",
			len(r.Content), cfg.MaxInlineSize)
	}
	return nil
}

// parserOptions returns the loader options for remote inputs. Fetches go
// through the SSRF-safe client unless private addresses are allowed.
func parserOptions() []raml.Option {
	if cfg.AllowPrivateIPs {
		return nil
	}
	return []raml.Option{raml.WithHTTPClient(newSafeHTTPClient())}
}

// convert loads and converts the RAML input. A non-empty output path is
// written atomically.
func (r ramlInput) convert(ctx context.Context, c *converter.Converter, output string) (*converter.ConversionResult, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	c.ParserOptions = append(c.ParserOptions, parserOptions()...)

	if r.Content == "" {
		src := r.File
		if src == "" {
			src = r.URL
		}
		if output != "" {
			return c.Convert(ctx, src, output)
		}
		return c.ConvertTo(ctx, src, io.Discard)
	}

	result, err := c.ConvertBytes(ctx, "content.raml", []byte(r.Content))
	if err != nil {
		return nil, err
	}
	if output != "" {
		if err := fileutil.WriteAtomic(output, result.Output, fileutil.ReadableByAll); err != nil {
			return nil, &pedanticerrors.WriteError{Path: output, Cause: err}
		}
		result.OutputPath = output
	}
	return result, nil
}

// schemaInput is a converted JSON schema given as a file or inline content.
type schemaInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a converted JSON schema (schema.json)"`
	Content string `json:"content,omitempty" jsonschema:"Inline converted JSON schema"`
}

// schemaEntry holds a loaded schema with LRU ordering and TTL expiry.
type schemaEntry struct {
	schema    map[string]any
	insertAt  time.Time
	expiresAt time.Time
}

// schemaCacheStore provides a session-scoped cache of loaded schemas. File
// inputs are keyed by (absolutePath, modTime) and content inputs by a
// SHA-256 hash. Cached schemas are shared read-only.
type schemaCacheStore struct {
	mu      sync.Mutex
	entries map[string]*schemaEntry
	maxSize int
}

var schemaCache = &schemaCacheStore{
	entries: make(map[string]*schemaEntry),
	maxSize: schemaCacheMaxSize,
}

// get returns a cached schema or nil. Expired entries are lazily removed.
func (c *schemaCacheStore) get(key string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	e.insertAt = time.Now()
	return e.schema
}

// put stores a schema, evicting the least recently used entry if at capacity.
func (c *schemaCacheStore) put(key string, schema map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &schemaEntry{schema: schema, insertAt: now, expiresAt: now.Add(schemaCacheTTL)}
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry
}

// reset clears all cached entries. Used in tests.
func (c *schemaCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*schemaEntry)
}

// size returns the number of cached entries.
func (c *schemaCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (s schemaInput) cacheKey() string {
	if s.File != "" {
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	}
	h := sha256.Sum256([]byte(s.Content))
	return "content:" + hex.EncodeToString(h[:])
}

// load decodes the schema, using the session cache.
func (s schemaInput) load() (map[string]any, error) {
	if (s.File == "") == (s.Content == "") {
		return nil, fmt.Errorf("exactly one of schema file or content must be provided")
	}
	if int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline schema size %d bytes exceeds maximum %d bytes", len(s.Content), cfg.MaxInlineSize)
	}

	key := s.cacheKey()
	if key != "" {
		if cached := schemaCache.get(key); cached != nil {
			return cached, nil
		}
	}

	data := []byte(s.Content)
	if s.File != "" {
		var err error
		if data, err = os.ReadFile(s.File); err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
	}
	schema, err := validator.LoadSchema(data)
	if err != nil {
		return nil, err
	}
	if key != "" {
		schemaCache.put(key, schema)
	}
	return schema, nil
}
