package raml

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalRAML = "#%RAML 0.8\ntitle: Minimal\n"

func TestParseWithOptionsSources(t *testing.T) {
	dir := writeFiles(t, map[string]string{"index.raml": minimalRAML})
	ctx := context.Background()

	t.Run("file path", func(t *testing.T) {
		doc, err := ParseWithOptions(ctx, WithFilePath(filepath.Join(dir, "index.raml")))
		require.NoError(t, err)
		assert.Equal(t, "Minimal", mustGet(t, doc.Root, "title"))
	})

	t.Run("reader", func(t *testing.T) {
		doc, err := ParseWithOptions(ctx, WithReader(strings.NewReader(minimalRAML)))
		require.NoError(t, err)
		assert.Equal(t, "ParseReader.raml", doc.SourcePath)
	})

	t.Run("bytes with source name", func(t *testing.T) {
		doc, err := ParseWithOptions(ctx, WithBytes([]byte(minimalRAML)), WithSourceName("inline.raml"))
		require.NoError(t, err)
		assert.Equal(t, "inline.raml", doc.SourcePath)
	})

	t.Run("source name overrides file path", func(t *testing.T) {
		doc, err := ParseWithOptions(ctx, WithFilePath(filepath.Join(dir, "index.raml")), WithSourceName("renamed"))
		require.NoError(t, err)
		assert.Equal(t, "renamed", doc.SourcePath)
	})
}

func TestParseWithOptionsValidation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"no source", nil, "must specify an input source"},
		{"two sources", []Option{WithFilePath("a.raml"), WithBytes([]byte(minimalRAML))}, "exactly one input source"},
		{"nil reader", []Option{WithReader(nil)}, "reader cannot be nil"},
		{"nil bytes", []Option{WithBytes(nil)}, "bytes cannot be nil"},
		{"bad url", []Option{WithURL("ftp://example.com/a.raml")}, "not an http(s) URL"},
		{"negative depth", []Option{WithBytes([]byte(minimalRAML)), WithMaxIncludeDepth(-1)}, "non-negative"},
		{"negative size", []Option{WithBytes([]byte(minimalRAML)), WithMaxFileSize(-1)}, "non-negative"},
		{"negative alias nodes", []Option{WithBytes([]byte(minimalRAML)), WithMaxAliasNodes(-1)}, "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWithOptions(ctx, tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseWithOptionsConfiguresParser(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"index.raml": "#%RAML 0.8\ntitle: X\nfoo: !include a.raml\n",
		"a.raml":     "bar: !include b.raml\n",
		"b.raml":     "baz: 1\n",
	})

	_, err := ParseWithOptions(context.Background(),
		WithFilePath(filepath.Join(dir, "index.raml")),
		WithMaxIncludeDepth(1),
	)
	assert.ErrorIs(t, err, pedanticerrors.ErrResourceLimit)

	_, err = ParseWithOptions(context.Background(),
		WithBytes(bytes.Repeat([]byte("#"), 128)),
		WithMaxFileSize(16),
	)
	assert.ErrorIs(t, err, pedanticerrors.ErrResourceLimit)

	var buf bytes.Buffer
	doc, err := ParseWithOptions(context.Background(),
		WithFilePath(filepath.Join(dir, "index.raml")),
		WithLogger(newTestLogger(&buf)),
		WithHTTPClient(http.DefaultClient),
		WithUserAgent("custom"),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.IncludeCount)
	assert.Contains(t, buf.String(), "resolved include")
}
