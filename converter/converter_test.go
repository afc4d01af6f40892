package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/percolate/pedantic/raml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleRAML = `#%RAML 0.8
title: API
documentation:
  - title: Home
    content: Welcome to the API
baseUri: http://x
`

func writeRAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestConvertExample covers the documented example: documentation is
// removed and everything else is kept in order.
func TestConvertExample(t *testing.T) {
	dir := t.TempDir()
	src := writeRAML(t, dir, "index.raml", exampleRAML)
	dst := filepath.Join(dir, "schema.json")

	result, err := ConvertFile(context.Background(), src, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"title\": \"API\",\n  \"baseUri\": \"http://x\"\n}", string(data))

	assert.Equal(t, data, result.Output)
	assert.Equal(t, dst, result.OutputPath)
	assert.Equal(t, src, result.SourcePath)
	assert.Equal(t, "0.8", result.RAMLVersion)
	assert.Equal(t, []string{"documentation"}, result.StrippedKeys)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

// TestConvertWithoutDocumentation checks that the output equals the loaded
// tree when there is nothing to strip.
func TestConvertWithoutDocumentation(t *testing.T) {
	const src = `#%RAML 0.8
title: Plain
version: v1
/items:
  get:
    description: List items
`
	dir := t.TempDir()
	path := writeRAML(t, dir, "index.raml", src)

	var buf bytes.Buffer
	result, err := New().ConvertTo(context.Background(), path, &buf)
	require.NoError(t, err)
	assert.Empty(t, result.StrippedKeys)

	doc, err := raml.New().Parse(context.Background(), path)
	require.NoError(t, err)
	want, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, string(want), buf.String())
}

// TestConvertPreservesOrder checks that only the documentation key is
// removed and all other keys keep their relative order.
func TestConvertPreservesOrder(t *testing.T) {
	const src = `#%RAML 0.8
zeta: 1
documentation:
  - title: A
    content: B
alpha: 2
title: Ordered
mid: 3
`
	dir := t.TempDir()
	path := writeRAML(t, dir, "index.raml", src)

	var buf bytes.Buffer
	_, err := New().ConvertTo(context.Background(), path, &buf)
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"zeta\": 1,\n  \"alpha\": 2,\n  \"title\": \"Ordered\",\n  \"mid\": 3\n}", buf.String())
}

func TestConvertIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := writeRAML(t, dir, "index.raml", exampleRAML+`/users:
  /{id}:
    get:
      responses:
        200:
          body:
            application/json:
              example: '{"name": "<b>"}'
`)
	dst := filepath.Join(dir, "schema.json")

	_, err := ConvertFile(context.Background(), src, dst)
	require.NoError(t, err)
	first, err := os.ReadFile(dst)
	require.NoError(t, err)

	_, err = ConvertFile(context.Background(), src, dst)
	require.NoError(t, err)
	second, err := os.ReadFile(dst)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `<b>`)
	assert.NotContains(t, string(first), `\u003c`, "HTML characters are not escaped")
}

func TestConvertFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		create   bool
		sentinel error
	}{
		{name: "missing source", create: false, sentinel: pedanticerrors.ErrParse},
		{name: "malformed yaml", content: "#%RAML 0.8\ntitle: [oops\n", create: true, sentinel: pedanticerrors.ErrParse},
		{name: "missing header", content: "title: API\n", create: true, sentinel: pedanticerrors.ErrParse},
		{name: "unresolved include", content: "#%RAML 0.8\ntitle: A\nx: !include nope.yaml\n", create: true, sentinel: pedanticerrors.ErrReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "index.raml")
			if tt.create {
				writeRAML(t, dir, "index.raml", tt.content)
			}
			dst := filepath.Join(dir, "schema.json")

			_, err := ConvertFile(context.Background(), src, dst)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "unexpected error: %v", err)

			_, statErr := os.Stat(dst)
			assert.True(t, os.IsNotExist(statErr), "destination must not be created")
		})
	}
}

func TestConvertFailureKeepsExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := writeRAML(t, dir, "index.raml", "not raml")
	dst := writeRAML(t, dir, "schema.json", `{"old": true}`)

	_, err := ConvertFile(context.Background(), src, dst)
	require.Error(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, `{"old": true}`, string(data))
}

func TestConvertWriteError(t *testing.T) {
	dir := t.TempDir()
	src := writeRAML(t, dir, "index.raml", exampleRAML)

	t.Run("missing directory", func(t *testing.T) {
		_, err := ConvertFile(context.Background(), src, filepath.Join(dir, "missing", "schema.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, pedanticerrors.ErrWrite)
		var we *pedanticerrors.WriteError
		require.True(t, errors.As(err, &we))
		assert.Equal(t, filepath.Join(dir, "missing", "schema.json"), we.Path)
	})

	t.Run("destination is a directory", func(t *testing.T) {
		_, err := ConvertFile(context.Background(), src, dir)
		assert.ErrorIs(t, err, pedanticerrors.ErrWrite)
	})

	t.Run("writer fails", func(t *testing.T) {
		_, err := New().ConvertTo(context.Background(), src, failingWriter{})
		assert.ErrorIs(t, err, pedanticerrors.ErrWrite)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestConverterSettings(t *testing.T) {
	dir := t.TempDir()
	src := writeRAML(t, dir, "index.raml", exampleRAML)

	t.Run("custom strip keys and indent", func(t *testing.T) {
		c := New()
		c.StripKeys = []string{"baseUri"}
		c.Indent = "\t"
		var buf bytes.Buffer
		result, err := c.ConvertTo(context.Background(), src, &buf)
		require.NoError(t, err)
		assert.Equal(t, []string{"baseUri"}, result.StrippedKeys)
		assert.Contains(t, buf.String(), "\n\t\"documentation\": [")
		assert.NotContains(t, buf.String(), "baseUri")
	})

	t.Run("empty strip keys keep everything", func(t *testing.T) {
		c := New()
		c.StripKeys = []string{}
		var buf bytes.Buffer
		_, err := c.ConvertTo(context.Background(), src, &buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "documentation")
	})

	t.Run("file mode", func(t *testing.T) {
		c := New()
		c.FileMode = 0o600
		dst := filepath.Join(dir, "private.json")
		_, err := c.Convert(context.Background(), src, dst)
		require.NoError(t, err)
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("parser options", func(t *testing.T) {
		c := New()
		c.ParserOptions = []raml.Option{raml.WithMaxFileSize(8)}
		_, err := c.Convert(context.Background(), src, filepath.Join(dir, "never.json"))
		assert.ErrorIs(t, err, pedanticerrors.ErrResourceLimit)
	})
}

func TestConvertDocument(t *testing.T) {
	doc, err := raml.New().ParseBytes(context.Background(), []byte(exampleRAML), "")
	require.NoError(t, err)

	out, err := New().ConvertDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"title\": \"API\",\n  \"baseUri\": \"http://x\"\n}", string(out))

	again, err := New().ConvertDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, out, again, "converting an already stripped document is a no-op")

	_, err = New().ConvertDocument(nil)
	assert.Error(t, err)
}

func TestConvertBytes(t *testing.T) {
	tests := []struct {
		name      string
		converter *Converter
		wantKeys  []string
		wantOut   string
	}{
		{
			name:      "default strip keys",
			converter: New(),
			wantKeys:  []string{"documentation"},
			wantOut:   "{\n  \"title\": \"API\",\n  \"baseUri\": \"http://x\"\n}",
		},
		{
			name:      "keep everything",
			converter: &Converter{StripKeys: []string{}},
			wantKeys:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.converter.ConvertBytes(context.Background(), "content.raml", []byte(exampleRAML))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, result.StrippedKeys)
			assert.Equal(t, "content.raml", result.SourcePath)
			assert.Equal(t, "0.8", result.RAMLVersion)
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, string(result.Output))
			}
			_, present := result.Document.Get("documentation")
			assert.Equal(t, len(tt.wantKeys) == 0, present)
		})
	}

	_, err := New().ConvertBytes(context.Background(), "bad.raml", []byte("#%RAML 0.8\ntitle: [unclosed\n"))
	assert.ErrorIs(t, err, pedanticerrors.ErrParse)
}
