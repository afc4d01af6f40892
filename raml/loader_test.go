package raml

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncludes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"index.raml": `#%RAML 0.8
title: Includes
schemas:
  - user: !include schemas/user.json
settings: !include settings.yaml
notes: !include docs/notes.md
nested: !include sub/outer.raml
`,
		"schemas/user.json": `{"type": "object"}`,
		"settings.yaml":     "mode: strict\nretries: 2\n",
		"docs/notes.md":     "# Notes\n",
		"sub/outer.raml":    "inner: !include inner.yml\n",
		"sub/inner.yml":     "value: 1\n",
	})

	doc, err := New().Parse(context.Background(), filepath.Join(dir, "index.raml"))
	require.NoError(t, err)

	schemas, ok := mustGet(t, doc.Root, "schemas").([]any)
	require.True(t, ok)
	require.Len(t, schemas, 1)
	assert.Equal(t, `{"type": "object"}`, mustGet(t, schemas[0].(*Map), "user"))

	settings := mustMap(t, doc.Root, "settings")
	assert.Equal(t, "strict", mustGet(t, settings, "mode"))
	assert.Equal(t, 2, mustGet(t, settings, "retries"))

	assert.Equal(t, "# Notes\n", mustGet(t, doc.Root, "notes"))

	inner := mustMap(t, mustMap(t, doc.Root, "nested"), "inner")
	assert.Equal(t, 1, mustGet(t, inner, "value"))

	assert.Equal(t, 5, doc.IncludeCount)
}

func TestIncludeFailures(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		root     string
		depth    int
		sentinel error
	}{
		{
			name: "missing target",
			files: map[string]string{
				"index.raml": "#%RAML 0.8\ntitle: X\nfoo: !include missing.yaml\n",
			},
			root:     "index.raml",
			sentinel: pedanticerrors.ErrReference,
		},
		{
			name: "path traversal",
			files: map[string]string{
				"api/index.raml": "#%RAML 0.8\ntitle: X\nfoo: !include ../secret.yaml\n",
				"secret.yaml":    "password: hunter2\n",
			},
			root:     "api/index.raml",
			sentinel: pedanticerrors.ErrPathTraversal,
		},
		{
			name: "self include",
			files: map[string]string{
				"index.raml": "#%RAML 0.8\ntitle: X\nfoo: !include index.raml\n",
			},
			root:     "index.raml",
			sentinel: pedanticerrors.ErrCircularReference,
		},
		{
			name: "include cycle",
			files: map[string]string{
				"index.raml": "#%RAML 0.8\ntitle: X\nfoo: !include a.raml\n",
				"a.raml":     "bar: !include b.raml\n",
				"b.raml":     "baz: !include a.raml\n",
			},
			root:     "index.raml",
			sentinel: pedanticerrors.ErrCircularReference,
		},
		{
			name: "depth limit",
			files: map[string]string{
				"index.raml": "#%RAML 0.8\ntitle: X\nfoo: !include a.raml\n",
				"a.raml":     "bar: !include b.raml\n",
				"b.raml":     "baz: 1\n",
			},
			root:     "index.raml",
			depth:    1,
			sentinel: pedanticerrors.ErrResourceLimit,
		},
		{
			name: "malformed include",
			files: map[string]string{
				"index.raml": "#%RAML 0.8\ntitle: X\nfoo: !include a.yaml\n",
				"a.yaml":     "bar: [unclosed\n",
			},
			root:     "index.raml",
			sentinel: pedanticerrors.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, tt.files)
			p := New()
			p.MaxIncludeDepth = tt.depth
			_, err := p.Parse(context.Background(), filepath.Join(dir, filepath.FromSlash(tt.root)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "unexpected error: %v", err)
		})
	}
}

func TestIncludeSiblingsAreNotCycles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"index.raml": "#%RAML 0.8\ntitle: X\na: !include shared.yaml\nb: !include shared.yaml\n",
		"shared.yaml": "k: v\n",
	})
	doc, err := New().Parse(context.Background(), filepath.Join(dir, "index.raml"))
	require.NoError(t, err)
	assert.Equal(t, "v", mustGet(t, mustMap(t, doc.Root, "a"), "k"))
	assert.Equal(t, "v", mustGet(t, mustMap(t, doc.Root, "b"), "k"))
}

func TestRemoteDocument(t *testing.T) {
	var userAgents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents = append(userAgents, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/api/index.raml":
			_, _ = w.Write([]byte("#%RAML 0.8\ntitle: Remote\ntypes: !include types.yaml\nschema: !include schemas/a.json\n"))
		case "/api/types.yaml":
			_, _ = w.Write([]byte("kind: remote\n"))
		case "/api/schemas/a.json":
			_, _ = w.Write([]byte(`{"type":"string"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := New()
	p.UserAgent = "pedantic-test"
	doc, err := p.Parse(context.Background(), server.URL+"/api/index.raml")
	require.NoError(t, err)

	assert.Equal(t, "Remote", mustGet(t, doc.Root, "title"))
	assert.Equal(t, "remote", mustGet(t, mustMap(t, doc.Root, "types"), "kind"))
	assert.Equal(t, `{"type":"string"}`, mustGet(t, doc.Root, "schema"))
	assert.Equal(t, []string{"pedantic-test", "pedantic-test", "pedantic-test"}, userAgents)
}

func TestRemoteDocumentErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/local.raml":
			_, _ = w.Write([]byte("#%RAML 0.8\ntitle: X\nfoo: !include /etc/hosts\n"))
		case "/broken.raml":
			_, _ = w.Write([]byte("#%RAML 0.8\ntitle: X\nfoo: !include missing.yaml\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Run("not found", func(t *testing.T) {
		_, err := New().Parse(context.Background(), server.URL+"/nope.raml")
		require.Error(t, err)
		assert.ErrorIs(t, err, pedanticerrors.ErrParse)
		assert.Contains(t, err.Error(), "HTTP 404")
	})

	t.Run("remote include not found", func(t *testing.T) {
		_, err := New().Parse(context.Background(), server.URL+"/broken.raml")
		require.Error(t, err)
		assert.ErrorIs(t, err, pedanticerrors.ErrReference)
	})

	t.Run("absolute include resolves against the host", func(t *testing.T) {
		_, err := New().Parse(context.Background(), server.URL+"/local.raml")
		require.Error(t, err)
		assert.ErrorIs(t, err, pedanticerrors.ErrReference)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New().Parse(ctx, server.URL+"/broken.raml")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsYAMLInclude(t *testing.T) {
	tests := []struct {
		src  source
		want bool
	}{
		{source{location: "/a/b.raml"}, true},
		{source{location: "/a/b.YAML"}, true},
		{source{location: "/a/b.yml"}, true},
		{source{location: "/a/b.json"}, false},
		{source{location: "/a/b.md"}, false},
		{source{location: "http://h/x.raml?v=1", remote: true}, true},
		{source{location: "http://h/x.json", remote: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.src.location, func(t *testing.T) {
			assert.Equal(t, tt.want, isYAMLInclude(tt.src))
		})
	}
}

// nestedAliases returns a document whose last anchor expands to
// fanout^levels scalars.
func nestedAliases(levels, fanout int) string {
	var b strings.Builder
	b.WriteString("#%RAML 0.8\ntitle: Aliases\n")
	b.WriteString("a0: &a0 [" + strings.TrimSuffix(strings.Repeat("x,", fanout), ",") + "]\n")
	for i := 1; i <= levels; i++ {
		refs := make([]string, fanout)
		for j := range refs {
			refs[j] = fmt.Sprintf("*a%d", i-1)
		}
		fmt.Fprintf(&b, "a%d: &a%d [%s]\n", i, i, strings.Join(refs, ","))
	}
	return b.String()
}

func TestAliasExpansionLimit(t *testing.T) {
	t.Run("exponential expansion is rejected", func(t *testing.T) {
		data := nestedAliases(7, 9)
		require.Less(t, len(data), 512)

		_, err := New().ParseBytes(context.Background(), []byte(data), "bomb.raml")
		require.Error(t, err)
		assert.ErrorIs(t, err, pedanticerrors.ErrResourceLimit)

		var rle *pedanticerrors.ResourceLimitError
		require.True(t, errors.As(err, &rle))
		assert.Equal(t, "alias_expansion", rle.ResourceType)
		assert.Equal(t, DefaultMaxAliasNodes, rle.Limit)
	})

	t.Run("ordinary aliases are expanded", func(t *testing.T) {
		doc, err := New().ParseBytes(context.Background(), []byte(nestedAliases(2, 3)), "")
		require.NoError(t, err)
		a2, ok := mustGet(t, doc.Root, "a2").([]any)
		require.True(t, ok)
		require.Len(t, a2, 3)
		xs := []any{"x", "x", "x"}
		assert.Equal(t, []any{xs, xs, xs}, a2[0])
	})

	t.Run("configured limit", func(t *testing.T) {
		_, err := ParseWithOptions(context.Background(),
			WithBytes([]byte(nestedAliases(2, 3))),
			WithMaxAliasNodes(5),
		)
		assert.ErrorIs(t, err, pedanticerrors.ErrResourceLimit)
	})
}
