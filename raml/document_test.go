package raml

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStrip(t *testing.T) {
	doc := mustParseString(t, `#%RAML 0.8
title: API
documentation:
  - title: Home
    content: Welcome
baseUri: http://x
`)

	removed := doc.Strip("documentation", "absent")
	assert.Equal(t, []string{"documentation"}, removed)
	assert.Equal(t, []string{"title", "baseUri"}, collectKeys(doc.Root))

	assert.Empty(t, doc.Strip("documentation"), "stripping twice is a no-op")

	var empty *Document
	assert.Nil(t, empty.Strip("documentation"))
}

func TestDocumentMarshalJSONIndent(t *testing.T) {
	doc := mustParseString(t, `#%RAML 0.8
title: "API <beta> & co"
baseUri: http://x
version: 1
`)

	out, err := doc.MarshalJSONIndent("", "  ")
	require.NoError(t, err)
	assert.Equal(t, `{
  "title": "API <beta> & co",
  "baseUri": "http://x",
  "version": 1
}`, string(out))

	again, err := doc.MarshalJSONIndent("", "  ")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestDocumentMarshalJSONNested(t *testing.T) {
	doc := mustParseString(t, "#%RAML 0.8\ntitle: T\n/a:\n  get:\n")
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"title":"T","resources":[{"relativeUri":"/a","relativeUriPathSegments":["a"],"methods":[{"method":"get"}]}]}`,
		string(out))
}

func TestDocumentToPlain(t *testing.T) {
	doc := mustParseString(t, "#%RAML 0.8\ntitle: T\nnums: [1, 2]\n")
	plain, err := doc.ToPlain()
	require.NoError(t, err)
	assert.Equal(t, "T", plain["title"])
	assert.Equal(t, []any{float64(1), float64(2)}, plain["nums"])
}

func TestDocumentGet(t *testing.T) {
	doc := mustParseString(t, "#%RAML 0.8\ntitle: T\n")
	v, ok := doc.Get("title")
	assert.True(t, ok)
	assert.Equal(t, "T", v)

	_, ok = doc.Get("missing")
	assert.False(t, ok)

	var nilDoc *Document
	_, ok = nilDoc.Get("title")
	assert.False(t, ok)
	out, err := nilDoc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestCopyValue(t *testing.T) {
	inner := NewMap()
	inner.Set("k", "v")
	orig := NewMap()
	orig.Set("list", []any{inner})

	cp := copyValue(orig).(*Map)
	cpInner := mustGet(t, cp, "list").([]any)[0].(*Map)
	cpInner.Set("k", "changed")

	assert.Equal(t, "v", mustGet(t, inner, "k"))
}
