package raml

import (
	"bytes"
	"encoding/json"
	"time"

	orderedmap "github.com/pb33f/ordered-map/v2"
)

// Map is an insertion-ordered RAML mapping. Keys keep the order in which they
// appear in the source document.
type Map = orderedmap.OrderedMap[string, any]

// NewMap returns an empty Map that marshals to JSON without HTML escaping.
func NewMap() *Map {
	return orderedmap.New[string, any](orderedmap.WithDisableHTMLEscape[string, any]())
}

// Document is a loaded RAML document.
//
// Root holds the document tree: *Map for mappings, []any for sequences and
// string, int, float64, bool or nil for scalars.
type Document struct {
	// Root is the top-level mapping.
	Root *Map
	// RAMLVersion is the version from the "#%RAML" header line (e.g. "0.8").
	RAMLVersion string
	// SourcePath is the file path or URL the document was loaded from.
	SourcePath string
	// SourceSize is the size of the root document in bytes.
	SourceSize int64
	// IncludeCount is the number of !include directives resolved.
	IncludeCount int
	// LoadTime is how long loading and shaping took.
	LoadTime time.Duration
}

// Get returns a top-level value.
func (d *Document) Get(key string) (any, bool) {
	if d == nil || d.Root == nil {
		return nil, false
	}
	return d.Root.Get(key)
}

// Strip removes the given top-level keys and returns the ones that were present.
// Absent keys are ignored.
func (d *Document) Strip(keys ...string) []string {
	if d == nil || d.Root == nil {
		return nil
	}
	var removed []string
	for _, key := range keys {
		if _, ok := d.Root.Delete(key); ok {
			removed = append(removed, key)
		}
	}
	return removed
}

// MarshalJSON implements json.Marshaler, preserving source key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil || d.Root == nil {
		return []byte("null"), nil
	}
	return d.Root.MarshalJSON()
}

// MarshalJSONIndent marshals the document with the given prefix and indent.
// HTML characters are not escaped and no trailing newline is written, so the
// result is byte-stable for a given tree.
func (d *Document) MarshalJSONIndent(prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ToPlain converts the document into plain Go maps and slices, losing key
// order. It is what json.Unmarshal of the converted schema would produce.
func (d *Document) ToPlain() (map[string]any, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getMap returns m[key] when it is a mapping.
func getMap(m *Map, key string) (*Map, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	mm, ok := v.(*Map)
	return mm, ok
}

// copyValue deep-copies a tree value.
func copyValue(v any) any {
	switch t := v.(type) {
	case *Map:
		out := NewMap()
		for k, val := range t.FromOldest() {
			out.Set(k, copyValue(val))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = copyValue(val)
		}
		return out
	default:
		return v
	}
}
