package raml

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/percolate/pedantic/pedanticerrors"
	"go.yaml.in/yaml/v4"
)

const (
	includeTag = "!include"
	mergeTag   = "!!merge"
)

// source identifies a loaded document: an absolute file path or a URL.
type source struct {
	location string
	remote   bool
}

func (s source) key() string { return s.location }

// rootSource builds the source of the document passed to Parse.
func rootSource(pathOrURL string) (source, error) {
	if isURL(pathOrURL) {
		if _, err := url.Parse(pathOrURL); err != nil {
			return source{}, err
		}
		return source{location: pathOrURL, remote: true}, nil
	}
	abs, err := filepath.Abs(pathOrURL)
	if err != nil {
		return source{}, err
	}
	return source{location: abs}, nil
}

// loader resolves one document tree. It is not safe for concurrent use.
type loader struct {
	p   *Parser
	ctx context.Context

	// rootDir bounds local includes. Includes in remote documents resolve
	// against their URL, so it is unset for remote roots.
	rootDir  string
	stack    []string
	includes int

	// aliasDepth is non-zero while an alias target is being rebuilt;
	// aliasNodes counts the nodes built that way.
	aliasDepth int
	aliasNodes int64
}

func (p *Parser) newLoader(ctx context.Context, root source) *loader {
	if ctx == nil {
		ctx = context.Background()
	}
	l := &loader{p: p, ctx: ctx}
	if !root.remote {
		l.rootDir = filepath.Dir(root.location)
	}
	return l
}

func (l *loader) read(src source) ([]byte, error) {
	if err := l.ctx.Err(); err != nil {
		return nil, err
	}
	if src.remote {
		return l.p.fetchURL(l.ctx, src.location)
	}
	return readFile(src.location, l.p.maxFileSize())
}

// resolve locates an !include target relative to the including document.
func (l *loader) resolve(ref string, from source) (source, error) {
	if isURL(ref) {
		return source{location: ref, remote: true}, nil
	}

	if from.remote {
		base, err := url.Parse(from.location)
		if err != nil {
			return source{}, &pedanticerrors.ReferenceError{Ref: ref, RefType: "url", Message: "invalid base URL", Cause: err}
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return source{}, &pedanticerrors.ReferenceError{Ref: ref, RefType: "url", Message: "invalid include", Cause: err}
		}
		return source{location: base.ResolveReference(rel).String(), remote: true}, nil
	}

	target := ref
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(from.location), target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(l.rootDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return source{}, &pedanticerrors.ReferenceError{
			Ref:             ref,
			RefType:         "file",
			IsPathTraversal: true,
		}
	}
	return source{location: target}, nil
}

// build converts a YAML node into the document tree, resolving includes.
func (l *loader) build(n *yaml.Node, src source, depth int) (any, error) {
	if l.aliasDepth > 0 {
		l.aliasNodes++
		if l.aliasNodes > l.p.maxAliasNodes() {
			return nil, &pedanticerrors.ResourceLimitError{
				ResourceType: "alias_expansion",
				Limit:        l.p.maxAliasNodes(),
				Actual:       l.aliasNodes,
				Message:      src.location,
			}
		}
	}

	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return l.build(n.Content[0], src, depth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		l.aliasDepth++
		defer func() { l.aliasDepth-- }()
		return l.build(n.Alias, src, depth)
	case yaml.MappingNode:
		return l.buildMap(n, src, depth)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := l.build(c, src, depth)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		if n.Tag == includeTag {
			return l.include(n, src, depth)
		}
		return scalar(n), nil
	default:
		return nil, &pedanticerrors.ParseError{Path: src.location, Line: n.Line, Column: n.Column, Message: "unsupported YAML node"}
	}
}

func (l *loader) buildMap(n *yaml.Node, src source, depth int) (any, error) {
	m := NewMap()
	var merged []*Map
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == mergeTag {
			mv, err := l.build(v, src, depth)
			if err != nil {
				return nil, err
			}
			switch t := mv.(type) {
			case *Map:
				merged = append(merged, t)
			case []any:
				for _, item := range t {
					if im, ok := item.(*Map); ok {
						merged = append(merged, im)
					}
				}
			}
			continue
		}

		key := k.Value
		if k.Kind == yaml.AliasNode && k.Alias != nil {
			key = k.Alias.Value
		}
		val, err := l.build(v, src, depth)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}

	// Explicit keys win over merged ones; earlier merge sources win over later.
	for _, mm := range merged {
		for k, v := range mm.FromOldest() {
			if _, exists := m.Get(k); !exists {
				m.Set(k, copyValue(v))
			}
		}
	}
	return m, nil
}

// include loads the target of an !include directive. YAML documents are
// inlined as trees; every other file is inlined as its text.
func (l *loader) include(n *yaml.Node, from source, depth int) (any, error) {
	ref := strings.TrimSpace(n.Value)
	if ref == "" {
		return nil, &pedanticerrors.ParseError{Path: from.location, Line: n.Line, Column: n.Column, Message: "!include requires a path"}
	}

	if depth+1 > l.p.maxIncludeDepth() {
		return nil, &pedanticerrors.ResourceLimitError{
			ResourceType: "include_depth",
			Limit:        int64(l.p.maxIncludeDepth()),
			Actual:       int64(depth + 1),
			Message:      ref,
		}
	}

	target, err := l.resolve(ref, from)
	if err != nil {
		return nil, err
	}

	refType := "file"
	if target.remote {
		refType = "url"
	}
	if slices.Contains(l.stack, target.key()) {
		return nil, &pedanticerrors.ReferenceError{Ref: ref, RefType: refType, IsCircular: true}
	}

	data, err := l.read(target)
	if err != nil {
		return nil, &pedanticerrors.ReferenceError{
			Ref:     ref,
			RefType: refType,
			Message: fmt.Sprintf("failed to include %s", target.location),
			Cause:   err,
		}
	}
	l.includes++
	l.p.log().Debug("resolved include", "ref", ref, "target", target.location, "depth", depth+1)

	if !isYAMLInclude(target) {
		return string(data), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, yamlError(target.location, err)
	}

	l.stack = append(l.stack, target.key())
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()
	return l.build(&doc, target, depth+1)
}

// isYAMLInclude reports whether an include target is parsed rather than
// inlined as text.
func isYAMLInclude(s source) bool {
	name := s.location
	if s.remote {
		if u, err := url.Parse(s.location); err == nil {
			name = u.Path
		}
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".raml", ".yaml", ".yml":
		return true
	}
	return false
}

// scalar decodes a scalar node into a JSON-compatible value.
func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var v any
		if err := n.Decode(&v); err == nil {
			return v
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}
	return n.Value
}
