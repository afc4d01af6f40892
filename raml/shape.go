package raml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/percolate/pedantic/internal/httputil"
	"github.com/percolate/pedantic/pedanticerrors"
)

var uriParam = regexp.MustCompile(`\{([^{}]+)\}`)

// maxResourceTypeChain bounds resource type inheritance.
const maxResourceTypeChain = 64

// shaper turns the raw RAML mapping into the resource tree emitted by the
// loader: nested "/path" keys become resources arrays, methods become
// methods arrays, and resource types and traits are applied.
type shaper struct {
	root    *Map
	version string
	log     Logger

	resourceTypes map[string]any
	traits        map[string]any
	schemas       map[string]any
}

func newShaper(root *Map, version string, log Logger) *shaper {
	return &shaper{
		root:          root,
		version:       version,
		log:           log,
		resourceTypes: namedDeclarations(root, "resourceTypes"),
		traits:        namedDeclarations(root, "traits"),
		schemas:       namedDeclarations(root, "schemas"),
	}
}

// namedDeclarations indexes a top-level section written either as a map or
// as a list of single-key maps (the RAML 0.8 form).
func namedDeclarations(root *Map, section string) map[string]any {
	out := map[string]any{}
	v, ok := root.Get(section)
	if !ok {
		return out
	}
	add := func(m *Map) {
		for k, val := range m.FromOldest() {
			out[k] = val
		}
	}
	switch t := v.(type) {
	case *Map:
		add(t)
	case []any:
		for _, item := range t {
			if m, ok := item.(*Map); ok {
				add(m)
			}
		}
	}
	return out
}

func isResourceKey(k string) bool {
	return strings.HasPrefix(k, "/")
}

func (s *shaper) shape() (*Map, error) {
	out := NewMap()
	var resources []any
	for k, v := range s.root.FromOldest() {
		if !isResourceKey(k) {
			out.Set(k, v)
			continue
		}
		res, err := s.resource(k, v, "")
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if len(resources) > 0 {
		out.Set("resources", resources)
	}
	return out, nil
}

// resource shapes one resource and its nested resources.
func (s *shaper) resource(relativeURI string, v any, parentURI string) (*Map, error) {
	fullURI := parentURI + relativeURI

	var body *Map
	switch t := v.(type) {
	case nil:
		body = NewMap()
	case *Map:
		body = copyValue(t).(*Map)
	default:
		return nil, &pedanticerrors.ParseError{Message: fmt.Sprintf("resource %s must be a map", fullURI)}
	}

	params := map[string]string{
		paramResourcePath:     fullURI,
		paramResourcePathName: resourcePathName(fullURI),
	}

	if typeRef, ok := body.Get("type"); ok && typeRef != nil {
		tmpl, err := s.resourceType(typeRef, params, nil)
		if err != nil {
			return nil, resourceError(fullURI, err)
		}
		mergeTemplate(body, tmpl)
	}

	out := NewMap()
	out.Set("relativeUri", relativeURI)
	out.Set("relativeUriPathSegments", pathSegments(relativeURI))

	var methods, children []any
	for k, val := range body.FromOldest() {
		switch {
		case httputil.IsMethod(k):
			m, err := s.method(k, val, body, params)
			if err != nil {
				return nil, resourceError(fullURI, err)
			}
			methods = append(methods, m)
		case isResourceKey(k):
			child, err := s.resource(k, val, fullURI)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		default:
			out.Set(k, val)
		}
	}

	addImplicitURIParameters(out, relativeURI)

	if len(methods) > 0 {
		out.Set("methods", methods)
	}
	if len(children) > 0 {
		out.Set("resources", children)
	}
	return out, nil
}

// method shapes a method: traits from the method's `is` come first, then
// the resource's `is`; the first trait to set a value wins.
func (s *shaper) method(name string, v any, resource *Map, resourceParams map[string]string) (*Map, error) {
	body := NewMap()
	if m, ok := v.(*Map); ok {
		body = m
	} else if v != nil {
		return nil, &pedanticerrors.ParseError{Message: fmt.Sprintf("method %s must be a map", name)}
	}

	methodIs, _ := body.Get("is")
	resourceIs, _ := resource.Get("is")
	refs, err := templateRefs(concatRefs(methodIs, resourceIs))
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		decl, ok := s.traits[ref.name]
		if !ok {
			return nil, &pedanticerrors.ParseError{Message: fmt.Sprintf("there is no trait named %s", ref.name)}
		}
		params := withBuiltins(ref.params, resourceParams)
		params[paramMethodName] = strings.ToLower(name)
		tmpl, err := expandTemplate("trait", ref.name, decl, params)
		if err != nil {
			return nil, err
		}
		mergeTemplate(body, tmpl)
	}

	s.inlineSchemas(body)

	out := NewMap()
	out.Set("method", strings.ToLower(name))
	for k, val := range body.FromOldest() {
		out.Set(k, val)
	}
	return out, nil
}

// resourceType expands a `type:` reference including the types it inherits.
func (s *shaper) resourceType(ref any, builtins map[string]string, chain []string) (*Map, error) {
	tr, err := parseTemplateRef(ref)
	if err != nil {
		return nil, err
	}
	for _, seen := range chain {
		if seen == tr.name {
			return nil, &pedanticerrors.ParseError{Message: fmt.Sprintf("circular resource type: %s", strings.Join(append(chain, tr.name), " -> "))}
		}
	}
	if len(chain) >= maxResourceTypeChain {
		return nil, &pedanticerrors.ResourceLimitError{
			ResourceType: "resource_type_depth",
			Limit:        maxResourceTypeChain,
			Actual:       int64(len(chain) + 1),
		}
	}
	decl, ok := s.resourceTypes[tr.name]
	if !ok {
		return nil, &pedanticerrors.ParseError{Message: fmt.Sprintf("there is no resource type named %s", tr.name)}
	}

	tmpl, err := expandTemplate("resource type", tr.name, decl, withBuiltins(tr.params, builtins))
	if err != nil {
		return nil, err
	}
	// The resource keeps its own `type`; inherited ones are only expanded.
	if parentRef, ok := tmpl.Delete("type"); ok && parentRef != nil {
		parent, err := s.resourceType(parentRef, builtins, append(chain, tr.name))
		if err != nil {
			return nil, err
		}
		mergeTemplate(tmpl, parent)
	}
	s.log.Debug("applied resource type", "name", tr.name, "resourcePath", builtins[paramResourcePath])
	return tmpl, nil
}

// inlineSchemas replaces body schemas that name a declared schema with the
// schema's text, in the request body and every response body.
func (s *shaper) inlineSchemas(method *Map) {
	if len(s.schemas) == 0 {
		return
	}
	s.inlineBodySchemas(method)
	responses, ok := getMap(method, "responses")
	if !ok {
		return
	}
	for _, resp := range responses.FromOldest() {
		if rm, ok := resp.(*Map); ok {
			s.inlineBodySchemas(rm)
		}
	}
}

func (s *shaper) inlineBodySchemas(m *Map) {
	body, ok := getMap(m, "body")
	if !ok {
		return
	}
	for _, mt := range body.FromOldest() {
		media, ok := mt.(*Map)
		if !ok {
			continue
		}
		name, ok := media.Get("schema")
		if !ok {
			continue
		}
		if key, ok := name.(string); ok {
			if decl, found := s.schemas[key]; found {
				media.Set("schema", copyValue(decl))
			}
		}
	}
}

func withBuiltins(explicit, builtins map[string]string) map[string]string {
	params := make(map[string]string, len(explicit)+len(builtins)+1)
	for k, v := range builtins {
		params[k] = v
	}
	for k, v := range explicit {
		params[k] = v
	}
	return params
}

// addImplicitURIParameters declares every {param} of relativeURI that the
// resource leaves undeclared as a required string.
func addImplicitURIParameters(res *Map, relativeURI string) {
	matches := uriParam.FindAllStringSubmatch(relativeURI, -1)
	if len(matches) == 0 {
		return
	}
	params, ok := getMap(res, "uriParameters")
	if !ok {
		params = NewMap()
	}
	added := false
	for _, m := range matches {
		name := m[1]
		if _, declared := params.Get(name); declared {
			continue
		}
		def := NewMap()
		def.Set("type", "string")
		def.Set("required", true)
		def.Set("displayName", name)
		params.Set(name, def)
		added = true
	}
	if added {
		res.Set("uriParameters", params)
	}
}

func pathSegments(relativeURI string) []any {
	segments := []any{}
	for _, seg := range strings.Split(relativeURI, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// resourcePathName is the rightmost path segment that is not a URI parameter.
func resourcePathName(fullURI string) string {
	segs := strings.Split(fullURI, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] != "" && !uriParam.MatchString(segs[i]) {
			return segs[i]
		}
	}
	return ""
}

func resourceError(uri string, err error) error {
	return fmt.Errorf("resource %s: %w", uri, err)
}
