package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/percolate/pedantic/pedanticerrors"
)

var (
	segmentPattern  = regexp.MustCompile(`/[^/]*`)
	uriParamPattern = regexp.MustCompile(`\{([^{}]*)\}`)
)

// pathSegments splits a path into "/"-prefixed segments, so "/a/b/" yields
// ["/a", "/b", "/"].
func pathSegments(path string) []string {
	return segmentPattern.FindAllString(path, -1)
}

// FindMethod returns the method definition of schema that f exercises.
func FindMethod(schema map[string]any, f *Fixture) (map[string]any, error) {
	resource, err := findResource(schema, pathSegments(f.Path), f.Path)
	if err != nil {
		return nil, err
	}

	method := strings.ToLower(f.Method)
	methods, _ := resource["methods"].([]any)
	for _, m := range methods {
		def, ok := m.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := def["method"].(string); strings.ToLower(name) == method {
			return def, nil
		}
	}
	return nil, &pedanticerrors.UndefinedSchemaError{
		Path:    f.Path,
		Method:  method,
		Message: fmt.Sprintf("The requested method '%s' for '%s' was not found in spec.", method, f.Path),
	}
}

// findResource walks node's resources consuming remaining. The first
// resource matching a prefix wins.
func findResource(node map[string]any, remaining []string, path string) (map[string]any, error) {
	resources, _ := node["resources"].([]any)
	for _, r := range resources {
		rsrc, ok := r.(map[string]any)
		if !ok {
			continue
		}
		relativeURI, _ := rsrc["relativeUri"].(string)
		relative := pathSegments(relativeURI)
		if len(remaining) < len(relative) || !matchSegments(remaining, relative, rsrc) {
			continue
		}
		rest := remaining[len(relative):]
		if len(rest) == 0 {
			return rsrc, nil
		}
		return findResource(rsrc, rest, path)
	}
	return nil, &pedanticerrors.UndefinedSchemaError{
		Path:    path,
		Message: fmt.Sprintf("The requested resource '%s' was not found in spec.", path),
	}
}

// matchSegments reports whether the leading request segments match the
// resource's relative segments, validating URI parameter values.
func matchSegments(request, relative []string, rsrc map[string]any) bool {
	params, _ := rsrc["uriParameters"].(map[string]any)
	for i, rel := range relative {
		seg := request[i]
		if rel == seg {
			continue
		}
		if !uriParamPattern.MatchString(rel) {
			return false
		}
		values, ok := matchTemplate(rel, seg)
		if !ok {
			return false
		}
		for name, value := range values {
			def, _ := params[name].(map[string]any)
			if def == nil {
				continue
			}
			msg, err := validateParam(parseFromString(value), def)
			if err != nil || msg != "" {
				return false
			}
		}
	}
	return true
}

// matchTemplate matches seg against a segment template such as
// "/item:{id}" and returns the captured parameter values.
func matchTemplate(template, seg string) (map[string]string, bool) {
	var pattern strings.Builder
	pattern.WriteString("^")
	var names []string
	last := 0
	for _, loc := range uriParamPattern.FindAllStringSubmatchIndex(template, -1) {
		pattern.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		pattern.WriteString("(.+)")
		names = append(names, template[loc[2]:loc[3]])
		last = loc[1]
	}
	pattern.WriteString(regexp.QuoteMeta(template[last:]))
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, false
	}
	m := re.FindStringSubmatch(seg)
	if m == nil {
		return nil, false
	}
	values := make(map[string]string, len(names))
	for i, name := range names {
		values[name] = m[i+1]
	}
	return values, true
}
