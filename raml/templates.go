package raml

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gertd/go-pluralize"
	"github.com/percolate/pedantic/pedanticerrors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Template parameters available without declaration.
const (
	paramResourcePath     = "resourcePath"
	paramResourcePathName = "resourcePathName"
	paramMethodName       = "methodName"
)

// templateParam matches "<<name>>" and "<<name | !transform>>".
var templateParam = regexp.MustCompile(`<<\s*([^\s|>]+)\s*((?:\|\s*![A-Za-z]+\s*)*)>>`)

var pluralizer = pluralize.NewClient()

// Casers keep state between calls, so each conversion gets its own.
func upper(s string) string { return cases.Upper(language.Und).String(s) }
func lower(s string) string { return cases.Lower(language.Und).String(s) }

// templateRef is a parsed `type:` or `is:` reference: a name with optional
// parameters, written either as "name" or as {name: {param: value}}.
type templateRef struct {
	name   string
	params map[string]string
}

func parseTemplateRef(v any) (templateRef, error) {
	switch t := v.(type) {
	case string:
		return templateRef{name: t}, nil
	case *Map:
		if t.Len() != 1 {
			return templateRef{}, fmt.Errorf("a reference with parameters must have exactly one key")
		}
		pair := t.Oldest()
		ref := templateRef{name: pair.Key, params: map[string]string{}}
		if pm, ok := pair.Value.(*Map); ok {
			for k, pv := range pm.FromOldest() {
				ref.params[k] = scalarString(pv)
			}
		}
		return ref, nil
	default:
		return templateRef{}, fmt.Errorf("invalid reference %v", v)
	}
}

// templateRefs accepts a single reference or a list of references.
func templateRefs(v any) ([]templateRef, error) {
	list, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		list = []any{v}
	}
	refs := make([]templateRef, 0, len(list))
	for _, item := range list {
		ref, err := parseTemplateRef(item)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// expandTemplate returns a copy of a resource type or trait body with every
// parameter substituted. usage and displayName describe the template itself
// and are dropped.
func expandTemplate(kind, name string, body any, params map[string]string) (*Map, error) {
	m, ok := body.(*Map)
	if !ok {
		if body != nil {
			return nil, &pedanticerrors.ParseError{Message: fmt.Sprintf("%s %q must be a map", kind, name)}
		}
		return NewMap(), nil
	}
	out, err := substitute(m, params)
	if err != nil {
		return nil, &pedanticerrors.ParseError{Message: fmt.Sprintf("applying %s %q", kind, name), Cause: err}
	}
	result := out.(*Map)
	result.Delete("usage")
	result.Delete("displayName")
	return result, nil
}

func substitute(v any, params map[string]string) (any, error) {
	switch t := v.(type) {
	case *Map:
		out := NewMap()
		for k, val := range t.FromOldest() {
			key, err := substituteString(k, params)
			if err != nil {
				return nil, err
			}
			sub, err := substitute(val, params)
			if err != nil {
				return nil, err
			}
			out.Set(key, sub)
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			sub, err := substitute(val, params)
			if err != nil {
				return nil, err
			}
			out[i] = sub
		}
		return out, nil
	case string:
		return substituteString(t, params)
	default:
		return v, nil
	}
}

func substituteString(s string, params map[string]string) (string, error) {
	if !strings.Contains(s, "<<") {
		return s, nil
	}
	var firstErr error
	out := templateParam.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := templateParam.FindStringSubmatch(match)
		value, ok := params[m[1]]
		if !ok {
			firstErr = fmt.Errorf("value was not provided for parameter: %s", m[1])
			return match
		}
		for _, fn := range strings.Split(m[2], "|") {
			fn = strings.TrimSpace(fn)
			if fn == "" {
				continue
			}
			transformed, err := transform(strings.TrimPrefix(fn, "!"), value)
			if err != nil {
				firstErr = err
				return match
			}
			value = transformed
		}
		return value
	})
	return out, firstErr
}

// transform applies a parameter function such as !singularize.
func transform(fn, value string) (string, error) {
	switch strings.ToLower(fn) {
	case "singularize":
		return pluralizer.Singular(value), nil
	case "pluralize":
		return pluralizer.Plural(value), nil
	case "uppercase":
		return upper(value), nil
	case "lowercase":
		return lower(value), nil
	case "lowercamelcase":
		return camelCase(value, false), nil
	case "uppercamelcase":
		return camelCase(value, true), nil
	case "lowerunderscorecase":
		return lower(strings.Join(splitWords(value), "_")), nil
	case "upperunderscorecase":
		return upper(strings.Join(splitWords(value), "_")), nil
	case "lowerhyphencase":
		return lower(strings.Join(splitWords(value), "-")), nil
	case "upperhyphencase":
		return upper(strings.Join(splitWords(value), "-")), nil
	default:
		return "", fmt.Errorf("unknown function applied to parameter: %s", fn)
	}
}

func camelCase(value string, upperFirst bool) string {
	var b strings.Builder
	for i, w := range splitWords(value) {
		w = lower(w)
		if i > 0 || upperFirst {
			r := []rune(w)
			r[0] = unicode.ToUpper(r[0])
			w = string(r)
		}
		b.WriteString(w)
	}
	return b.String()
}

// splitWords breaks an identifier on separators and lower-to-upper case changes.
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && len(cur) > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}

// mergeTemplate copies template values into dst. Values already in dst win
// and maps merge recursively. Keys ending in "?" are applied only when dst
// already has the key. "is" lists are concatenated, dst first.
func mergeTemplate(dst, tmpl *Map) {
	for k, tv := range tmpl.FromOldest() {
		key := k
		optional := strings.HasSuffix(k, "?")
		if optional {
			key = strings.TrimSuffix(k, "?")
		}
		dv, exists := dst.Get(key)
		if optional && !exists {
			continue
		}
		switch {
		case !exists || dv == nil:
			dst.Set(key, stripOptional(copyValue(tv)))
		case key == "is":
			dst.Set(key, concatRefs(dv, tv))
		default:
			dm, dok := dv.(*Map)
			tm, tok := tv.(*Map)
			if dok && tok {
				mergeTemplate(dm, tm)
			}
		}
	}
}

// stripOptional drops optional keys from a subtree that has no explicit
// counterpart.
func stripOptional(v any) any {
	m, ok := v.(*Map)
	if !ok {
		return v
	}
	for _, k := range collectKeys(m) {
		if strings.HasSuffix(k, "?") {
			m.Delete(k)
			continue
		}
		val, _ := m.Get(k)
		m.Set(k, stripOptional(val))
	}
	return m
}

func concatRefs(a, b any) []any {
	var out []any
	for _, v := range []any{a, b} {
		if list, ok := v.([]any); ok {
			out = append(out, list...)
		} else if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func collectKeys(m *Map) []string {
	keys := make([]string, 0, m.Len())
	for k := range m.KeysFromOldest() {
		keys = append(keys, k)
	}
	return keys
}
