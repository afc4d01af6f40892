package validator

import (
	"fmt"
	"regexp"

	"github.com/percolate/pedantic/pedanticerrors"
	"sigs.k8s.io/yaml"
)

// WhitelistEntry exempts matching fixtures from the "undefined in schema"
// error.
type WhitelistEntry struct {
	// Path is a regular expression matched at the start of the fixture path
	Path string `json:"path"`
	// Method, if set, must equal the fixture method
	Method string `json:"method,omitempty"`
	// Code, if set, must equal the fixture status code; Method must then be
	// set as well
	Code any `json:"code,omitempty"`

	re *regexp.Regexp
}

// Whitelist is an ordered list of entries; the first match wins.
type Whitelist []WhitelistEntry

// ParseWhitelist decodes a JSON or YAML list of entries and compiles their
// path patterns.
func ParseWhitelist(data []byte) (Whitelist, error) {
	var wl Whitelist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, &pedanticerrors.ConfigError{Option: "whitelist", Message: "failed to decode whitelist", Cause: err}
	}
	for i := range wl {
		if wl[i].Path == "" {
			return nil, &pedanticerrors.ConfigError{Option: "whitelist", Message: fmt.Sprintf("entry %d has no path", i)}
		}
		re, err := compilePrefix(wl[i].Path)
		if err != nil {
			return nil, &pedanticerrors.ConfigError{Option: "whitelist", Value: wl[i].Path, Message: "invalid path pattern", Cause: err}
		}
		wl[i].re = re
	}
	return wl, nil
}

func compilePrefix(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)`)
}

// Matches reports whether the entry covers f.
func (e *WhitelistEntry) Matches(f *Fixture) bool {
	re := e.re
	if re == nil {
		var err error
		if re, err = compilePrefix(e.Path); err != nil {
			return false
		}
	}
	if !re.MatchString(f.Path) {
		return false
	}

	switch {
	case e.Code != nil:
		// A code entry only ever matches responses.
		return f.StatusCode != "" && statusCode(e.Code) == f.StatusCode && e.Method == f.Method
	case e.Method != "" && f.Method != "":
		return e.Method == f.Method
	default:
		return true
	}
}

// Allows reports whether any entry covers f.
func (wl Whitelist) Allows(f *Fixture) bool {
	for i := range wl {
		if wl[i].Matches(f) {
			return true
		}
	}
	return false
}
