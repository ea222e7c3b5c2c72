package browser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// TestIDSelector returns the CSS attribute selector for a test id, e.g.
// [data-cy="contact-btn-submit"]. The id is quoted as a CSS string.
func TestIDSelector(attr, id string) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(attr)
	b.WriteString(`="`)
	for _, r := range id {
		switch r {
		case '"', '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\a `)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(`"]`)
	return b.String()
}

// GlobMatcher compiles a route pattern in the glob form used by intercepts
// ("/newsletter*", "**/api/*") into a regexp over full request URLs. A
// pattern without a scheme matches any origin. "*" stays within one path
// segment, "**" crosses segments.
func GlobMatcher(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty route pattern")
	}

	var b strings.Builder
	b.WriteString("^")
	if !strings.Contains(pattern, "://") {
		b.WriteString(`(?:[A-Za-z][A-Za-z0-9+.\-]*://[^/]*)?`)
	}
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("(?:#.*)?$")
	return regexp.Compile(b.String())
}

// MatchArgs reports whether recorded call arguments satisfy patterns
// position by position. A *regexp.Regexp must match a string argument;
// anything else must equal the argument once both are JSON-normalised.
// Arguments beyond the last pattern are ignored.
func MatchArgs(args []any, patterns ...any) bool {
	if len(patterns) > len(args) {
		return false
	}
	for i, p := range patterns {
		if !matchArg(args[i], p) {
			return false
		}
	}
	return true
}

func matchArg(arg, pattern any) bool {
	if re, ok := pattern.(*regexp.Regexp); ok {
		s, ok := arg.(string)
		return ok && re.MatchString(s)
	}
	want, err := json.Marshal(pattern)
	if err != nil {
		return false
	}
	got, err := json.Marshal(arg)
	if err != nil {
		return false
	}
	var wantV, gotV any
	if json.Unmarshal(want, &wantV) != nil || json.Unmarshal(got, &gotV) != nil {
		return false
	}
	return jsonEqual(wantV, gotV)
}

func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !jsonEqual(v, bv[k]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
