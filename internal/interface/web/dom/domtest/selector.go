package domtest

import (
	"fmt"
	"slices"
	"strings"
)

type attrMatch struct {
	name     string
	value    string
	hasValue bool
}

type selector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

func (s selector) matches(e *Element) bool {
	if s.tag != "" && s.tag != e.tag {
		return false
	}
	if s.id != "" && s.id != e.id {
		return false
	}
	for _, c := range s.classes {
		if !slices.Contains(e.classes, c) {
			return false
		}
	}
	for _, a := range s.attrs {
		v, ok := e.attrs[a.name]
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

func parseSelector(raw string) (selector, error) {
	var sel selector
	s := strings.TrimSpace(raw)
	if s == "" {
		return sel, fmt.Errorf("empty selector")
	}

	n := identLen(s)
	sel.tag = strings.ToUpper(s[:n])
	s = s[n:]

	for s != "" {
		switch s[0] {
		case '#':
			n := identLen(s[1:])
			if n == 0 {
				return sel, fmt.Errorf("bad id in selector %q", raw)
			}
			sel.id = s[1 : 1+n]
			s = s[1+n:]
		case '.':
			n := identLen(s[1:])
			if n == 0 {
				return sel, fmt.Errorf("bad class in selector %q", raw)
			}
			sel.classes = append(sel.classes, s[1:1+n])
			s = s[1+n:]
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return sel, fmt.Errorf("unterminated attribute in selector %q", raw)
			}
			a, err := parseAttr(s[1:end])
			if err != nil {
				return sel, fmt.Errorf("%w in selector %q", err, raw)
			}
			sel.attrs = append(sel.attrs, a)
			s = s[end+1:]
		default:
			return sel, fmt.Errorf("unsupported selector %q", raw)
		}
	}
	return sel, nil
}

func parseAttr(body string) (attrMatch, error) {
	name, value, hasValue := strings.Cut(body, "=")
	a := attrMatch{name: strings.TrimSpace(name), hasValue: hasValue}
	if a.name == "" {
		return a, fmt.Errorf("empty attribute name")
	}
	if hasValue {
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		a.value = value
	}
	return a, nil
}

func identLen(s string) int {
	for i, r := range s {
		if !(r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return i
		}
	}
	return len(s)
}
