package path

import (
	"regexp"
	"strings"
)

const (
	pointerProperties = "properties"
	pointerItems      = "items"
)

// ParsePointer parses a JSON Pointer into the schema document, e.g.
// "/properties/user/properties/name" or "/properties/tags/items".
// "" and "/" address the root.
func ParsePointer(s string) (Path, error) {
	if s == "" || s == "/" {
		return Path{}, nil
	}
	// naive split on '/', ignoring empties (leading '/', doubled '/')
	tokens := make([]string, 0, strings.Count(s, "/")+1)
	for _, t := range strings.Split(s, "/") {
		if t == "" {
			continue
		}
		tokens = append(tokens, t)
	}

	segs := make([]Segment, 0, len(tokens)/2+1)
	for i := 0; i < len(tokens); {
		switch tokens[i] {
		case pointerProperties:
			if i+1 >= len(tokens) {
				return Path{}, &SyntaxError{Code: CodePropertiesWithoutName, Token: tokens[i], Input: s}
			}
			segs = append(segs, Property(unescapePointerToken(tokens[i+1])))
			i += 2
		case pointerItems:
			segs = append(segs, Items())
			i++
		default:
			return Path{}, &SyntaxError{Code: CodeInvalidSegment, Token: tokens[i], Input: s}
		}
	}
	return Path{segs: segs}, nil
}

// MustParsePointer is like ParsePointer but panics on error. Intended for
// tests and package-level variables.
func MustParsePointer(s string) Path {
	p, err := ParsePointer(s)
	if err != nil {
		panic(err)
	}
	return p
}

// simplePart matches one dotted token: a name followed by zero or more
// bracket groups holding digits, "*" or nothing.
var simplePart = regexp.MustCompile(`^([^.\[\]]+)((?:\[(?:\d*|\*)\])*)$`)

// ParseSimple parses the dotted/bracket form, e.g. "user.name",
// "items[*].price", "items[0]" or "matrix[][]". The bracket content is
// ignored: every element of an array shares one item schema. "" addresses the
// root.
func ParseSimple(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	segs := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return Path{}, &SyntaxError{Code: CodeEmptySegment, Input: s}
		}
		m := simplePart.FindStringSubmatch(part)
		if m == nil {
			return Path{}, &SyntaxError{Code: CodeInvalidSegment, Token: part, Input: s}
		}
		segs = append(segs, Property(m[1]))
		for n := strings.Count(m[2], "["); n > 0; n-- {
			segs = append(segs, Items())
		}
	}
	return Path{segs: segs}, nil
}

// MustParseSimple is like ParseSimple but panics on error.
func MustParseSimple(s string) Path {
	p, err := ParseSimple(s)
	if err != nil {
		panic(err)
	}
	return p
}

// escape '~' -> '~0', '/' -> '~1' per RFC6901
func escapePointerToken(name string) string {
	if !strings.ContainsAny(name, "~/") {
		return name
	}
	return strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
}

func unescapePointerToken(tok string) string {
	if !strings.Contains(tok, "~") {
		return tok
	}
	return strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
}
