// Package path addresses fields inside a JSON-Schema-shaped tree.
//
// A Path is an immutable sequence of segments. Each segment is either a named
// property or the item schema of an array. Paths render to two string forms:
//
//	Pointer(): /properties/items/items/properties/price
//	Simple():  items[*].price
//
// and parse back from either form with ParsePointer and ParseSimple.
package path

import (
	"strings"
)

// SegmentKind identifies a Segment variant.
type SegmentKind int

const (
	SegmentProperty SegmentKind = iota
	SegmentItems
)

// String returns the string representation of SegmentKind
func (k SegmentKind) String() string {
	switch k {
	case SegmentProperty:
		return "property"
	case SegmentItems:
		return "items"
	default:
		return "unknown"
	}
}

// Segment is one step of a Path: a named property, or the array's item schema.
type Segment struct {
	kind SegmentKind
	name string
}

// Property returns a property segment for the given name.
func Property(name string) Segment { return Segment{kind: SegmentProperty, name: name} }

// Items returns the array item schema segment.
func Items() Segment { return Segment{kind: SegmentItems} }

// Kind returns the segment variant.
func (s Segment) Kind() SegmentKind { return s.kind }

// IsProperty reports whether s is a named property segment.
func (s Segment) IsProperty() bool { return s.kind == SegmentProperty }

// IsItems reports whether s addresses an array's item schema.
func (s Segment) IsItems() bool { return s.kind == SegmentItems }

// Name returns the property name, or "" for an Items segment.
func (s Segment) Name() string { return s.name }

// Equal compares two segments. Items segments are always equal to each other.
func (s Segment) Equal(o Segment) bool {
	if s.kind != o.kind {
		return false
	}
	return s.kind == SegmentItems || s.name == o.name
}

// String renders the segment as a JSON Pointer fragment.
func (s Segment) String() string {
	if s.kind == SegmentItems {
		return "/items"
	}
	return "/properties/" + escapePointerToken(s.name)
}

// Path is an ordered, possibly empty list of segments. The zero value is the
// empty path, which addresses the tree root.
type Path struct {
	segs []Segment
}

// Empty returns the root path.
func Empty() Path { return Path{} }

// New builds a Path from explicit segments.
func New(segs ...Segment) Path {
	if len(segs) == 0 {
		return Path{}
	}
	return Path{segs: append([]Segment(nil), segs...)}
}

// Segments returns a copy of the segments.
func (p Path) Segments() []Segment { return append([]Segment(nil), p.segs...) }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// IsEmpty reports whether p is the root path.
func (p Path) IsEmpty() bool { return len(p.segs) == 0 }

// Last returns the last segment; ok is false for the empty path.
func (p Path) Last() (Segment, bool) {
	if len(p.segs) == 0 {
		return Segment{}, false
	}
	return p.segs[len(p.segs)-1], true
}

// Parent drops the last segment. The parent of the empty path is empty.
func (p Path) Parent() Path {
	if len(p.segs) <= 1 {
		return Path{}
	}
	return Path{segs: p.segs[:len(p.segs)-1 : len(p.segs)-1]}
}

// Child appends a property segment.
func (p Path) Child(name string) Path { return p.with(Property(name)) }

// ChildItems appends an Items segment. Arrays are always named before their
// item schema is addressed, so this fails on the empty path.
func (p Path) ChildItems() (Path, error) {
	if len(p.segs) == 0 {
		return Path{}, &OperationError{Code: CodeCannotAddItemsToEmptyPath}
	}
	return p.with(Items()), nil
}

func (p Path) with(s Segment) Path {
	segs := make([]Segment, len(p.segs), len(p.segs)+1)
	copy(segs, p.segs)
	return Path{segs: append(segs, s)}
}

// Equal reports whether both paths have pairwise equal segments.
func (p Path) Equal(o Path) bool {
	if len(p.segs) != len(o.segs) {
		return false
	}
	for i := range p.segs {
		if !p.segs[i].Equal(o.segs[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segs) > len(p.segs) {
		return false
	}
	for i := range prefix.segs {
		if !p.segs[i].Equal(prefix.segs[i]) {
			return false
		}
	}
	return true
}

// Pointer renders the path as a JSON Pointer into the schema document
// ("" for the root).
func (p Path) Pointer() string {
	var b strings.Builder
	for _, s := range p.segs {
		b.WriteString(s.String())
	}
	return b.String()
}

// Simple renders the dotted form: every property starts a new token and every
// Items segment appends "[*]" to the preceding token. A path that starts with
// an Items segment renders with a leading "[*]".
func (p Path) Simple() string { return simple(p.segs) }

// String returns the simple form.
func (p Path) String() string { return p.Simple() }

func simple(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if s.IsItems() {
			b.WriteString("[*]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.name)
	}
	return b.String()
}
