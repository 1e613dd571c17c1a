package formula

import (
	"strings"

	"github.com/reoring/schemaformula/path"
)

// Absolute renders p as a root reference: "/" followed by the dotted simple
// form. The empty path renders as "/".
func Absolute(p path.Path) string { return "/" + p.Simple() }

// Relative returns the shortest relative reference from the formula field at
// from to the node at to, as it would be written in the formula text.
//
// Both paths are compared from the root: from's parent against to, matching
// Property segments until the first Items segment or name mismatch. Each
// unmatched segment left on the from side becomes one "../"; the unmatched
// tail of to is appended in simple form. ok is false when neither remains,
// that is when to is the formula's own container.
//
// Matching stops at Items segments, so for a formula inside an array item a
// sibling in the same item renders as "../[*].price". The grammar cannot
// parse that form; Rewrite never emits it and falls back to other forms.
func Relative(from, to path.Path) (string, bool) {
	base := from.Parent().Segments()
	target := to.Segments()

	common := 0
	for common < len(base) && common < len(target) {
		b, t := base[common], target[common]
		if !b.IsProperty() || !t.IsProperty() || !b.Equal(t) {
			break
		}
		common++
	}

	up := len(base) - common
	down := path.New(target[common:]...).Simple()
	switch {
	case up == 0 && down == "":
		return "", false
	case up == 0:
		return down, true
	}
	return strings.Repeat("../", up) + down, true
}

// IsComplexRelativePath reports whether text climbs more than one level with
// leading "../" tokens. Such references are legal but hard to read.
func IsComplexRelativePath(text string) bool {
	levels := 0
	for strings.HasPrefix(text, "../") {
		levels++
		text = text[len("../"):]
	}
	return levels > 1
}

// IsSimpleName reports whether text is a bare sibling reference.
func IsSimpleName(text string) bool { return !strings.ContainsAny(text, "/.") }
