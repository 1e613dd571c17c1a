package formula

import (
	"strings"

	"github.com/reoring/schemaformula/formula/ast"
	"github.com/reoring/schemaformula/path"
)

// Resolve translates one reference expression into an absolute path, relative
// to base (the object holding the formula field, see BasePath). ok is false
// for every expected unresolvable case: escaping above the root, a malformed
// root path, or a node that is not a field reference.
//
// Index and wildcard access resolve identically: all elements of an array
// share one item schema.
func Resolve(base path.Path, node ast.Node) (path.Path, bool) {
	switch n := node.(type) {
	case *ast.Identifier:
		return base.Child(n.Name), true
	case *ast.Member:
		obj, ok := Resolve(base, n.Object)
		if !ok {
			return path.Path{}, false
		}
		return obj.Child(n.Property), true
	case *ast.Index:
		return resolveItems(base, n.Object)
	case *ast.Wildcard:
		return resolveItems(base, n.Object)
	case *ast.RelativePath:
		return resolveRelative(base, n.Text)
	case *ast.RootPath:
		p, err := path.ParseSimple(strings.TrimPrefix(n.Text, "/"))
		if err != nil {
			return path.Path{}, false
		}
		return p, true
	}
	return path.Path{}, false
}

func resolveItems(base path.Path, object ast.Node) (path.Path, bool) {
	obj, ok := Resolve(base, object)
	if !ok {
		return path.Path{}, false
	}
	items, err := obj.ChildItems()
	if err != nil {
		return path.Path{}, false
	}
	return items, true
}

func resolveRelative(base path.Path, text string) (path.Path, bool) {
	cur := base
	for _, tok := range strings.Split(text, "/") {
		switch tok {
		case "", ".":
		case "..":
			if cur.IsEmpty() {
				return path.Path{}, false
			}
			cur = cur.Parent()
		default:
			cur = cur.Child(tok)
		}
	}
	return cur, true
}

// BasePath returns the path references of the formula field at fieldPath are
// resolved against: the object that holds the field. Trailing Items segments
// are stripped first, one per array nesting level, so a formula on an array's
// item schema resolves inside the item rather than against a specific
// element.
func BasePath(fieldPath path.Path) path.Path {
	p := fieldPath
	for {
		last, ok := p.Last()
		if !ok || !last.IsItems() {
			break
		}
		p = p.Parent()
	}
	return p.Parent()
}
