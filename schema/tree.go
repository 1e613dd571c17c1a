package schema

import (
	"github.com/reoring/schemaformula/path"
)

// Tree wraps a root node with path and id lookups. Lookups walk the live tree
// on every call; nothing is cached, so they always reflect the latest
// mutation.
type Tree struct {
	root Node
}

// NewTree creates a tree around root. A nil root yields an empty object.
func NewTree(root Node) *Tree {
	if root == nil || root.IsNull() {
		root = NewObject("", "")
	}
	return &Tree{root: root}
}

func (t *Tree) Root() Node { return t.root }

// NodeAt returns the node addressed by p, or Null. The empty path addresses
// the root.
func (t *Tree) NodeAt(p path.Path) Node {
	return NodeAt(t.root, p)
}

// NodeAt resolves p below root.
func NodeAt(root Node, p path.Path) Node {
	cur := root
	for _, seg := range p.Segments() {
		if seg.IsItems() {
			cur = cur.Items()
		} else {
			cur = cur.Property(seg.Name())
		}
		if cur.IsNull() {
			return Null
		}
	}
	return cur
}

// NodeByID returns the node with the given id, or Null.
func (t *Tree) NodeByID(id string) Node {
	if id == "" {
		return Null
	}
	found := Null
	t.Walk(func(_ path.Path, n Node) bool {
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// PathOf returns the path of the node with the given id.
func (t *Tree) PathOf(id string) (path.Path, bool) {
	if id == "" {
		return path.Path{}, false
	}
	var (
		at    path.Path
		found bool
	)
	t.Walk(func(p path.Path, n Node) bool {
		if n.ID() == id {
			at, found = p, true
			return false
		}
		return true
	})
	return at, found
}

// Walk visits every node depth-first in property order, starting with the
// root at the empty path. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(p path.Path, n Node) bool) {
	walk(path.Empty(), t.root, fn)
}

func walk(p path.Path, n Node, fn func(path.Path, Node) bool) bool {
	if n.IsNull() {
		return true
	}
	if !fn(p, n) {
		return false
	}
	switch {
	case n.IsObject():
		for _, c := range n.Properties() {
			if !walk(p.Child(c.Name()), c, fn) {
				return false
			}
		}
	case n.IsArray():
		// an array is always named before its items are addressed, except
		// for an array root, whose items cannot be expressed as a Path
		ip, err := p.ChildItems()
		if err != nil {
			return true
		}
		return walk(ip, n.Items(), fn)
	}
	return true
}

// FormulaField is a field carrying an x-formula expression.
type FormulaField struct {
	NodeID     string
	Path       path.Path
	Expression string
}

// FormulaFields lists every formula field in walk order.
func (t *Tree) FormulaFields() []FormulaField {
	var out []FormulaField
	t.Walk(func(p path.Path, n Node) bool {
		if expr := n.Formula(); expr != "" {
			out = append(out, FormulaField{NodeID: n.ID(), Path: p, Expression: expr})
		}
		return true
	})
	return out
}

// SetNodeAt places n at p. See SetNodeAt.
func (t *Tree) SetNodeAt(p path.Path, n Node) error { return SetNodeAt(t.root, p, n) }

// RemoveNodeAt removes the node at p. See RemoveNodeAt.
func (t *Tree) RemoveNodeAt(p path.Path) error { return RemoveNodeAt(t.root, p) }
