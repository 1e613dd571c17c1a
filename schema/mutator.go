package schema

import (
	"github.com/reoring/schemaformula/path"
)

// SetNodeAt places n at p below root.
//
// At the terminal property segment n is renamed to the segment name and either
// appended (no such child yet) or swapped in at the existing child's position,
// so sibling order is preserved. A terminal Items segment fills the array's
// item slot. Intermediate segments must already exist; a missing intermediate
// makes the whole call a no-op, so a mutation computed against a slightly
// stale snapshot can be replayed safely.
func SetNodeAt(root Node, p path.Path, n Node) error {
	if p.IsEmpty() {
		return &path.OperationError{Code: path.CodeCannotReplaceRoot}
	}
	if n == nil {
		n = Null
	}
	parent, last, ok := walkToParent(root, p)
	if !ok {
		return nil
	}
	if last.IsItems() {
		parent.SetItems(n)
		return nil
	}
	if !parent.IsObject() {
		return nil
	}
	n.SetName(last.Name())
	if !parent.Property(last.Name()).IsNull() {
		parent.ReplaceChild(last.Name(), n)
		return nil
	}
	parent.AddChild(n)
	return nil
}

// RemoveNodeAt removes the node at p below root: the named child for a
// property segment, the item schema (reset to Null) for an Items segment.
// Missing intermediates make the call a no-op.
func RemoveNodeAt(root Node, p path.Path) error {
	if p.IsEmpty() {
		return &path.OperationError{Code: path.CodeCannotRemoveRoot}
	}
	parent, last, ok := walkToParent(root, p)
	if !ok {
		return nil
	}
	if last.IsItems() {
		parent.SetItems(Null)
		return nil
	}
	parent.RemoveChild(last.Name())
	return nil
}

// walkToParent follows every segment but the last. ok is false when an
// intermediate node is missing.
func walkToParent(root Node, p path.Path) (Node, path.Segment, bool) {
	segs := p.Segments()
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		if seg.IsItems() {
			cur = cur.Items()
		} else {
			cur = cur.Property(seg.Name())
		}
		if cur.IsNull() {
			return nil, path.Segment{}, false
		}
	}
	return cur, segs[len(segs)-1], true
}
