// Package schema holds the minimal JSON-Schema tree the formula layer works on:
// objects with ordered named properties, arrays with one item schema,
// primitives (optionally carrying an x-formula expression) and $ref nodes.
//
// Lookups never return nil. A missing child is the Null sentinel, which
// answers false to every "is/has" query, so lookup chains need no nil checks.
package schema

import "github.com/reoring/schemaformula/jsonschema"

// Kind identifies a Node type.
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBoolean
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindRef:
		return "ref"
	default:
		return "null"
	}
}

// Node is the tree node contract.
type Node interface {
	ID() string
	Name() string
	SetName(name string)
	Kind() Kind

	IsObject() bool
	IsArray() bool
	IsPrimitive() bool
	IsRef() bool
	IsNull() bool

	// Properties returns the ordered children of an object (nil otherwise).
	Properties() []Node
	// Property returns the named child, or Null.
	Property(name string) Node
	// Items returns the item schema of an array, or Null.
	Items() Node

	// AddChild appends a child to an object; no-op on other kinds.
	AddChild(child Node)
	// ReplaceChild swaps the named child in place, keeping sibling order.
	ReplaceChild(name string, child Node) bool
	// RemoveChild removes the named child.
	RemoveChild(name string) bool
	// SetItems sets the array item schema; no-op on other kinds.
	SetItems(items Node)

	// Formula returns the x-formula expression of the field ("" if none).
	Formula() string
}

// base carries identity shared by every concrete node.
type base struct {
	id   string
	name string
	// document keywords the tree does not model, nil for nodes built in code
	keywords *jsonschema.Schema
}

func (b *base) ID() string          { return b.id }
func (b *base) Name() string        { return b.name }
func (b *base) SetName(name string) { b.name = name }

// Keywords returns the schema keywords carried over from the source document
// (title, format, required, the declared type, ...), or nil.
func (b *base) Keywords() *jsonschema.Schema { return b.keywords }

// SetKeywords attaches source document keywords for ToDocument to restore.
func (b *base) SetKeywords(s *jsonschema.Schema) { b.keywords = s }

// leaf answers the structural queries for nodes without children.
type leaf struct{}

func (leaf) Properties() []Node             { return nil }
func (leaf) Property(string) Node           { return Null }
func (leaf) Items() Node                    { return Null }
func (leaf) AddChild(Node)                  {}
func (leaf) ReplaceChild(string, Node) bool { return false }
func (leaf) RemoveChild(string) bool        { return false }
func (leaf) SetItems(Node)                  {}

// Object is an object schema with ordered named properties.
type Object struct {
	base
	children []Node
}

// NewObject creates an object node with the given children, in order.
func NewObject(id, name string, children ...Node) *Object {
	o := &Object{base: base{id: id, name: name}}
	for _, c := range children {
		o.AddChild(c)
	}
	return o
}

func (o *Object) Kind() Kind        { return KindObject }
func (o *Object) IsObject() bool    { return true }
func (o *Object) IsArray() bool     { return false }
func (o *Object) IsPrimitive() bool { return false }
func (o *Object) IsRef() bool       { return false }
func (o *Object) IsNull() bool      { return false }
func (o *Object) Items() Node       { return Null }
func (o *Object) SetItems(Node)     {}
func (o *Object) Formula() string   { return "" }

func (o *Object) Properties() []Node { return append([]Node(nil), o.children...) }

func (o *Object) Property(name string) Node {
	if i := o.indexOf(name); i >= 0 {
		return o.children[i]
	}
	return Null
}

func (o *Object) AddChild(child Node) {
	if child == nil || child.IsNull() {
		return
	}
	o.children = append(o.children, child)
}

func (o *Object) ReplaceChild(name string, child Node) bool {
	i := o.indexOf(name)
	if i < 0 || child == nil || child.IsNull() {
		return false
	}
	o.children[i] = child
	return true
}

func (o *Object) RemoveChild(name string) bool {
	i := o.indexOf(name)
	if i < 0 {
		return false
	}
	o.children = append(o.children[:i], o.children[i+1:]...)
	return true
}

// RenameChild renames the named child in place and follows the rename in the
// object's required list. It reports false when there is no such child.
func (o *Object) RenameChild(name, newName string) bool {
	i := o.indexOf(name)
	if i < 0 {
		return false
	}
	o.children[i].SetName(newName)
	if o.keywords != nil {
		for j, r := range o.keywords.Required {
			if r == name {
				o.keywords.Required[j] = newName
			}
		}
	}
	return true
}

func (o *Object) indexOf(name string) int {
	for i, c := range o.children {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// Array is an array schema. All elements share one item schema.
type Array struct {
	base
	items Node
}

// NewArray creates an array node. A nil items argument leaves the slot empty.
func NewArray(id, name string, items Node) *Array {
	a := &Array{base: base{id: id, name: name}, items: Null}
	a.SetItems(items)
	return a
}

func (a *Array) Kind() Kind                     { return KindArray }
func (a *Array) IsObject() bool                 { return false }
func (a *Array) IsArray() bool                  { return true }
func (a *Array) IsPrimitive() bool              { return false }
func (a *Array) IsRef() bool                    { return false }
func (a *Array) IsNull() bool                   { return false }
func (a *Array) Properties() []Node             { return nil }
func (a *Array) Property(string) Node           { return Null }
func (a *Array) AddChild(Node)                  {}
func (a *Array) ReplaceChild(string, Node) bool { return false }
func (a *Array) RemoveChild(string) bool        { return false }
func (a *Array) Formula() string                { return "" }
func (a *Array) Items() Node                    { return a.items }

func (a *Array) SetItems(items Node) {
	if items == nil {
		items = Null
	}
	a.items = items
}

// Primitive is a string, number or boolean field. Fields computed from other
// fields carry their expression in Formula.
type Primitive struct {
	base
	leaf
	kind    Kind
	formula string
}

// NewPrimitive creates a primitive node; kind must be KindString, KindNumber
// or KindBoolean.
func NewPrimitive(id, name string, kind Kind) *Primitive {
	return &Primitive{base: base{id: id, name: name}, kind: kind}
}

// NewFormula creates a primitive node computed by expression.
func NewFormula(id, name string, kind Kind, expression string) *Primitive {
	p := NewPrimitive(id, name, kind)
	p.formula = expression
	return p
}

func (p *Primitive) Kind() Kind        { return p.kind }
func (p *Primitive) IsObject() bool    { return false }
func (p *Primitive) IsArray() bool     { return false }
func (p *Primitive) IsPrimitive() bool { return true }
func (p *Primitive) IsRef() bool       { return false }
func (p *Primitive) IsNull() bool      { return false }
func (p *Primitive) Formula() string   { return p.formula }

// SetFormula replaces the expression; "" turns the field back into a plain one.
func (p *Primitive) SetFormula(expression string) { p.formula = expression }

// Ref is a $ref node. The referenced schema is not followed.
type Ref struct {
	base
	leaf
	ref string
}

func NewRef(id, name, ref string) *Ref {
	return &Ref{base: base{id: id, name: name}, ref: ref}
}

func (r *Ref) Kind() Kind        { return KindRef }
func (r *Ref) IsObject() bool    { return false }
func (r *Ref) IsArray() bool     { return false }
func (r *Ref) IsPrimitive() bool { return false }
func (r *Ref) IsRef() bool       { return true }
func (r *Ref) IsNull() bool      { return false }
func (r *Ref) Formula() string   { return "" }
func (r *Ref) Target() string    { return r.ref }

// Null is the sentinel returned by lookups that find nothing.
var Null Node = nullNode{}

type nullNode struct{ leaf }

func (nullNode) ID() string        { return "" }
func (nullNode) Name() string      { return "" }
func (nullNode) SetName(string)    {}
func (nullNode) Kind() Kind        { return KindNull }
func (nullNode) IsObject() bool    { return false }
func (nullNode) IsArray() bool     { return false }
func (nullNode) IsPrimitive() bool { return false }
func (nullNode) IsRef() bool       { return false }
func (nullNode) IsNull() bool      { return true }
func (nullNode) Formula() string   { return "" }
