// Package ast defines the formula syntax tree and the parser contract the
// formula layer consumes. The formula layer only inspects reference nodes
// (identifiers, member/index/wildcard access, relative and root paths); every
// other node is opaque to it.
package ast

// NodeKind identifies an AST node type.
type NodeKind int

const (
	KindIdentifier NodeKind = iota
	KindMember
	KindIndex
	KindWildcard
	KindRelativePath
	KindRootPath
	KindLiteral
	KindUnary
	KindBinary
	KindCall
)

func (k NodeKind) String() string {
	switch k {
	case KindIdentifier:
		return "Identifier"
	case KindMember:
		return "MemberExpression"
	case KindIndex:
		return "IndexExpression"
	case KindWildcard:
		return "WildcardExpression"
	case KindRelativePath:
		return "RelativePath"
	case KindRootPath:
		return "RootPath"
	case KindLiteral:
		return "Literal"
	case KindUnary:
		return "UnaryExpression"
	case KindBinary:
		return "BinaryExpression"
	case KindCall:
		return "CallExpression"
	default:
		return "Unknown"
	}
}

// Span is a half-open byte range [Start, End) in the source expression.
type Span struct {
	Start int
	End   int
}

// Node is the root AST interface.
type Node interface {
	Kind() NodeKind
	Pos() Span
}

// Identifier is a bare field name: price.
type Identifier struct {
	Name string
	Loc  Span
}

// Member is property access: object.property.
type Member struct {
	Object   Node
	Property string
	Loc      Span
}

// Index is element access: object[index]. The index may be any expression.
type Index struct {
	Object Node
	Index  Node
	Loc    Span
}

// Wildcard is all-elements access: object[*].
type Wildcard struct {
	Object Node
	Loc    Span
}

// RelativePath is a "/"-separated path starting with "." or "..":
// ../sibling, ../../group/field, ./local.
type RelativePath struct {
	Text string
	Loc  Span
}

// RootPath is an absolute reference from the schema root: /order.total.
type RootPath struct {
	Text string
	Loc  Span
}

// Literal is a number, string, boolean or null constant.
type Literal struct {
	Value any // float64, string, bool or nil
	Raw   string
	Loc   Span
}

// Unary is a prefix operation: -x, !x.
type Unary struct {
	Op      string
	Operand Node
	Loc     Span
}

// Binary is an infix operation: a + b, a >= b, a && b.
type Binary struct {
	Op    string
	Left  Node
	Right Node
	Loc   Span
}

// Call is a function call: sum(lines[*].total).
type Call struct {
	Name string
	Args []Node
	Loc  Span
}

func (n *Identifier) Kind() NodeKind   { return KindIdentifier }
func (n *Member) Kind() NodeKind       { return KindMember }
func (n *Index) Kind() NodeKind        { return KindIndex }
func (n *Wildcard) Kind() NodeKind     { return KindWildcard }
func (n *RelativePath) Kind() NodeKind { return KindRelativePath }
func (n *RootPath) Kind() NodeKind     { return KindRootPath }
func (n *Literal) Kind() NodeKind      { return KindLiteral }
func (n *Unary) Kind() NodeKind        { return KindUnary }
func (n *Binary) Kind() NodeKind       { return KindBinary }
func (n *Call) Kind() NodeKind         { return KindCall }

func (n *Identifier) Pos() Span   { return n.Loc }
func (n *Member) Pos() Span       { return n.Loc }
func (n *Index) Pos() Span        { return n.Loc }
func (n *Wildcard) Pos() Span     { return n.Loc }
func (n *RelativePath) Pos() Span { return n.Loc }
func (n *RootPath) Pos() Span     { return n.Loc }
func (n *Literal) Pos() Span      { return n.Loc }
func (n *Unary) Pos() Span        { return n.Loc }
func (n *Binary) Pos() Span       { return n.Loc }
func (n *Call) Pos() Span         { return n.Loc }

// IsReference reports whether n addresses a field: an identifier, a relative
// or root path, or member/index/wildcard access on one.
func IsReference(n Node) bool {
	switch v := n.(type) {
	case *Identifier, *RelativePath, *RootPath:
		return true
	case *Member:
		return IsReference(v.Object)
	case *Index:
		return IsReference(v.Object)
	case *Wildcard:
		return IsReference(v.Object)
	}
	return false
}

// Walk visits n and its children depth-first. When fn returns false the
// children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Member:
		Walk(v.Object, fn)
	case *Index:
		Walk(v.Object, fn)
		Walk(v.Index, fn)
	case *Wildcard:
		Walk(v.Object, fn)
	case *Unary:
		Walk(v.Operand, fn)
	case *Binary:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *Call:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	}
}

// ParseResult is what a Parser reports for one expression.
type ParseResult struct {
	AST Node
	// Dependencies holds the source text of every field reference in
	// encounter order, without duplicates: "price", "../sibling",
	// "/order.total", "lines[*].total".
	Dependencies []string
}

// Parser turns formula text into an AST plus its raw dependency strings.
type Parser interface {
	Parse(expression string) (*ParseResult, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(expression string) (*ParseResult, error)

func (f ParserFunc) Parse(expression string) (*ParseResult, error) { return f(expression) }
