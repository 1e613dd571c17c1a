// Package formula resolves computed-field expressions into dependency edges
// between schema nodes, tracks those edges in an Index, and renders paths back
// into relative formula syntax.
//
// Typical usage:
//
//	f, err := formula.NewParsed(tree, fieldID, "price * quantity")
//	if err != nil {
//		// *formula.Error: show err.Message() next to the field
//	}
//	idx.Register(fieldID, f)
//	usedBy := idx.Dependents(priceID)
package formula

import (
	"errors"

	"github.com/reoring/schemaformula/formula/ast"
	"github.com/reoring/schemaformula/formula/grammar"
	"github.com/reoring/schemaformula/path"
	"github.com/reoring/schemaformula/schema"
)

// Version is the formula schema tag written alongside every expression.
const Version = 1

// Tree is the part of schema.Tree the formula layer needs.
type Tree interface {
	NodeAt(p path.Path) schema.Node
	PathOf(id string) (path.Path, bool)
}

var _ Tree = (*schema.Tree)(nil)

// Dependency is one resolved edge from a formula to the node it reads.
type Dependency struct {
	targetNodeID string
}

// NewDependency creates a dependency on the given node id.
func NewDependency(targetNodeID string) (Dependency, error) {
	if targetNodeID == "" {
		return Dependency{}, errors.New("formula: dependency target id must not be empty")
	}
	return Dependency{targetNodeID: targetNodeID}, nil
}

func (d Dependency) TargetNodeID() string { return d.targetNodeID }

// Option configures NewParsed.
type Option func(*options)

type options struct {
	parser ast.Parser
}

// WithParser replaces the default grammar.
func WithParser(p ast.Parser) Option {
	return func(o *options) {
		if p != nil {
			o.parser = p
		}
	}
}

// Parsed is one field's formula with every reference resolved to a live node
// id. It is immutable; rebuild it whenever the expression, the tree shape or
// the field's position changes.
type Parsed struct {
	nodeID     string
	expression string
	ast        ast.Node
	deps       []Dependency
	raw        []string
	targets    map[string]string // raw dependency text -> target node id
	parser     ast.Parser
}

// NewParsed parses expression for the formula field formulaNodeID and
// resolves each of its references against tree. Every failure is a *Error:
// CodeNodeNotFound when the field is not in the tree,
// CodeUnresolvableDependency for unparsable text or a reference to nothing,
// CodeSelfReference when the formula reads its own field.
func NewParsed(tree Tree, formulaNodeID, expression string, opts ...Option) (*Parsed, error) {
	o := options{parser: grammar.New()}
	for _, opt := range opts {
		opt(&o)
	}

	fieldPath, ok := tree.PathOf(formulaNodeID)
	if !ok {
		return nil, &Error{Code: CodeNodeNotFound, NodeID: formulaNodeID}
	}
	res, err := o.parser.Parse(expression)
	if err != nil {
		return nil, &Error{Code: CodeUnresolvableDependency, NodeID: formulaNodeID, Details: expression, Cause: err}
	}

	f := &Parsed{
		nodeID:     formulaNodeID,
		expression: expression,
		ast:        res.AST,
		targets:    make(map[string]string, len(res.Dependencies)),
		parser:     o.parser,
	}
	base := BasePath(fieldPath)
	seen := make(map[string]bool, len(res.Dependencies))
	for _, raw := range res.Dependencies {
		target, err := resolveDependency(tree, o.parser, base, raw)
		if err != nil {
			return nil, &Error{Code: CodeUnresolvableDependency, NodeID: formulaNodeID, Details: raw, Cause: err}
		}
		if target == "" {
			return nil, &Error{Code: CodeUnresolvableDependency, NodeID: formulaNodeID, Details: raw}
		}
		if target == formulaNodeID {
			return nil, &Error{Code: CodeSelfReference, NodeID: formulaNodeID, Details: raw}
		}
		f.targets[raw] = target
		f.raw = append(f.raw, raw)
		if !seen[target] {
			seen[target] = true
			d, _ := NewDependency(target)
			f.deps = append(f.deps, d)
		}
	}
	return f, nil
}

// resolveDependency returns the id of the node raw points at, or "" when it
// points at nothing.
func resolveDependency(tree Tree, parser ast.Parser, base path.Path, raw string) (string, error) {
	res, err := parser.Parse(raw)
	if err != nil {
		return "", err
	}
	p, ok := Resolve(base, res.AST)
	if !ok {
		return "", nil
	}
	return tree.NodeAt(p).ID(), nil
}

func (f *Parsed) Version() int       { return Version }
func (f *Parsed) NodeID() string     { return f.nodeID }
func (f *Parsed) Expression() string { return f.expression }

// AST exposes the parsed expression for unchanged re-serialization.
func (f *Parsed) AST() ast.Node { return f.ast }

// Dependencies returns the resolved targets in encounter order, one per
// distinct node.
func (f *Parsed) Dependencies() []Dependency { return append([]Dependency(nil), f.deps...) }

// RawDependencies returns the reference texts as written, in encounter order.
func (f *Parsed) RawDependencies() []string { return append([]string(nil), f.raw...) }

// TargetOf returns the node id a raw reference text resolved to.
func (f *Parsed) TargetOf(raw string) (string, bool) {
	id, ok := f.targets[raw]
	return id, ok
}

// DependsOn reports whether the formula reads nodeID.
func (f *Parsed) DependsOn(nodeID string) bool {
	for _, d := range f.deps {
		if d.targetNodeID == nodeID {
			return true
		}
	}
	return false
}
