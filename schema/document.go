package schema

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/reoring/schemaformula/jsonschema"
	"github.com/reoring/schemaformula/path"
)

// FormulaVersion is the x-formula version written by ToDocument.
const FormulaVersion = 1

// Option configures FromDocument.
type Option func(*buildOptions)

type buildOptions struct {
	newID func() string
	seen  map[string]bool
}

// WithIDGenerator overrides how ids are minted for document nodes lacking
// x-id. The default is a random UUID.
func WithIDGenerator(fn func() string) Option {
	return func(o *buildOptions) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// FromDocument builds a Tree from a schema document. Nodes keep their x-id
// when present; the rest get a fresh id.
func FromDocument(doc *jsonschema.Schema, opts ...Option) (*Tree, error) {
	o := buildOptions{newID: uuid.NewString, seen: map[string]bool{}}
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil {
		return NewTree(NewObject(o.newID(), "")), nil
	}
	root, err := buildNode(doc, "", path.Empty(), &o)
	if err != nil {
		return nil, err
	}
	return NewTree(root), nil
}

func buildNode(s *jsonschema.Schema, name string, at path.Path, o *buildOptions) (Node, error) {
	id := s.ID
	if id == "" {
		id = o.newID()
	}
	if o.seen[id] {
		return nil, fmt.Errorf("schema: duplicate x-id %q at %q", id, at.Simple())
	}
	o.seen[id] = true

	n, err := buildKind(s, id, name, at, o)
	if err != nil {
		return nil, err
	}
	if k, ok := n.(interface{ SetKeywords(*jsonschema.Schema) }); ok {
		k.SetKeywords(keywordsOf(s))
	}
	return n, nil
}

// keywordsOf copies s without the parts the tree models itself.
func keywordsOf(s *jsonschema.Schema) *jsonschema.Schema {
	kw := *s
	kw.Formula = nil
	kw.Ref = ""
	kw.Properties = nil
	kw.Items = nil
	kw.Required = append([]string(nil), s.Required...)
	return &kw
}

func buildKind(s *jsonschema.Schema, id, name string, at path.Path, o *buildOptions) (Node, error) {
	if s.Ref != "" {
		return NewRef(id, name, s.Ref), nil
	}
	typ := s.Type
	if typ == "" {
		typ = "object"
		if s.Items != nil {
			typ = "array"
		}
	}
	kind, primitive := primitiveKinds[typ]
	if s.Formula != nil && !primitive {
		return nil, fmt.Errorf("schema: x-formula on non-primitive %q at %q", typ, at.Simple())
	}
	switch typ {
	case "object":
		obj := NewObject(id, name)
		for _, p := range s.Properties {
			if p.Schema == nil {
				continue
			}
			child, err := buildNode(p.Schema, p.Name, at.Child(p.Name), o)
			if err != nil {
				return nil, err
			}
			obj.AddChild(child)
		}
		return obj, nil
	case "array":
		arr := NewArray(id, name, nil)
		if s.Items != nil {
			// the root array's items have no Path; build them anyway so
			// the document survives a round trip
			ip, _ := at.ChildItems()
			items, err := buildNode(s.Items, "", ip, o)
			if err != nil {
				return nil, err
			}
			arr.SetItems(items)
		}
		return arr, nil
	case "string", "number", "integer", "boolean":
		if s.Formula != nil && s.Formula.Expression != "" {
			return NewFormula(id, name, kind, s.Formula.Expression), nil
		}
		return NewPrimitive(id, name, kind), nil
	}
	return nil, fmt.Errorf("schema: unsupported type %q at %q", typ, at.Simple())
}

var primitiveKinds = map[string]Kind{
	"string":  KindString,
	"number":  KindNumber,
	"integer": KindNumber,
	"boolean": KindBoolean,
}

// ToDocument renders the tree back into a schema document. Keywords kept
// from the source document are restored; x-id is written for nodes that had
// one in the source and for nodes built in code.
func ToDocument(t *Tree) *jsonschema.Schema {
	return toSchema(t.Root())
}

func toSchema(n Node) *jsonschema.Schema {
	s := &jsonschema.Schema{ID: n.ID()}
	if k, ok := n.(interface{ Keywords() *jsonschema.Schema }); ok && k.Keywords() != nil {
		kw := *k.Keywords()
		s = &kw
	}
	switch {
	case n.IsObject():
		s.Type = declaredType(s.Type, "object", n)
		for _, c := range n.Properties() {
			s.Properties = append(s.Properties, jsonschema.Property{Name: c.Name(), Schema: toSchema(c)})
		}
		s.Required = required(n)
	case n.IsArray():
		s.Type = declaredType(s.Type, "array", n)
		if items := n.Items(); !items.IsNull() {
			s.Items = toSchema(items)
		}
	case n.IsRef():
		if r, ok := n.(*Ref); ok {
			s.Ref = r.Target()
		}
	case n.IsPrimitive():
		s.Type = declaredType(s.Type, n.Kind().String(), n)
		if expr := n.Formula(); expr != "" {
			s.Formula = &jsonschema.Formula{Version: FormulaVersion, Expression: expr}
		}
	}
	return s
}

// declaredType keeps the source type name ("integer", or none for an
// inferred object) when it still reads back as n's kind.
func declaredType(declared, fallback string, n Node) string {
	switch declared {
	case "":
		if n.IsObject() || (n.IsArray() && !n.Items().IsNull()) {
			return ""
		}
	case "object", "array":
		if declared == fallback {
			return declared
		}
	default:
		if k, ok := primitiveKinds[declared]; ok && n.IsPrimitive() && k == n.Kind() {
			return declared
		}
	}
	return fallback
}

// required returns the source required list, minus names that no longer
// exist among n's properties.
func required(n Node) []string {
	k, ok := n.(interface{ Keywords() *jsonschema.Schema })
	if !ok || k.Keywords() == nil {
		return nil
	}
	var out []string
	for _, name := range k.Keywords().Required {
		if !n.Property(name).IsNull() {
			out = append(out, name)
		}
	}
	return out
}
