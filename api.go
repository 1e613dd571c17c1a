package schemaformula

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/schemaformula/formula"
	"github.com/reoring/schemaformula/formula/ast"
	"github.com/reoring/schemaformula/jsonschema"
	"github.com/reoring/schemaformula/path"
	"github.com/reoring/schemaformula/schema"
)

// Format selects the document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Source supplies a schema document.
type Source interface {
	Read() (*jsonschema.Schema, error)
	Format() Format
}

type bytesSource struct {
	data   []byte
	format Format
}

func (s bytesSource) Format() Format { return s.format }

func (s bytesSource) Read() (*jsonschema.Schema, error) {
	if s.format == FormatYAML {
		return jsonschema.DecodeYAML(s.data)
	}
	return jsonschema.Decode(s.data)
}

type fileSource struct{ name string }

func (s fileSource) Format() Format {
	if jsonschema.IsYAMLFile(s.name) {
		return FormatYAML
	}
	return FormatJSON
}

func (s fileSource) Read() (*jsonschema.Schema, error) {
	data, err := os.ReadFile(s.name)
	if err != nil {
		return nil, err
	}
	return bytesSource{data: data, format: s.Format()}.Read()
}

// JSONBytes returns a Source over a JSON document.
func JSONBytes(b []byte) Source { return bytesSource{data: b, format: FormatJSON} }

// YAMLBytes returns a Source over a YAML document.
func YAMLBytes(b []byte) Source { return bytesSource{data: b, format: FormatYAML} }

// File returns a Source reading name; .yaml and .yml files are decoded as
// YAML, everything else as JSON.
func File(name string) Source { return fileSource{name: name} }

// Option configures Open.
type Option func(*options)

type options struct {
	logger *zap.Logger
	newID  func() string
	parser ast.Parser
}

// WithLogger sets the logger used by the formula index and for rewrites.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithIDGenerator sets how ids are minted for nodes lacking x-id.
func WithIDGenerator(fn func() string) Option { return func(o *options) { o.newID = fn } }

// WithParser replaces the formula grammar.
func WithParser(p ast.Parser) Option { return func(o *options) { o.parser = p } }

// Document is a loaded schema with every formula resolved and indexed.
type Document struct {
	tree   *schema.Tree
	index  *formula.Index
	errs   map[string]error
	format Format
	opts   options
}

// Open reads src and resolves every x-formula in it. Formula problems do not
// fail Open; they are reported per field by Errors.
func Open(src Source, opts ...Option) (*Document, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	raw, err := src.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	var treeOpts []schema.Option
	if o.newID != nil {
		treeOpts = append(treeOpts, schema.WithIDGenerator(o.newID))
	}
	tree, err := schema.FromDocument(raw, treeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	d := &Document{
		tree:   tree,
		index:  formula.NewIndex(formula.WithLogger(o.logger)),
		format: src.Format(),
		opts:   o,
	}
	d.errs = d.index.Rebuild(tree, d.parseOptions()...)
	return d, nil
}

func (d *Document) parseOptions() []formula.Option {
	if d.opts.parser == nil {
		return nil
	}
	return []formula.Option{formula.WithParser(d.opts.parser)}
}

func (d *Document) Tree() *schema.Tree    { return d.tree }
func (d *Document) Index() *formula.Index { return d.index }
func (d *Document) SourceFormat() Format  { return d.format }
func (d *Document) Errors() map[string]error {
	out := make(map[string]error, len(d.errs))
	for k, v := range d.errs {
		out[k] = v
	}
	return out
}

// Valid reports whether every formula resolved.
func (d *Document) Valid() bool { return len(d.errs) == 0 }

// Change records one rewritten formula.
type Change struct {
	NodeID string
	Path   string // simple path of the formula field after the edit
	Before string
	After  string
}

// Rename gives the property at p a new name in place, keeping its position
// among its siblings, and rewrites every formula whose reference text
// changed. It refuses to run while any formula is invalid, because those
// formulas could not be rewritten.
func (d *Document) Rename(p path.Path, newName string) ([]Change, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%d invalid formula(s)", len(d.errs))
	}
	if newName == "" || strings.ContainsAny(newName, ".[]/") {
		return nil, fmt.Errorf("new name %q must be a single property name", newName)
	}
	last, ok := p.Last()
	if !ok || !last.IsProperty() {
		return nil, fmt.Errorf("%s does not name a property", p.Simple())
	}
	n := d.tree.NodeAt(p)
	if n.IsNull() {
		return nil, fmt.Errorf("no field at %s", p.Simple())
	}
	if to := p.Parent().Child(newName); !d.tree.NodeAt(to).IsNull() {
		return nil, fmt.Errorf("%s already exists", to.Simple())
	}
	if parent, ok := d.tree.NodeAt(p.Parent()).(interface{ RenameChild(string, string) bool }); ok {
		parent.RenameChild(last.Name(), newName)
	} else {
		n.SetName(newName)
	}
	return d.rewriteAll()
}

// Move relocates the node at from to to (created as a new property, or
// replacing the node there) and rewrites every formula whose reference text
// changed. Replacing a node that a surviving formula reads is refused before
// the tree is touched.
func (d *Document) Move(from, to path.Path) ([]Change, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%d invalid formula(s)", len(d.errs))
	}
	n := d.tree.NodeAt(from)
	if n.IsNull() {
		return nil, fmt.Errorf("no field at %s", from.Simple())
	}
	if to.HasPrefix(from) {
		return nil, fmt.Errorf("cannot move %s into itself", from.Simple())
	}
	last, ok := to.Last()
	if !ok {
		return nil, &path.OperationError{Code: path.CodeCannotReplaceRoot}
	}
	parent := d.tree.NodeAt(to.Parent())
	if (last.IsProperty() && !parent.IsObject()) || (last.IsItems() && !parent.IsArray()) {
		return nil, fmt.Errorf("no container at %s", to.Parent().Simple())
	}
	if replaced := d.tree.NodeAt(to); !replaced.IsNull() {
		if err := d.checkReplace(to, replaced, n); err != nil {
			return nil, err
		}
	}
	if err := d.tree.RemoveNodeAt(from); err != nil {
		return nil, err
	}
	if err := d.tree.SetNodeAt(to, n); err != nil {
		return nil, err
	}
	return d.rewriteAll()
}

// checkReplace fails when a formula outside the replaced subtree reads a
// node inside it. The moved subtree n survives the replacement.
func (d *Document) checkReplace(at path.Path, replaced, n schema.Node) error {
	gone := map[string]bool{}
	collectIDs(replaced, gone)
	kept := map[string]bool{}
	collectIDs(n, kept)
	for id := range kept {
		delete(gone, id)
	}
	ids := make([]string, 0, len(gone))
	for id := range gone {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, dep := range d.index.Dependents(id) {
			if !gone[dep] {
				return fmt.Errorf("cannot replace %s: used by formula %s", at.Simple(), dep)
			}
		}
	}
	return nil
}

func collectIDs(n schema.Node, into map[string]bool) {
	if n.IsNull() {
		return
	}
	into[n.ID()] = true
	for _, c := range n.Properties() {
		collectIDs(c, into)
	}
	collectIDs(n.Items(), into)
}

// rewriteAll re-renders every registered formula against the current tree
// and re-registers the ones whose text changed. The index is rebuilt even
// when a rewrite fails, so it never describes a tree that is gone.
func (d *Document) rewriteAll() ([]Change, error) {
	var (
		changes []Change
		err     error
	)
	for _, id := range d.index.FormulaIDs() {
		if d.tree.NodeByID(id).IsNull() {
			// removed along with a replaced node
			continue
		}
		f := d.index.Formula(id)
		text, rerr := formula.Rewrite(d.tree, f)
		if rerr != nil {
			err = rerr
			break
		}
		if text == f.Expression() {
			continue
		}
		setter, ok := d.tree.NodeByID(id).(interface{ SetFormula(string) })
		if !ok {
			continue
		}
		setter.SetFormula(text)

		fieldPath, _ := d.tree.PathOf(id)
		changes = append(changes, Change{NodeID: id, Path: fieldPath.Simple(), Before: f.Expression(), After: text})
		d.opts.logger.Info("formula rewritten",
			zap.String("field", fieldPath.Simple()),
			zap.String("from", f.Expression()),
			zap.String("to", text))
	}
	// positions changed too, so every formula is re-resolved
	d.errs = d.index.Rebuild(d.tree, d.parseOptions()...)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, err
}

// Encode renders the current tree as a schema document.
func (d *Document) Encode(format Format) ([]byte, error) {
	doc := schema.ToDocument(d.tree)
	if format == FormatYAML {
		return jsonschema.EncodeYAML(doc)
	}
	return jsonschema.Encode(doc)
}
