package formula

import (
	"sort"
	"strings"

	"github.com/reoring/schemaformula/formula/ast"
	"github.com/reoring/schemaformula/path"
)

// Rewrite re-renders the expression of f with reference text that matches
// the current shape of tree, for example after a referenced field was renamed
// or moved. The stored AST is reused; only the source ranges of references are
// replaced. Root references stay absolute. Other references take the
// shortest form that resolves back to the same node: a name inside the
// formula's own container, then a "../" path, then an absolute path.
//
// Rewrite fails with CodeNodeNotFound when the formula field or one of its
// targets is no longer in tree.
func Rewrite(tree Tree, f *Parsed) (string, error) {
	fieldPath, ok := tree.PathOf(f.nodeID)
	if !ok {
		return "", &Error{Code: CodeNodeNotFound, NodeID: f.nodeID}
	}
	rw := &rewriter{tree: tree, f: f, from: fieldPath, base: BasePath(fieldPath)}
	return rw.render(f.ast, ast.Span{Start: 0, End: len(f.expression)})
}

type rewriter struct {
	tree Tree
	f    *Parsed
	from path.Path
	base path.Path
}

type replacement struct {
	span ast.Span
	text string
}

// render returns the source range span, which holds n, with every reference
// in n replaced.
func (rw *rewriter) render(n ast.Node, span ast.Span) (string, error) {
	var (
		reps []replacement
		err  error
	)
	ast.Walk(n, func(x ast.Node) bool {
		if err != nil {
			return false
		}
		if !ast.IsReference(x) {
			return true
		}
		var text string
		text, err = rw.reference(x)
		reps = append(reps, replacement{span: x.Pos(), text: text})
		return false
	})
	if err != nil {
		return "", err
	}

	src := rw.f.expression
	sort.Slice(reps, func(i, j int) bool { return reps[i].span.Start < reps[j].span.Start })

	var b strings.Builder
	at := span.Start
	for _, r := range reps {
		b.WriteString(src[at:r.span.Start])
		b.WriteString(r.text)
		at = r.span.End
	}
	b.WriteString(src[at:span.End])
	return b.String(), nil
}

// reference renders one reference chain.
func (rw *rewriter) reference(n ast.Node) (string, error) {
	span := n.Pos()
	raw := rw.f.expression[span.Start:span.End]
	target, ok := rw.f.targets[raw]
	if !ok {
		return raw, nil
	}
	p, ok := rw.tree.PathOf(target)
	if !ok {
		return "", &Error{Code: CodeNodeNotFound, NodeID: rw.f.nodeID, Details: raw}
	}

	text := Absolute(p)
	if _, isRoot := chainRoot(n).(*ast.RootPath); !isRoot {
		for _, c := range rw.candidates(p) {
			if rw.resolvesTo(c, p) {
				text = c
				break
			}
		}
	}
	return rw.restoreIndexes(n, text)
}

func (rw *rewriter) candidates(p path.Path) []string {
	var out []string
	if p.Len() > rw.base.Len() && p.HasPrefix(rw.base) {
		tail := p.Segments()[rw.base.Len():]
		if tail[0].IsProperty() {
			out = append(out, path.New(tail...).Simple())
		}
	}
	if rel, ok := Relative(rw.from, p); ok {
		out = append(out, rel)
	}
	return out
}

func (rw *rewriter) resolvesTo(text string, want path.Path) bool {
	res, err := rw.f.parser.Parse(text)
	if err != nil {
		return false
	}
	got, ok := Resolve(rw.base, res.AST)
	return ok && got.Equal(want)
}

// restoreIndexes puts concrete index expressions of n back into text, which
// renders every array access as "[*]". text may cover only the tail of the
// chain, so brackets are matched from the end.
func (rw *rewriter) restoreIndexes(n ast.Node, text string) (string, error) {
	var brackets []ast.Node // leaf to root
	for cur := n; cur != nil; {
		switch v := cur.(type) {
		case *ast.Member:
			cur = v.Object
		case *ast.Wildcard:
			brackets = append(brackets, v)
			cur = v.Object
		case *ast.Index:
			brackets = append(brackets, v)
			cur = v.Object
		default:
			cur = nil
		}
	}

	parts := strings.Split(text, "[*]")
	var b strings.Builder
	b.WriteString(parts[0])
	for j, part := range parts[1:] {
		access := "[*]"
		if k := len(parts) - 2 - j; k < len(brackets) {
			if idx, ok := brackets[k].(*ast.Index); ok {
				inner, err := rw.render(idx.Index, rw.bracketInner(idx))
				if err != nil {
					return "", err
				}
				access = "[" + inner + "]"
			}
		}
		b.WriteString(access)
		b.WriteString(part)
	}
	return b.String(), nil
}

// bracketInner is the source range between the brackets of idx.
func (rw *rewriter) bracketInner(idx *ast.Index) ast.Span {
	open := idx.Object.Pos().End + strings.IndexByte(rw.f.expression[idx.Object.Pos().End:], '[')
	return ast.Span{Start: open + 1, End: idx.Loc.End - 1}
}

func chainRoot(n ast.Node) ast.Node {
	for {
		switch v := n.(type) {
		case *ast.Member:
			n = v.Object
		case *ast.Wildcard:
			n = v.Object
		case *ast.Index:
			n = v.Object
		default:
			return n
		}
	}
}
