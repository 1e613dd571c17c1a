package formula_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/schemaformula/formula"
	"github.com/reoring/schemaformula/formula/ast"
	"github.com/reoring/schemaformula/formula/grammar"
	"github.com/reoring/schemaformula/path"
	"github.com/reoring/schemaformula/schema"
)

// invoiceTree:
//
//	customer { name }
//	lines[*] { price, qty, total = price * qty }
//	idx
//	subtotal = sum(lines[*].total)
//	tax { rate, amount = ../subtotal * rate }
//	grand = subtotal + tax.amount
func invoiceTree() *schema.Tree {
	return schema.NewTree(schema.NewObject("root", "",
		schema.NewObject("customer", "customer",
			schema.NewPrimitive("name", "name", schema.KindString),
		),
		schema.NewArray("lines", "lines", schema.NewObject("line", "",
			schema.NewPrimitive("price", "price", schema.KindNumber),
			schema.NewPrimitive("qty", "qty", schema.KindNumber),
			schema.NewFormula("total", "total", schema.KindNumber, "price * qty"),
		)),
		schema.NewPrimitive("idx", "idx", schema.KindNumber),
		schema.NewFormula("subtotal", "subtotal", schema.KindNumber, "sum(lines[*].total)"),
		schema.NewObject("tax", "tax",
			schema.NewPrimitive("rate", "rate", schema.KindNumber),
			schema.NewFormula("amount", "amount", schema.KindNumber, "../subtotal * rate"),
		),
		schema.NewFormula("grand", "grand", schema.KindNumber, "subtotal + tax.amount"),
	))
}

func mustParsed(t *testing.T, tree formula.Tree, id, expr string) *formula.Parsed {
	t.Helper()
	f, err := formula.NewParsed(tree, id, expr)
	require.NoError(t, err, expr)
	return f
}

func mustAST(t *testing.T, expr string) ast.Node {
	t.Helper()
	res, err := grammar.New().Parse(expr)
	require.NoError(t, err, expr)
	return res.AST
}

func targets(f *formula.Parsed) []string {
	var out []string
	for _, d := range f.Dependencies() {
		out = append(out, d.TargetNodeID())
	}
	return out
}

func simple(s string) path.Path { return path.MustParseSimple(s) }
