package formula_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemaformula/formula"
	"github.com/reoring/schemaformula/formula/ast"
	"github.com/reoring/schemaformula/formula/grammar"
	"github.com/reoring/schemaformula/i18n"
	"github.com/reoring/schemaformula/schema"
)

func TestNewParsed_UnknownField(t *testing.T) {
	tree := schema.NewTree(schema.NewObject("root", "",
		schema.NewPrimitive("total", "total", schema.KindNumber),
	))
	_, err := formula.NewParsed(tree, "total", "unknownField")
	require.Error(t, err)

	var fe *formula.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, formula.CodeUnresolvableDependency, fe.Code)
	assert.Equal(t, "total", fe.NodeID)
	assert.Equal(t, "unknownField", fe.Details)
	assert.True(t, errors.Is(err, formula.ErrUnresolvableDependency))
}

func TestNewParsed_ResolvesDependencies(t *testing.T) {
	tree := invoiceTree()

	f := mustParsed(t, tree, "total", "price * qty")
	assert.Equal(t, []string{"price", "qty"}, targets(f))
	assert.Equal(t, formula.Version, f.Version())
	assert.Equal(t, "total", f.NodeID())
	assert.Equal(t, "price * qty", f.Expression())
	assert.Equal(t, ast.KindBinary, f.AST().Kind())

	f = mustParsed(t, tree, "subtotal", "sum(lines[*].total)")
	assert.Equal(t, []string{"total"}, targets(f))

	f = mustParsed(t, tree, "amount", "../subtotal * rate")
	assert.Equal(t, []string{"subtotal", "rate"}, targets(f))
	id, ok := f.TargetOf("../subtotal")
	require.True(t, ok)
	assert.Equal(t, "subtotal", id)
	assert.True(t, f.DependsOn("rate"))
	assert.False(t, f.DependsOn("qty"))

	f = mustParsed(t, tree, "grand", "/customer.name + tax.amount")
	assert.Equal(t, []string{"name", "amount"}, targets(f))
}

func TestNewParsed_DeduplicatesByTarget(t *testing.T) {
	tree := invoiceTree()
	f := mustParsed(t, tree, "subtotal", "lines[0].price + lines[*].price + /lines[*].price")
	assert.Equal(t, []string{"price"}, targets(f))
	assert.Equal(t, []string{"lines[0].price", "lines[*].price", "/lines[*].price"}, f.RawDependencies())
	for _, raw := range f.RawDependencies() {
		id, ok := f.TargetOf(raw)
		require.True(t, ok, raw)
		assert.Equal(t, "price", id, raw)
	}
}

func TestNewParsed_IndexExpressionDependencies(t *testing.T) {
	f := mustParsed(t, invoiceTree(), "subtotal", "lines[idx].price")
	assert.Equal(t, []string{"price", "idx"}, targets(f))
}

func TestNewParsed_Errors(t *testing.T) {
	tree := invoiceTree()
	cases := []struct {
		name    string
		id      string
		expr    string
		code    string
		details string
	}{
		{"missing field", "nope", "price", formula.CodeNodeNotFound, ""},
		{"self reference", "total", "total + 1", formula.CodeSelfReference, "total"},
		{"self by root path", "subtotal", "/subtotal", formula.CodeSelfReference, "/subtotal"},
		{"escape above root", "subtotal", "../../x", formula.CodeUnresolvableDependency, "../../x"},
		{"sibling of array, not item", "subtotal", "price", formula.CodeUnresolvableDependency, "price"},
		{"syntax error", "subtotal", "price +", formula.CodeUnresolvableDependency, "price +"},
		{"bad root path", "subtotal", "/customer..name", formula.CodeUnresolvableDependency, "/customer..name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := formula.NewParsed(tree, tc.id, tc.expr)
			var fe *formula.Error
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tc.code, fe.Code)
			assert.Equal(t, tc.id, fe.NodeID)
			assert.Equal(t, tc.details, fe.Details)
		})
	}
}

func TestNewParsed_SyntaxErrorIsCause(t *testing.T) {
	_, err := formula.NewParsed(invoiceTree(), "subtotal", "(price")
	var se *grammar.SyntaxError
	assert.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, formula.ErrUnresolvableDependency))
	assert.False(t, errors.Is(err, formula.ErrSelfReference))
}

func TestNewParsed_WithParser(t *testing.T) {
	calls := 0
	p := ast.ParserFunc(func(expr string) (*ast.ParseResult, error) {
		calls++
		return grammar.New().Parse(expr)
	})
	f, err := formula.NewParsed(invoiceTree(), "total", "price * qty", formula.WithParser(p))
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "qty"}, targets(f))
	// the expression once, then each raw dependency
	assert.Equal(t, 3, calls)
}

func TestNewDependency(t *testing.T) {
	_, err := formula.NewDependency("")
	assert.Error(t, err)

	d, err := formula.NewDependency("price")
	require.NoError(t, err)
	assert.Equal(t, "price", d.TargetNodeID())
}

func TestError_Message(t *testing.T) {
	err := &formula.Error{Code: formula.CodeUnresolvableDependency, NodeID: "total", Details: "unknownField"}
	assert.Contains(t, err.Error(), "unresolvable_dependency")
	assert.Contains(t, err.Error(), "unknownField")
	assert.Contains(t, err.Message(), "unknownField")

	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	assert.Contains(t, err.Message(), "unknownField")
	assert.NotEqual(t, formula.CodeUnresolvableDependency, err.Message())
}
