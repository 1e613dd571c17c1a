package formula_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemaformula/formula"
	"github.com/reoring/schemaformula/formula/grammar"
	"github.com/reoring/schemaformula/path"
)

func TestRelative(t *testing.T) {
	cases := []struct {
		from, to string
		want     string
	}{
		{"price", "quantity", "quantity"},
		{"parent.child", "sibling", "../sibling"},
		{"level1.level2.level3", "other", "../../other"},
		{"group.total", "group.rate", "rate"},
		{"group.total", "group.nested.value", "nested.value"},
		{"a.b.total", "a.c.value", "../c.value"},
		{"total", "lines[*].price", "lines[*].price"},
		{"lines[*].total", "subtotal", "../../subtotal"},
	}
	for _, tc := range cases {
		got, ok := formula.Relative(simple(tc.from), simple(tc.to))
		require.True(t, ok, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.want, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestRelative_ItemSiblingIsNotParseable(t *testing.T) {
	text, ok := formula.Relative(simple("lines[*].total"), simple("lines[*].price"))
	require.True(t, ok)
	assert.Equal(t, "../[*].price", text)

	_, err := grammar.New().Parse(text)
	assert.Error(t, err)
}

func TestRelative_OwnContainer(t *testing.T) {
	_, ok := formula.Relative(simple("a.b"), simple("a"))
	assert.False(t, ok)
	_, ok = formula.Relative(simple("total"), path.Empty())
	assert.False(t, ok)
}

func TestRelative_RoundTripsThroughResolve(t *testing.T) {
	pairs := [][2]string{
		{"parent.child", "sibling"},
		{"level1.level2.level3", "other"},
		{"a.b.total", "a.c.value"},
		{"lines[*].total", "subtotal"},
	}
	for _, pair := range pairs {
		from, to := simple(pair[0]), simple(pair[1])
		text, ok := formula.Relative(from, to)
		require.True(t, ok)
		got, ok := formula.Resolve(formula.BasePath(from), mustAST(t, text))
		require.True(t, ok, text)
		assert.True(t, got.Equal(to), "%s resolved to %s", text, got)
	}
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "/", formula.Absolute(path.Empty()))
	assert.Equal(t, "/customer.name", formula.Absolute(simple("customer.name")))
	assert.Equal(t, "/lines[*].price", formula.Absolute(simple("lines[*].price")))
	assert.Equal(t, "/matrix[*][*]", formula.Absolute(simple("matrix[*][*]")))
}

func TestIsComplexRelativePath(t *testing.T) {
	assert.True(t, formula.IsComplexRelativePath("../../other"))
	assert.True(t, formula.IsComplexRelativePath("../../../a.b"))
	assert.False(t, formula.IsComplexRelativePath("../sibling"))
	assert.False(t, formula.IsComplexRelativePath("sibling"))
	assert.False(t, formula.IsComplexRelativePath("./../../x"))
}

func TestIsSimpleName(t *testing.T) {
	assert.True(t, formula.IsSimpleName("price"))
	assert.True(t, formula.IsSimpleName("lines[*]"))
	assert.False(t, formula.IsSimpleName("a.b"))
	assert.False(t, formula.IsSimpleName("../a"))
	assert.False(t, formula.IsSimpleName("/a"))
}
