package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemaformula/path"
	"github.com/reoring/schemaformula/schema"
)

// invoiceTree:
//
//	customer { name }
//	lines[*] { price, qty, total = price * qty }
//	subtotal = sum(lines[*].total)
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
		schema.NewFormula("subtotal", "subtotal", schema.KindNumber, "sum(lines[*].total)"),
	))
}

func TestNullSentinel(t *testing.T) {
	n := schema.Null
	assert.True(t, n.IsNull())
	assert.False(t, n.IsObject())
	assert.False(t, n.IsArray())
	assert.False(t, n.IsPrimitive())
	assert.False(t, n.IsRef())
	assert.Empty(t, n.ID())
	assert.True(t, n.Property("x").Property("y").Items().IsNull())
	assert.Nil(t, n.Properties())
}

func TestTree_NodeAt(t *testing.T) {
	tree := invoiceTree()
	assert.Equal(t, "root", tree.NodeAt(path.Empty()).ID())
	assert.Equal(t, "name", tree.NodeAt(path.MustParseSimple("customer.name")).ID())
	assert.Equal(t, "line", tree.NodeAt(path.MustParseSimple("lines[*]")).ID())
	assert.Equal(t, "qty", tree.NodeAt(path.MustParsePointer("/properties/lines/items/properties/qty")).ID())
	assert.True(t, tree.NodeAt(path.MustParseSimple("customer.missing")).IsNull())
	assert.True(t, tree.NodeAt(path.MustParseSimple("customer[*]")).IsNull())
}

func TestTree_PathOfAndNodeByID(t *testing.T) {
	tree := invoiceTree()

	p, ok := tree.PathOf("total")
	require.True(t, ok)
	assert.Equal(t, "lines[*].total", p.Simple())

	p, ok = tree.PathOf("root")
	require.True(t, ok)
	assert.True(t, p.IsEmpty())

	_, ok = tree.PathOf("nope")
	assert.False(t, ok)
	_, ok = tree.PathOf("")
	assert.False(t, ok)

	assert.Equal(t, "qty", tree.NodeByID("qty").Name())
	assert.True(t, tree.NodeByID("nope").IsNull())
}

func TestTree_FormulaFields(t *testing.T) {
	fields := invoiceTree().FormulaFields()
	require.Len(t, fields, 2)
	assert.Equal(t, "total", fields[0].NodeID)
	assert.Equal(t, "lines[*].total", fields[0].Path.Simple())
	assert.Equal(t, "price * qty", fields[0].Expression)
	assert.Equal(t, "subtotal", fields[1].NodeID)
}

func TestTree_WalkStops(t *testing.T) {
	var visited []string
	invoiceTree().Walk(func(p path.Path, n schema.Node) bool {
		visited = append(visited, n.ID())
		return n.ID() != "customer"
	})
	assert.Equal(t, []string{"root", "customer"}, visited)
}

func TestNewTree_NilRoot(t *testing.T) {
	tree := schema.NewTree(nil)
	assert.True(t, tree.Root().IsObject())
}
