package schemaformula_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemaformula"
	"github.com/reoring/schemaformula/formula"
	"github.com/reoring/schemaformula/jsonschema"
	"github.com/reoring/schemaformula/path"
)

const invoiceJSON = `{
  "type": "object",
  "properties": {
    "lines": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "price": {"x-id": "price", "type": "number"},
          "qty": {"x-id": "qty", "type": "integer"},
          "total": {"x-id": "total", "type": "number", "x-formula": {"version": 1, "expression": "price * qty"}}
        }
      }
    },
    "subtotal": {"x-id": "subtotal", "type": "number", "x-formula": {"version": 1, "expression": "sum(lines[*].total)"}},
    "tax": {
      "type": "object",
      "properties": {
        "rate": {"x-id": "rate", "type": "number"},
        "amount": {"x-id": "amount", "type": "number", "x-formula": {"version": 1, "expression": "../subtotal * rate"}}
      }
    }
  }
}`

const invoiceYAML = `
type: object
properties:
  price:
    x-id: price
    type: number
  total:
    x-id: total
    type: number
    x-formula:
      version: 1
      expression: price * 2
`

func open(t *testing.T, src schemaformula.Source) *schemaformula.Document {
	t.Helper()
	n := 0
	doc, err := schemaformula.Open(src, schemaformula.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}))
	require.NoError(t, err)
	return doc
}

func formulaAt(t *testing.T, doc *schemaformula.Document, simple string) string {
	t.Helper()
	n := doc.Tree().NodeAt(path.MustParseSimple(simple))
	require.False(t, n.IsNull(), simple)
	return n.Formula()
}

func TestOpen_ResolvesFormulas(t *testing.T) {
	doc := open(t, schemaformula.JSONBytes([]byte(invoiceJSON)))
	assert.True(t, doc.Valid())
	assert.Empty(t, doc.Errors())
	assert.Equal(t, schemaformula.FormatJSON, doc.SourceFormat())
	assert.Equal(t, 3, doc.Index().Len())
	assert.Equal(t, []string{"amount"}, doc.Index().Dependents("subtotal"))
	assert.Equal(t, []string{"total"}, doc.Index().Dependents("price"))

	// generated ids for nodes without x-id
	assert.Equal(t, "gen-1", doc.Tree().Root().ID())
}

func TestOpen_YAML(t *testing.T) {
	doc := open(t, schemaformula.YAMLBytes([]byte(invoiceYAML)))
	assert.Equal(t, schemaformula.FormatYAML, doc.SourceFormat())
	assert.Equal(t, []string{"total"}, doc.Index().Dependents("price"))
}

func TestOpen_ReportsFormulaErrors(t *testing.T) {
	src := `{"type": "object", "properties": {
		"total": {"x-id": "total", "type": "number", "x-formula": {"version": 1, "expression": "unknownField"}}
	}}`
	doc := open(t, schemaformula.JSONBytes([]byte(src)))
	assert.False(t, doc.Valid())
	errs := doc.Errors()
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs["total"], formula.ErrUnresolvableDependency))

	_, err := doc.Rename(path.MustParseSimple("total"), "sum")
	assert.ErrorContains(t, err, "1 invalid formula(s)")
}

func TestOpen_Errors(t *testing.T) {
	_, err := schemaformula.Open(schemaformula.File(filepath.Join(t.TempDir(), "missing.json")))
	assert.ErrorContains(t, err, "failed to read schema")

	_, err = schemaformula.Open(schemaformula.JSONBytes([]byte(`{"type": "object", "properties": {"a": {"type": "tuple"}}}`)))
	assert.ErrorContains(t, err, "failed to load schema")
}

func TestDocument_Rename(t *testing.T) {
	doc := open(t, schemaformula.JSONBytes([]byte(invoiceJSON)))

	changes, err := doc.Rename(path.MustParseSimple("subtotal"), "net")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, schemaformula.Change{NodeID: "amount", Path: "tax.amount", Before: "../subtotal * rate", After: "../net * rate"}, changes[0])
	assert.Equal(t, "../net * rate", formulaAt(t, doc, "tax.amount"))
	assert.True(t, doc.Valid())
	assert.Equal(t, "../net * rate", doc.Index().Formula("amount").Expression())

	changes, err = doc.Rename(path.MustParseSimple("lines[*].price"), "unit_price")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "unit_price * qty", formulaAt(t, doc, "lines[*].total"))

	// sibling order is kept
	var names []string
	for _, n := range doc.Tree().Root().Properties() {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"lines", "net", "tax"}, names)
}

func TestDocument_RenameRejects(t *testing.T) {
	doc := open(t, schemaformula.JSONBytes([]byte(invoiceJSON)))
	for _, tc := range []struct{ at, name string }{
		{"subtotal", ""},
		{"subtotal", "a.b"},
		{"subtotal", "tax"},
		{"missing", "x"},
		{"lines[*]", "x"},
	} {
		_, err := doc.Rename(path.MustParseSimple(tc.at), tc.name)
		assert.Error(t, err, "%s=%s", tc.at, tc.name)
	}
	_, err := doc.Rename(path.Empty(), "x")
	assert.Error(t, err)
}

func TestDocument_Move(t *testing.T) {
	doc := open(t, schemaformula.JSONBytes([]byte(invoiceJSON)))

	changes, err := doc.Move(path.MustParseSimple("subtotal"), path.MustParseSimple("tax.subtotal"))
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "subtotal * rate", formulaAt(t, doc, "tax.amount"))
	assert.Equal(t, "sum(../lines[*].total)", formulaAt(t, doc, "tax.subtotal"))
	assert.True(t, doc.Valid())

	_, err = doc.Move(path.MustParseSimple("tax"), path.MustParseSimple("tax.inner"))
	assert.Error(t, err)
	_, err = doc.Move(path.MustParseSimple("tax.rate"), path.MustParseSimple("nowhere.rate"))
	assert.Error(t, err)
	assert.False(t, doc.Tree().NodeAt(path.MustParseSimple("tax.rate")).IsNull())
	_, err = doc.Move(path.MustParseSimple("tax.rate"), path.Empty())
	assert.ErrorIs(t, err, path.ErrCannotReplaceRoot)
}

func TestDocument_MoveRefusesToReplaceReadNode(t *testing.T) {
	doc := open(t, schemaformula.JSONBytes([]byte(invoiceJSON)))

	_, err := doc.Move(path.MustParseSimple("subtotal"), path.MustParseSimple("tax.rate"))
	require.ErrorContains(t, err, "cannot replace tax.rate: used by formula amount")

	// nothing changed
	assert.Equal(t, "subtotal", doc.Tree().NodeAt(path.MustParseSimple("subtotal")).ID())
	assert.Equal(t, "rate", doc.Tree().NodeAt(path.MustParseSimple("tax.rate")).ID())
	assert.True(t, doc.Valid())
	assert.Equal(t, []string{"amount"}, doc.Index().Dependents("rate"))
}

func TestDocument_MoveReplacesUnreadNode(t *testing.T) {
	doc := open(t, schemaformula.JSONBytes([]byte(invoiceJSON)))

	// amount goes away with tax; nothing outside tax reads it
	_, err := doc.Move(path.MustParseSimple("tax.rate"), path.MustParseSimple("tax"))
	require.NoError(t, err)
	assert.Equal(t, "rate", doc.Tree().NodeAt(path.MustParseSimple("tax")).ID())
	assert.Nil(t, doc.Index().Formula("amount"))
	assert.Equal(t, 2, doc.Index().Len())
	assert.True(t, doc.Valid())
}

func TestDocument_EncodeKeepsKeywords(t *testing.T) {
	src := `{
	  "type": "object",
	  "title": "Order",
	  "required": ["qty", "note"],
	  "properties": {
	    "qty": {"x-id": "q", "type": "integer", "title": "Quantity", "format": "int32", "default": 1},
	    "note": {"type": "string", "description": "free text"},
	    "double": {"x-id": "d", "type": "integer", "x-formula": {"version": 1, "expression": "qty * 2"}}
	  }
	}`
	doc := open(t, schemaformula.JSONBytes([]byte(src)))
	_, err := doc.Rename(path.MustParseSimple("qty"), "count")
	require.NoError(t, err)

	data, err := doc.Encode(schemaformula.FormatJSON)
	require.NoError(t, err)
	out, err := jsonschema.Decode(data)
	require.NoError(t, err)

	assert.Empty(t, out.ID)
	assert.Equal(t, "Order", out.Title)
	assert.Equal(t, []string{"count", "note"}, out.Required)

	count := out.Properties.Get("count")
	require.NotNil(t, count)
	assert.Equal(t, "q", count.ID)
	assert.Equal(t, "integer", count.Type)
	assert.Equal(t, "Quantity", count.Title)
	assert.Equal(t, "int32", count.Format)
	assert.EqualValues(t, 1, count.Default)

	note := out.Properties.Get("note")
	require.NotNil(t, note)
	assert.Empty(t, note.ID)
	assert.Equal(t, "free text", note.Description)

	double := out.Properties.Get("double")
	require.NotNil(t, double)
	assert.Equal(t, "integer", double.Type)
	assert.Equal(t, "count * 2", double.Formula.Expression)
}

func TestOpen_RejectsDuplicateIDs(t *testing.T) {
	src := `{"type": "object", "properties": {
		"a": {"x-id": "n1", "type": "number"},
		"b": {"x-id": "n1", "type": "number", "x-formula": {"version": 1, "expression": "a * 2"}}
	}}`
	_, err := schemaformula.Open(schemaformula.JSONBytes([]byte(src)))
	assert.ErrorContains(t, err, `duplicate x-id "n1" at "b"`)
}

func TestDocument_Encode(t *testing.T) {
	doc := open(t, schemaformula.JSONBytes([]byte(invoiceJSON)))
	_, err := doc.Rename(path.MustParseSimple("lines"), "rows")
	require.NoError(t, err)

	for _, format := range []schemaformula.Format{schemaformula.FormatJSON, schemaformula.FormatYAML} {
		data, err := doc.Encode(format)
		require.NoError(t, err)

		var out *jsonschema.Schema
		if format == schemaformula.FormatYAML {
			out, err = jsonschema.DecodeYAML(data)
		} else {
			out, err = jsonschema.Decode(data)
		}
		require.NoError(t, err)
		require.NotNil(t, out.Properties.Get("rows"))
		assert.Equal(t, "sum(rows[*].total)", out.Properties.Get("subtotal").Formula.Expression)
		assert.Equal(t, 1, out.Properties.Get("subtotal").Formula.Version)

		again, err := schemaformula.Open(schemaformula.JSONBytes(mustJSON(t, out)))
		require.NoError(t, err)
		assert.True(t, again.Valid())
	}
}

func mustJSON(t *testing.T, s *jsonschema.Schema) []byte {
	t.Helper()
	b, err := jsonschema.Encode(s)
	require.NoError(t, err)
	return b
}
