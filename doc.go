// Package schemaformula loads JSON-Schema documents whose fields carry
// x-formula expressions and keeps those formulas consistent with the schema:
//
// - Fields are addressed by path.Path, parsed from JSON Pointers or dotted
// "simple" paths and rendered back to either form
// - Formula references resolve to live schema nodes (formula.NewParsed)
// - formula.Index answers "which formulas use this field" in both directions
// - Renaming or moving a field rewrites dependent formula text
// (formula.Rewrite)
//
// Design policy:
// - Keep only the document-level API in the root package; the building blocks
// live in path/, schema/, jsonschema/ and formula/.
// - The CLI lives under cmd/schemaformula.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	doc, err := schemaformula.Open(schemaformula.File("invoice.json"))
//	if err != nil { ... }
//	for id, ferr := range doc.Errors() { ... } // per-field formula errors
//	usedBy := doc.Index().Dependents(priceID)
//
//	changes, err := doc.Rename(path.MustParseSimple("lines[*].price"), "unit_price")
//	out, err := doc.Encode(schemaformula.FormatJSON)
package schemaformula
