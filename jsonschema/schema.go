// Package jsonschema reads and writes the schema documents the editor works on,
// keeping object property order intact in both JSON and YAML.
package jsonschema

// Schema is a minimal JSON Schema document as edited by the schema editor.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Editor extensions
	ID      string   `json:"x-id,omitempty" yaml:"x-id,omitempty"`
	Formula *Formula `json:"x-formula,omitempty" yaml:"x-formula,omitempty"`

	// Core
	Ref         string `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`

	// Object
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string   `json:"required,omitempty" yaml:"required,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty" yaml:"items,omitempty"`
}

// Formula is the x-formula extension of a computed field.
type Formula struct {
	Version    int    `json:"version" yaml:"version"`
	Expression string `json:"expression" yaml:"expression"`
}

// Property is one named entry of an object's properties.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties keeps object properties in document order. Field order is
// significant to the editor, so a Go map cannot be used.
type Properties []Property

// Get returns the named property schema, or nil.
func (ps Properties) Get(name string) *Schema {
	for _, p := range ps {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}
