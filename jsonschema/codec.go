package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Decode parses a JSON schema document.
func Decode(data []byte) (*Schema, error) {
	var s Schema
	if err := j.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("jsonschema: decode json: %w", err)
	}
	return &s, nil
}

// DecodeYAML parses a YAML schema document. Only the first document of a
// multi-document stream is read.
func DecodeYAML(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var s Schema
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("jsonschema: decode yaml: %w", err)
	}
	return &s, nil
}

// Encode renders the document as indented JSON.
func Encode(s *Schema) ([]byte, error) {
	b, err := j.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("jsonschema: encode json: %w", err)
	}
	return b, nil
}

// EncodeYAML renders the document as YAML.
func EncodeYAML(s *Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("jsonschema: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsYAMLFile reports whether filename has a YAML extension.
func IsYAMLFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ReadFile loads a document, choosing the decoder by file extension.
func ReadFile(filename string) (*Schema, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if IsYAMLFile(filename) {
		return DecodeYAML(data)
	}
	return Decode(data)
}

// MarshalJSON writes properties in slice order.
func (ps Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := j.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		v, err := j.Marshal(p.Schema)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object token by token so document order survives.
func (ps *Properties) UnmarshalJSON(data []byte) error {
	dec := j.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*ps = nil
		return nil
	}
	if d, ok := tok.(j.Delim); !ok || d != '{' {
		return fmt.Errorf("jsonschema: properties must be an object, got %v", tok)
	}
	out := Properties{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := kt.(string)
		if !ok {
			return fmt.Errorf("jsonschema: unexpected property key %v", kt)
		}
		if out.Get(name) != nil {
			return fmt.Errorf("jsonschema: duplicate property %q", name)
		}
		var s Schema
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("jsonschema: property %q: %w", name, err)
		}
		out = append(out, Property{Name: name, Schema: &s})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*ps = out
	return nil
}

// MarshalYAML emits a mapping node in slice order.
func (ps Properties) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range ps {
		var v yaml.Node
		if err := v.Encode(p.Schema); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Name},
			&v,
		)
	}
	return node, nil
}

// UnmarshalYAML reads the mapping node pairwise, keeping document order.
func (ps *Properties) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("jsonschema: properties must be a mapping (line %d)", value.Line)
	}
	out := make(Properties, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if out.Get(k.Value) != nil {
			return fmt.Errorf("jsonschema: duplicate property %q (line %d)", k.Value, k.Line)
		}
		var s Schema
		if err := v.Decode(&s); err != nil {
			return fmt.Errorf("jsonschema: property %q: %w", k.Value, err)
		}
		out = append(out, Property{Name: k.Value, Schema: &s})
	}
	*ps = out
	return nil
}
