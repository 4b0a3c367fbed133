// Package load reads model type descriptors from JSON and YAML documents.
package load

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgraph"
)

// Schema describes one model type.
type Schema struct {
	Name     string   `json:"name" yaml:"name"`
	Module   string   `json:"module,omitempty" yaml:"module,omitempty"`
	Bases    []string `json:"bases,omitempty" yaml:"bases,omitempty"`
	Abstract bool     `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Edges    []*Edge  `json:"edges,omitempty" yaml:"edges,omitempty"`
	Comment  string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	// Pos is the file the schema was loaded from.
	Pos string `json:"-" yaml:"-"`
}

// Edge describes one relationship declared on a Schema.
//
// An assoc edge points to Type and may carry its inverse inline in Ref.
// An inverse edge sets Inverse and names the assoc edge it mirrors in
// RefName. Relation overrides the inferred direction, Columns and
// RefColumns override the derived column mapping.
type Edge struct {
	Name       string   `json:"name" yaml:"name"`
	Type       string   `json:"type" yaml:"type"`
	Ref        *Edge    `json:"ref,omitempty" yaml:"ref,omitempty"`
	RefName    string   `json:"ref_name,omitempty" yaml:"ref_name,omitempty"`
	Inverse    bool     `json:"inverse,omitempty" yaml:"inverse,omitempty"`
	Unique     bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Relation   string   `json:"relation,omitempty" yaml:"relation,omitempty"`
	Columns    []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	RefColumns []string `json:"ref_columns,omitempty" yaml:"ref_columns,omitempty"`
	Comment    string   `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// MarshalSchema encodes the schema into JSON that UnmarshalSchema decodes
// back.
func MarshalSchema(s *Schema) ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// UnmarshalSchema decodes a single JSON schema.
func UnmarshalSchema(buf []byte) (*Schema, error) {
	s := &Schema{}
	if err := json.Unmarshal(buf, s); err != nil {
		return nil, errors.Wrap(err, "decode schema")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeJSON decodes a JSON document holding one schema or a list.
func DecodeJSON(buf []byte) ([]*Schema, error) {
	buf = bytes.TrimSpace(buf)
	if len(buf) > 0 && buf[0] == '[' {
		var schemas []*Schema
		if err := json.Unmarshal(buf, &schemas); err != nil {
			return nil, errors.Wrap(err, "decode schemas")
		}
		return schemas, validateAll(schemas)
	}
	s, err := UnmarshalSchema(buf)
	if err != nil {
		return nil, err
	}
	return []*Schema{s}, nil
}

// DecodeYAML decodes a YAML document holding one schema or a list.
func DecodeYAML(buf []byte) ([]*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, errors.Wrap(err, "decode schemas")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	var schemas []*Schema
	switch node := doc.Content[0]; node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&schemas); err != nil {
			return nil, errors.Wrap(err, "decode schemas")
		}
	default:
		s := &Schema{}
		if err := node.Decode(s); err != nil {
			return nil, errors.Wrap(err, "decode schema")
		}
		schemas = append(schemas, s)
	}
	return schemas, validateAll(schemas)
}

// LoadFile loads the schemas declared in a .json, .yaml or .yml file.
func LoadFile(path string) ([]*Schema, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, errors.Newf("load %s: unsupported file extension", path)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	schemas, err := decode(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	for _, s := range schemas {
		s.Pos = path
	}
	return schemas, nil
}

// LoadDir loads every descriptor file directly inside dir, in file name
// order. Files with other extensions are skipped.
func LoadDir(dir string) ([]*Schema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", dir)
	}
	var schemas []*Schema
	for _, e := range entries {
		if e.IsDir() || !IsDescriptor(e.Name()) {
			continue
		}
		loaded, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, loaded...)
	}
	return schemas, nil
}

// Load loads path as a directory or as a single file.
func Load(path string) ([]*Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// IsDescriptor reports whether name has a descriptor file extension.
func IsDescriptor(name string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(name))]
	return ok
}

var decoders = map[string]func([]byte) ([]*Schema, error){
	".json": DecodeJSON,
	".yaml": DecodeYAML,
	".yml":  DecodeYAML,
}

func validateAll(schemas []*Schema) error {
	for _, s := range schemas {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) validate() error {
	if s == nil || s.Name == "" {
		return modelgraph.NewSchemaError("", "", "missing type name", nil)
	}
	if slices.Contains(s.Bases, s.Name) {
		return modelgraph.NewSchemaError(s.Name, "", "type cannot extend itself", nil)
	}
	for _, e := range s.Edges {
		if e == nil || e.Name == "" {
			return modelgraph.NewSchemaError(s.Name, "", "missing edge name", nil)
		}
		if e.Type == "" {
			return modelgraph.NewSchemaError(s.Name, e.Name, "missing edge type", nil)
		}
		if e.Inverse && e.Ref != nil {
			return modelgraph.NewSchemaError(s.Name, e.Name, "inverse edge cannot declare an inline inverse", nil)
		}
	}
	return nil
}
