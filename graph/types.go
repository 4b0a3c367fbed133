package graph

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

type (
	// Graph is the exported result of one extraction.
	Graph struct {
		Vertices []*Vertex `json:"vertices" yaml:"vertices" msgpack:"vertices"`
		Edges    []*Edge   `json:"edges" yaml:"edges" msgpack:"edges"`
	}

	// Vertex represents one model type.
	Vertex struct {
		ID                   string           `json:"id" yaml:"id" msgpack:"id"`
		Label                string           `json:"label" yaml:"label" msgpack:"label"`
		SearchableComponents []string         `json:"searchable_components" yaml:"searchable_components" msgpack:"searchable_components"`
		Properties           VertexProperties `json:"properties" yaml:"properties" msgpack:"properties"`
	}

	// VertexProperties holds the descriptive metadata of a vertex.
	VertexProperties struct {
		ModelName   string   `json:"model_name" yaml:"model_name" msgpack:"model_name"`
		ModuleName  string   `json:"module_name" yaml:"module_name" msgpack:"module_name"`
		BaseClasses []string `json:"base_classes" yaml:"base_classes" msgpack:"base_classes"`
	}

	// Edge represents merged relationships sharing one (type, source, dest)
	// triple, or a single inheritance link.
	Edge struct {
		ID         string         `json:"id" yaml:"id" msgpack:"id"`
		Label      string         `json:"label" yaml:"label" msgpack:"label"`
		Source     string         `json:"source" yaml:"source" msgpack:"source"`
		Dest       string         `json:"dest" yaml:"dest" msgpack:"dest"`
		Properties EdgeProperties `json:"properties" yaml:"properties" msgpack:"properties"`
	}

	// EdgeProperties holds the relationship metadata of an edge.
	EdgeProperties struct {
		Type              string  `json:"type" yaml:"type" msgpack:"type"`
		IsSelfReferential bool    `json:"is_self_referential" yaml:"is_self_referential" msgpack:"is_self_referential"`
		Multiplicity      string  `json:"multiplicity,omitempty" yaml:"multiplicity,omitempty" msgpack:"multiplicity,omitempty"`
		Fields            *Fields `json:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields,omitempty"`
	}

	// Field is the metadata of one relationship folded into an edge.
	// BackReference is nil, encoded as null, when the relationship has no
	// back-reference.
	Field struct {
		Name          string   `json:"name" yaml:"name" msgpack:"name"`
		BackReference *string  `json:"back_reference" yaml:"back_reference" msgpack:"back_reference"`
		SourceColumns []string `json:"source_columns" yaml:"source_columns" msgpack:"source_columns"`
		DestColumns   []string `json:"dest_columns" yaml:"dest_columns" msgpack:"dest_columns"`
	}
)

// IsInheritance reports whether e is an inheritance edge.
func (e *Edge) IsInheritance() bool { return e.Properties.Type == Inheritance }

// index is an insertion-ordered string-keyed map.
type index[V any] struct {
	keys []string
	m    map[string]V
}

func newIndex[V any]() index[V] {
	return index[V]{m: make(map[string]V)}
}

func (x *index[V]) get(k string) (V, bool) {
	v, ok := x.m[k]
	return v, ok
}

// put inserts or updates k. Updates keep the original position.
func (x *index[V]) put(k string, v V) {
	if _, ok := x.m[k]; !ok {
		x.keys = append(x.keys, k)
	}
	x.m[k] = v
}

func (x *index[V]) values() []V {
	vs := make([]V, 0, len(x.keys))
	for _, k := range x.keys {
		vs = append(vs, x.m[k])
	}
	return vs
}

// Fields is the ordered mapping from relationship name to its metadata.
// Entries keep their insertion order in every encoding.
type Fields struct {
	idx index[Field]
}

// NewFields returns a mapping holding the given fields in order.
func NewFields(fields ...Field) *Fields {
	f := &Fields{idx: newIndex[Field]()}
	for _, fd := range fields {
		f.Set(fd)
	}
	return f
}

// Set inserts fd under fd.Name, or replaces the existing entry.
func (f *Fields) Set(fd Field) { f.idx.put(fd.Name, fd) }

// Get returns the entry stored under name.
func (f *Fields) Get(name string) (Field, bool) { return f.idx.get(name) }

// Names returns the relationship names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.idx.keys...)
}

// Len returns the number of entries.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.idx.keys)
}

// MarshalJSON implements json.Marshaler.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, name := range f.idx.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.idx.m[name])
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler.
func (f *Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range f.idx.keys {
		var v yaml.Node
		if err := v.Encode(f.idx.m[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, &v)
	}
	return node, nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (f *Fields) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(f.idx.keys)); err != nil {
		return err
	}
	for _, name := range f.idx.keys {
		if err := enc.EncodeString(name); err != nil {
			return err
		}
		if err := enc.Encode(f.idx.m[name]); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ json.Marshaler        = (*Fields)(nil)
	_ yaml.Marshaler        = (*Fields)(nil)
	_ msgpack.CustomEncoder = (*Fields)(nil)
)

// VertexSet is the insertion-ordered vertex accumulator of one extraction.
type VertexSet struct {
	idx index[*Vertex]
}

func newVertexSet() *VertexSet { return &VertexSet{idx: newIndex[*Vertex]()} }

// Get returns the vertex with the given id.
func (s *VertexSet) Get(id string) (*Vertex, bool) { return s.idx.get(id) }

// Len returns the number of vertices.
func (s *VertexSet) Len() int { return len(s.idx.keys) }

// Values returns the vertices in discovery order.
func (s *VertexSet) Values() []*Vertex { return s.idx.values() }

// EdgeSet is the insertion-ordered edge accumulator of one extraction.
type EdgeSet struct {
	idx index[*Edge]
}

func newEdgeSet() *EdgeSet { return &EdgeSet{idx: newIndex[*Edge]()} }

// Get returns the edge with the given id.
func (s *EdgeSet) Get(id string) (*Edge, bool) { return s.idx.get(id) }

// Len returns the number of edges.
func (s *EdgeSet) Len() int { return len(s.idx.keys) }

// Values returns the edges in discovery order.
func (s *EdgeSet) Values() []*Edge { return s.idx.values() }
