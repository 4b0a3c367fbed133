// Package registry implements graph.Provider over loaded type descriptors.
//
// A Registry is built once from a list of load.Schema values and is
// immutable afterwards; it is safe for concurrent use.
package registry

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/graph"
	"github.com/syssam/modelgraph/load"
)

// Type is one registered model type.
type Type struct {
	// Name is the simple type name.
	Name string
	// Module is the namespace the type is declared in.
	Module string
	// Abstract types are not mapped and expose no relationships.
	Abstract bool
	// Comment of the descriptor.
	Comment string

	schema    *load.Schema
	qname     string
	bases     []*Type
	subtypes  []*Type
	mro       []*Type
	ancestors []string
	rels      []graph.Relationship
}

// QualifiedName returns the module-qualified name of the type.
func (t *Type) QualifiedName() string { return t.qname }

// Bases returns the immediate parents, in declaration order.
func (t *Type) Bases() []*Type { return slices.Clone(t.bases) }

// Subtypes returns the immediate subtypes, in registration order.
func (t *Type) Subtypes() []*Type { return slices.Clone(t.subtypes) }

// Schema returns the descriptor the type was built from.
func (t *Type) Schema() *load.Schema { return t.schema }

// String implements fmt.Stringer.
func (t *Type) String() string { return t.qname }

// Registry is an explicit registry of type descriptors.
type Registry struct {
	cfg      config
	types    []*Type
	byQName  map[string]*Type
	bySimple map[string][]*Type
}

var _ graph.Provider[*Type] = (*Registry)(nil)

// New builds a registry from the given descriptors. Descriptor errors
// (duplicates, unknown bases, inheritance cycles, hierarchies without a
// consistent linearization) are reported as *modelgraph.SchemaError.
func New(schemas []*load.Schema, opts ...Option) (*Registry, error) {
	r := &Registry{
		byQName:  make(map[string]*Type),
		bySimple: make(map[string][]*Type),
	}
	for _, opt := range opts {
		if err := opt(&r.cfg); err != nil {
			return nil, err
		}
	}
	for _, s := range schemas {
		if err := r.add(s); err != nil {
			return nil, err
		}
	}
	for _, t := range r.types {
		if err := r.linkBases(t); err != nil {
			return nil, err
		}
	}
	for _, t := range r.types {
		if err := r.linearize(t, make(map[*Type]bool)); err != nil {
			return nil, err
		}
		t.ancestors = make([]string, 0, len(t.mro)+1)
		for _, a := range t.mro {
			t.ancestors = append(t.ancestors, a.Name)
		}
		if u := r.cfg.universalBase; u != "" && !slices.Contains(t.ancestors, u) {
			t.ancestors = append(t.ancestors, u)
		}
	}
	for _, t := range r.types {
		t.rels = r.relationships(t)
	}
	return r, nil
}

func (r *Registry) add(s *load.Schema) error {
	if s == nil || s.Name == "" {
		return modelgraph.NewSchemaError("", "", "missing type name", nil)
	}
	module := s.Module
	if module == "" {
		module = r.cfg.defaultModule
	}
	t := &Type{
		Name:     s.Name,
		Module:   module,
		Abstract: s.Abstract,
		Comment:  s.Comment,
		schema:   s,
		qname:    qualify(module, s.Name),
	}
	if prev, ok := r.byQName[t.qname]; ok {
		msg := "duplicate type"
		if prev.schema.Pos != "" {
			msg += " (first declared in " + prev.schema.Pos + ")"
		}
		return modelgraph.NewSchemaError(t.qname, "", msg, nil)
	}
	r.types = append(r.types, t)
	r.byQName[t.qname] = t
	r.bySimple[t.Name] = append(r.bySimple[t.Name], t)
	return nil
}

// linkBases resolves the declared bases of t and registers t as their
// subtype.
func (r *Registry) linkBases(t *Type) error {
	for _, ref := range t.schema.Bases {
		b, err := r.resolve(t.Module, ref)
		if err != nil {
			return modelgraph.NewSchemaError(t.qname, "", "unknown base "+ref, err)
		}
		if slices.Contains(t.bases, b) {
			return modelgraph.NewSchemaError(t.qname, "", "duplicate base "+b.qname, nil)
		}
		t.bases = append(t.bases, b)
		b.subtypes = append(b.subtypes, t)
	}
	return nil
}

// Types returns all types in registration order.
func (r *Registry) Types() []*Type { return slices.Clone(r.types) }

// Roots returns the types without bases, in registration order.
func (r *Registry) Roots() []*Type {
	var roots []*Type
	for _, t := range r.types {
		if len(t.bases) == 0 {
			roots = append(roots, t)
		}
	}
	return roots
}

// Lookup returns the type with the given qualified name, or the only type
// with the given simple name.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, err := r.resolve("", name)
	if err != nil {
		return nil, errors.Wrapf(err, "lookup %s", name)
	}
	return t, nil
}

// resolve maps a type reference, as written in a descriptor declared in
// module, to a registered type: exact qualified name first, then the same
// module, then a registry-wide unique simple name.
func (r *Registry) resolve(module, ref string) (*Type, error) {
	if t, ok := r.byQName[ref]; ok {
		return t, nil
	}
	if module != "" {
		if t, ok := r.byQName[qualify(module, ref)]; ok {
			return t, nil
		}
	}
	switch ts := r.bySimple[ref]; len(ts) {
	case 0:
		return nil, errors.Newf("no type named %q", ref)
	case 1:
		return ts[0], nil
	default:
		return nil, errors.Newf("ambiguous reference %q: %d types share this name", ref, len(ts))
	}
}

// QualifiedName implements graph.Provider.
func (r *Registry) QualifiedName(t *Type) string { return t.qname }

// SimpleName implements graph.Provider.
func (r *Registry) SimpleName(t *Type) string { return t.Name }

// ModuleName implements graph.Provider.
func (r *Registry) ModuleName(t *Type) string { return t.Module }

// Ancestors implements graph.Provider.
func (r *Registry) Ancestors(t *Type) ([]string, error) { return slices.Clone(t.ancestors), nil }

// Subtypes implements graph.Provider.
func (r *Registry) Subtypes(t *Type) []*Type { return slices.Clone(t.subtypes) }

// Relationships implements graph.Provider. Abstract types report
// modelgraph.ErrReflectionUnavailable.
func (r *Registry) Relationships(t *Type) ([]graph.Relationship, error) {
	if t.Abstract {
		return nil, modelgraph.NewReflectionError(t.qname, errors.New("type is abstract"))
	}
	return slices.Clone(t.rels), nil
}

// ResolveTarget implements graph.Provider.
func (r *Registry) ResolveTarget(owner *Type, rel graph.Relationship) (*Type, error) {
	t, err := r.resolve(owner.Module, rel.Target)
	if err != nil {
		return nil, modelgraph.NewTargetError(owner.qname, rel.Name, rel.Target, err)
	}
	return t, nil
}

func qualify(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}
