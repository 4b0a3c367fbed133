package registry

import (
	"slices"

	"github.com/go-openapi/inflect"

	"github.com/syssam/modelgraph/graph"
	"github.com/syssam/modelgraph/load"
)

// relationships builds the relationship list of t from its descriptor.
func (r *Registry) relationships(t *Type) []graph.Relationship {
	rels := make([]graph.Relationship, 0, len(t.schema.Edges))
	for _, e := range t.schema.Edges {
		target, _ := r.resolve(t.Module, e.Type)
		partner := r.partner(t, target, e)
		rel := relation(t, target, e, partner)
		local, remote := columns(t, target, e, partner, rel)
		rels = append(rels, graph.Relationship{
			Name:            e.Name,
			Target:          e.Type,
			Rel:             rel,
			LocalColumns:    local,
			RemoteColumns:   remote,
			BackRef:         backRef(e, partner),
			SelfReferential: target != nil && target == t,
		})
	}
	return rels
}

// partner returns the edge on the other side of e, if any. For an assoc
// edge that is its inline Ref, or an inverse edge on the target whose
// RefName points back at e. For an inverse edge it is the assoc edge on
// the target named by RefName.
func (r *Registry) partner(owner, target *Type, e *load.Edge) *load.Edge {
	if !e.Inverse && e.Ref != nil {
		return e.Ref
	}
	if target == nil {
		return nil
	}
	for _, pe := range target.schema.Edges {
		if pe == e {
			continue
		}
		pt, err := r.resolve(target.Module, pe.Type)
		if err != nil || pt != owner {
			continue
		}
		switch {
		case e.Inverse && !pe.Inverse && (pe.Name == e.RefName || pe.Ref != nil && pe.Ref.Name == e.Name):
			return pe
		case !e.Inverse && pe.Inverse && pe.RefName == e.Name:
			return pe
		}
	}
	return nil
}

// relation returns the explicit or inferred direction of e.
func relation(owner, target *Type, e, partner *load.Edge) graph.Rel {
	if e.Relation != "" {
		return graph.ParseRel(e.Relation)
	}
	if partner == nil {
		switch {
		case e.Inverse && e.Unique:
			return graph.M2O
		case e.Inverse:
			return graph.M2M
		case target != nil && target == owner && e.Unique:
			return graph.O2O
		case target != nil && target == owner:
			return graph.M2M
		case e.Unique:
			return graph.M2O
		default:
			return graph.O2M
		}
	}
	assoc, inverse := e, partner
	if e.Inverse {
		assoc, inverse = partner, e
	}
	var rel graph.Rel
	switch {
	case assoc.Unique && inverse.Unique:
		rel = graph.O2O
	case !assoc.Unique && inverse.Unique:
		rel = graph.O2M
	case assoc.Unique && !inverse.Unique:
		rel = graph.M2O
	default:
		rel = graph.M2M
	}
	if e.Inverse {
		rel = flip(rel)
	}
	return rel
}

func flip(rel graph.Rel) graph.Rel {
	switch rel {
	case graph.O2M:
		return graph.M2O
	case graph.M2O:
		return graph.O2M
	default:
		return rel
	}
}

// columns returns the local and remote column mapping of e. Explicit
// columns in the descriptor take precedence over derived ones.
func columns(owner, target *Type, e, partner *load.Edge, rel graph.Rel) (local, remote []string) {
	local, remote = derive(owner, target, e, partner, rel)
	if len(e.Columns) > 0 {
		local = slices.Clone(e.Columns)
	}
	if len(e.RefColumns) > 0 {
		remote = slices.Clone(e.RefColumns)
	}
	return local, remote
}

func derive(owner, target *Type, e, partner *load.Edge, rel graph.Rel) (local, remote []string) {
	switch rel {
	case graph.M2O:
		return []string{column(e.Name)}, []string{"id"}
	case graph.O2O:
		if e.Inverse && partner != nil {
			return []string{"id"}, []string{column(partner.Name)}
		}
		return []string{column(e.Name)}, []string{"id"}
	case graph.O2M:
		if partner != nil {
			return []string{"id"}, []string{column(partner.Name)}
		}
		return []string{"id"}, []string{column(inflect.Singularize(owner.Name))}
	case graph.M2M:
		other := e.Name
		if target != nil && target != owner {
			other = target.Name
		}
		return []string{"id"}, []string{
			column(inflect.Singularize(owner.Name)),
			column(inflect.Singularize(other)),
		}
	default:
		return []string{}, []string{}
	}
}

// column returns the foreign-key column name for name.
func column(name string) string {
	return inflect.Underscore(name) + "_id"
}

// backRef returns the name of the relationship on the other side of e.
func backRef(e, partner *load.Edge) string {
	switch {
	case e.Inverse && e.RefName != "":
		return e.RefName
	case partner != nil:
		return partner.Name
	default:
		return ""
	}
}
