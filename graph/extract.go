package graph

import (
	"go.uber.org/zap"

	"github.com/syssam/modelgraph"
)

// Extractor builds graphs from the types exposed by a Provider. An
// Extractor holds no per-call state and may be shared between goroutines.
type Extractor[T any] struct {
	p   Provider[T]
	cfg *Config
	log *zap.Logger
}

// NewExtractor returns an extractor reading metadata from p.
func NewExtractor[T any](p Provider[T], opts ...Option) (*Extractor[T], error) {
	if p == nil {
		return nil, modelgraph.NewConfigError("Provider", nil, "provider cannot be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{p: p, cfg: cfg, log: cfg.Logger.Named("graph.extractor")}, nil
}

// Config returns the extractor settings.
func (x *Extractor[T]) Config() Config { return *x.cfg }

// Extract returns the graph of all types reachable from root.
func Extract[T any](p Provider[T], root T, opts ...Option) (*Graph, error) {
	x, err := NewExtractor(p, opts...)
	if err != nil {
		return nil, err
	}
	return x.Extract(root)
}

// Extract runs the vertex pass, the edge pass and label composition.
// The edge pass starts at root and then covers every other type the
// vertex pass discovered, so relationship edges of types reached only
// through relationships are present too.
func (x *Extractor[T]) Extract(root T) (*Graph, error) {
	w := &vertexWalk[T]{x: x, set: newVertexSet()}
	if err := w.visit(root); err != nil {
		return nil, err
	}
	edges, err := x.Edges(w.nodes...)
	if err != nil {
		return nil, err
	}
	ComposeLabels(edges)
	x.log.Debug("graph extracted",
		zap.String("root", x.p.QualifiedName(root)),
		zap.Int("vertices", w.set.Len()),
		zap.Int("edges", edges.Len()),
	)
	return &Graph{Vertices: w.set.Values(), Edges: edges.Values()}, nil
}

// Vertices returns one vertex per distinct type reachable from root,
// in discovery order.
func (x *Extractor[T]) Vertices(root T) (*VertexSet, error) {
	w := &vertexWalk[T]{x: x, set: newVertexSet()}
	if err := w.visit(root); err != nil {
		return nil, err
	}
	return w.set, nil
}

// vertexWalk is the state of one vertex pass.
type vertexWalk[T any] struct {
	x     *Extractor[T]
	set   *VertexSet
	nodes []T
}

func (w *vertexWalk[T]) visit(t T) error {
	p := w.x.p
	qname := p.QualifiedName(t)
	id := w.x.cfg.Hasher.Hash(qname)
	if _, ok := w.set.Get(id); ok {
		return nil
	}
	simple := p.SimpleName(t)
	label := simple
	if w.x.cfg.FQLabels {
		label = qname
	}
	bases, err := p.Ancestors(t)
	if err = w.x.tolerate(qname, err); err != nil {
		return err
	}
	w.set.idx.put(id, &Vertex{
		ID:                   id,
		Label:                label,
		SearchableComponents: []string{simple},
		Properties: VertexProperties{
			ModelName:   simple,
			ModuleName:  p.ModuleName(t),
			BaseClasses: append([]string{}, bases...),
		},
	})
	w.nodes = append(w.nodes, t)

	if w.x.cfg.Descent == Relationships {
		rels, err := w.x.relationships(t, qname)
		if err != nil {
			return err
		}
		for _, r := range rels {
			target, err := w.x.resolve(t, qname, r)
			if err != nil {
				return err
			}
			if err := w.visit(target); err != nil {
				return err
			}
		}
	}
	for _, sub := range p.Subtypes(t) {
		if err := w.visit(sub); err != nil {
			return err
		}
	}
	return nil
}

// Edges returns the relationship and inheritance edges of the given roots
// and their transitive subtypes. Each type's outgoing edges are computed
// once, however many roots or parents reach it. Under SubtypesOnly descent
// only inheritance edges are produced. Labels are left empty;
// see ComposeLabels.
func (x *Extractor[T]) Edges(roots ...T) (*EdgeSet, error) {
	w := &edgeWalk[T]{x: x, set: newEdgeSet(), visited: make(map[string]struct{})}
	for _, root := range roots {
		if err := w.visit(root); err != nil {
			return nil, err
		}
	}
	return w.set, nil
}

// edgeWalk is the state of one edge pass.
type edgeWalk[T any] struct {
	x       *Extractor[T]
	set     *EdgeSet
	visited map[string]struct{}
}

func (w *edgeWalk[T]) visit(t T) error {
	p, hash := w.x.p, w.x.cfg.Hasher.Hash
	qname := p.QualifiedName(t)
	if _, ok := w.visited[qname]; ok {
		return nil
	}
	w.visited[qname] = struct{}{}
	source := hash(qname)

	if w.x.cfg.Descent == Relationships {
		if err := w.relationships(t, qname, source); err != nil {
			return err
		}
	}

	subs := p.Subtypes(t)
	for _, sub := range subs {
		dest := p.QualifiedName(sub)
		id := hash(EdgeKey(Inheritance, qname, dest))
		if _, ok := w.set.Get(id); ok {
			continue
		}
		w.set.idx.put(id, &Edge{
			ID:     id,
			Source: source,
			Dest:   hash(dest),
			Properties: EdgeProperties{
				Type:         Inheritance,
				Multiplicity: InheritanceMultiplicity,
			},
		})
	}
	for _, sub := range subs {
		if err := w.visit(sub); err != nil {
			return err
		}
	}
	return nil
}

// relationships adds the relationship edges of t, merging relationships
// that share a (kind, source, dest) triple.
func (w *edgeWalk[T]) relationships(t T, qname, source string) error {
	p, hash := w.x.p, w.x.cfg.Hasher.Hash
	rels, err := w.x.relationships(t, qname)
	if err != nil {
		return err
	}
	for _, r := range rels {
		target, err := w.x.resolve(t, qname, r)
		if err != nil {
			return err
		}
		mult, ok := r.Rel.Multiplicity()
		if !ok {
			return modelgraph.NewMultiplicityError(qname, r.Name, r.Rel.String())
		}
		dest := p.QualifiedName(target)
		fd := Field{
			Name:          r.Name,
			BackReference: backReference(r.BackRef),
			SourceColumns: append([]string{}, r.LocalColumns...),
			DestColumns:   append([]string{}, r.RemoteColumns...),
		}
		id := hash(EdgeKey(r.Rel.String(), qname, dest))
		if e, ok := w.set.Get(id); ok {
			e.Properties.Fields.Set(fd)
			continue
		}
		w.set.idx.put(id, &Edge{
			ID:     id,
			Source: source,
			Dest:   hash(dest),
			Properties: EdgeProperties{
				Type:              r.Rel.String(),
				IsSelfReferential: r.SelfReferential,
				Multiplicity:      mult,
				Fields:            NewFields(fd),
			},
		})
	}
	return nil
}

func backReference(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

// relationships returns the relationships of t, applying the reflection
// policy.
func (x *Extractor[T]) relationships(t T, qname string) ([]Relationship, error) {
	rels, err := x.p.Relationships(t)
	if err = x.tolerate(qname, err); err != nil {
		return nil, err
	}
	return rels, nil
}

// tolerate drops reflection errors under the lenient policy.
func (x *Extractor[T]) tolerate(qname string, err error) error {
	if err == nil {
		return nil
	}
	if x.cfg.Policy == Lenient && modelgraph.IsReflectionUnavailable(err) {
		x.log.Debug("reflection unavailable, treating as unmapped", zap.String("type", qname), zap.Error(err))
		return nil
	}
	return err
}

// resolve returns the concrete target of r. Provider errors are reported
// as unresolved targets.
func (x *Extractor[T]) resolve(owner T, qname string, r Relationship) (T, error) {
	target, err := x.p.ResolveTarget(owner, r)
	if err != nil && !modelgraph.IsUnresolvedTarget(err) {
		err = modelgraph.NewTargetError(qname, r.Name, r.Target, err)
	}
	return target, err
}
