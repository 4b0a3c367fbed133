package graph

// Relationship describes one named association declared on a model type.
type Relationship struct {
	// Name of the relationship on its owner.
	Name string
	// Target is the declared reference to the target type. It may be a
	// forward reference; use Provider.ResolveTarget to obtain the type.
	Target string
	// Rel is the direction classification.
	Rel Rel
	// LocalColumns and RemoteColumns hold the column mapping of the
	// relationship on the owner and target side.
	LocalColumns  []string
	RemoteColumns []string
	// BackRef is the name of the back-reference, if any.
	BackRef string
	// SelfReferential is set when owner and target are the same type.
	SelfReferential bool
}

// Provider exposes the model metadata consumed by the extractor. T is the
// provider's type handle. Implementations must be safe for concurrent reads
// when used with ExtractAll.
type Provider[T any] interface {
	// QualifiedName returns the module-qualified, unique name of t.
	QualifiedName(t T) string
	// SimpleName returns the unqualified name of t.
	SimpleName(t T) string
	// ModuleName returns the module (namespace) t is declared in.
	ModuleName(t T) string
	// Ancestors returns the simple names of t's linearized ancestors,
	// most-derived first, t included.
	Ancestors(t T) ([]string, error)
	// Relationships returns the relationships declared on t. An error
	// matching modelgraph.ErrReflectionUnavailable means t is not mapped.
	Relationships(t T) ([]Relationship, error)
	// Subtypes returns the immediate declared subtypes of t.
	Subtypes(t T) []T
	// ResolveTarget returns the concrete target type of r declared on owner.
	ResolveTarget(owner T, r Relationship) (T, error)
}
