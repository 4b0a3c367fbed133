// Package graph extracts a vertex/edge graph from an object model with
// associations and inheritance.
//
// The model is read through a Provider, which exposes for each type its
// qualified name, immediate subtypes, linearized ancestors and declared
// relationships. The registry package implements Provider over loaded
// type descriptors; any other source can implement it as well.
//
// # Graph Structure
//
//	type Graph struct {
//	    Vertices []*Vertex // one per distinct model type
//	    Edges    []*Edge   // relationships and inheritance links
//	}
//
// Vertex ids are the hash of the qualified type name. Edge ids are the hash
// of "TYPE(source,dest)", where TYPE is the relation kind or "inheritance".
// The same Hasher is used for both, so edge endpoints always match vertex
// ids.
//
// # Relation Kinds
//
//   - O2O (ONETOONE):   1..1
//   - O2M (ONETOMANY):  1..*
//   - M2O (MANYTOONE):  *..1
//   - M2M (MANYTOMANY): *..*
//
// Inheritance edges are always 1..1.
//
// # Merging
//
// Relationships sharing the same (kind, source, dest) triple fold into one
// edge. Their metadata is kept under Edge.Properties.Fields, keyed by
// relationship name. Two M2O relationships "author" and "editor" from
// Article to Person produce a single edge labeled:
//
//	author, editor (*..1)
//
// # Usage
//
//	reg, err := registry.New(schemas)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root, err := reg.Lookup("Base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := graph.Extract[*registry.Type](reg, root, graph.WithFQLabels(true))
//
// Independent extractions may run concurrently; see ExtractAll.
package graph
