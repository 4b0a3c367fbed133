package graph

import (
	"slices"
	"strings"
)

// ComposeLabels sets the label of every edge in s. It must run after all
// relationships have been merged, since a label reflects the final field set.
func ComposeLabels(s *EdgeSet) {
	for _, e := range s.Values() {
		e.Label = composeLabel(e)
	}
}

// composeLabel returns "inheritance" for inheritance edges, and the sorted
// field names followed by the multiplicity otherwise:
//
//	author, editor (*..1)
func composeLabel(e *Edge) string {
	if e.IsInheritance() {
		return Inheritance
	}
	names := e.Properties.Fields.Names()
	slices.Sort(names)
	label := strings.Join(names, ", ")
	if m := e.Properties.Multiplicity; m != "" {
		label += " (" + m + ")"
	}
	return label
}
