package graph

import "strings"

// Rel is the direction classification of a relationship.
type Rel int

// Relation types.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one.
	O2M            // One to many.
	M2O            // Many to one (inverse perspective for O2M).
	M2M            // Many to many.
)

// Inheritance is the edge type and label of parent/subtype edges.
const Inheritance = "inheritance"

// multiplicities maps each relation to its cardinality notation.
var multiplicities = map[Rel]string{
	M2M: "*..*",
	M2O: "*..1",
	O2M: "1..*",
	O2O: "1..1",
}

// InheritanceMultiplicity is the multiplicity of every inheritance edge.
const InheritanceMultiplicity = "1..1"

// String returns the relation name used in edge keys and output.
func (r Rel) String() string {
	s := "Unknown"
	switch r {
	case O2O:
		s = "ONETOONE"
	case O2M:
		s = "ONETOMANY"
	case M2O:
		s = "MANYTOONE"
	case M2M:
		s = "MANYTOMANY"
	}
	return s
}

// Multiplicity returns the cardinality notation of r. The second
// result is false for Unk or out-of-range values.
func (r Rel) Multiplicity() (string, bool) {
	m, ok := multiplicities[r]
	return m, ok
}

// ParseRel parses a relation name. Both the long form ("MANYTOONE") and
// the short form ("M2O") are accepted, case-insensitively. Anything else
// yields Unk.
func ParseRel(s string) Rel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ONETOONE", "O2O":
		return O2O
	case "ONETOMANY", "O2M":
		return O2M
	case "MANYTOONE", "M2O":
		return M2O
	case "MANYTOMANY", "M2M":
		return M2M
	}
	return Unk
}
