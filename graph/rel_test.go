package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/modelgraph/graph"
)

func TestRel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		rel  graph.Rel
		name string
		mult string
	}{
		{graph.O2O, "ONETOONE", "1..1"},
		{graph.O2M, "ONETOMANY", "1..*"},
		{graph.M2O, "MANYTOONE", "*..1"},
		{graph.M2M, "MANYTOMANY", "*..*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.rel.String())
			m, ok := tt.rel.Multiplicity()
			assert.True(t, ok)
			assert.Equal(t, tt.mult, m)
			assert.Equal(t, tt.rel, graph.ParseRel(tt.name))
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		assert.Equal(t, "Unknown", graph.Unk.String())
		_, ok := graph.Unk.Multiplicity()
		assert.False(t, ok)
		assert.Equal(t, graph.Unk, graph.ParseRel("MANYTOFEW"))
		assert.Equal(t, graph.Unk, graph.ParseRel(""))
	})

	t.Run("ShortForms", func(t *testing.T) {
		assert.Equal(t, graph.O2O, graph.ParseRel("o2o"))
		assert.Equal(t, graph.O2M, graph.ParseRel(" O2M "))
		assert.Equal(t, graph.M2O, graph.ParseRel("m2o"))
		assert.Equal(t, graph.M2M, graph.ParseRel("ManyToMany"))
	})
}
