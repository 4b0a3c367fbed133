package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/graph"
	"github.com/syssam/modelgraph/load"
	"github.com/syssam/modelgraph/registry"
)

func mustNew(t *testing.T, schemas []*load.Schema, opts ...registry.Option) *registry.Registry {
	t.Helper()
	r, err := registry.New(schemas, opts...)
	require.NoError(t, err)
	return r
}

func mustLookup(t *testing.T, r *registry.Registry, name string) *registry.Type {
	t.Helper()
	typ, err := r.Lookup(name)
	require.NoError(t, err)
	return typ
}

func relByName(t *testing.T, r *registry.Registry, typ *registry.Type, name string) graph.Relationship {
	t.Helper()
	rels, err := r.Relationships(typ)
	require.NoError(t, err)
	for _, rel := range rels {
		if rel.Name == name {
			return rel
		}
	}
	t.Fatalf("relationship %s.%s not found", typ, name)
	return graph.Relationship{}
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("QualifiedNames", func(t *testing.T) {
		r := mustNew(t, []*load.Schema{
			{Name: "Person", Module: "app.models"},
			{Name: "Tag"},
		})
		p := mustLookup(t, r, "app.models.Person")
		assert.Equal(t, "app.models.Person", r.QualifiedName(p))
		assert.Equal(t, "Person", r.SimpleName(p))
		assert.Equal(t, "app.models", r.ModuleName(p))
		assert.Same(t, p, mustLookup(t, r, "Person"))

		tag := mustLookup(t, r, "Tag")
		assert.Equal(t, "Tag", tag.QualifiedName())
		assert.Empty(t, r.ModuleName(tag))
		assert.Len(t, r.Types(), 2)
	})

	t.Run("DefaultModule", func(t *testing.T) {
		r := mustNew(t, []*load.Schema{{Name: "Tag"}, {Name: "User", Module: "auth"}}, registry.WithDefaultModule("blog"))
		assert.Equal(t, "blog.Tag", mustLookup(t, r, "Tag").QualifiedName())
		assert.Equal(t, "auth.User", mustLookup(t, r, "User").QualifiedName())
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := registry.New([]*load.Schema{
			{Name: "User", Module: "app", Pos: "a.yaml"},
			{Name: "User", Module: "app", Pos: "b.yaml"},
		})
		require.Error(t, err)
		assert.True(t, modelgraph.IsSchemaError(err))
		assert.Contains(t, err.Error(), "a.yaml")
	})

	t.Run("MissingName", func(t *testing.T) {
		_, err := registry.New([]*load.Schema{{}})
		assert.True(t, modelgraph.IsSchemaError(err))
	})

	t.Run("UnknownBase", func(t *testing.T) {
		_, err := registry.New([]*load.Schema{{Name: "Dog", Bases: []string{"Animal"}}})
		require.Error(t, err)
		assert.True(t, modelgraph.IsSchemaError(err))
		assert.Contains(t, err.Error(), "unknown base Animal")
	})

	t.Run("Cycle", func(t *testing.T) {
		_, err := registry.New([]*load.Schema{
			{Name: "A", Bases: []string{"B"}},
			{Name: "B", Bases: []string{"A"}},
		})
		require.Error(t, err)
		assert.True(t, modelgraph.IsSchemaError(err))
		assert.Contains(t, err.Error(), "inheritance cycle")
	})

	t.Run("InconsistentHierarchy", func(t *testing.T) {
		_, err := registry.New([]*load.Schema{
			{Name: "X"},
			{Name: "Y"},
			{Name: "A", Bases: []string{"X", "Y"}},
			{Name: "B", Bases: []string{"Y", "X"}},
			{Name: "C", Bases: []string{"A", "B"}},
		})
		require.Error(t, err)
		assert.True(t, modelgraph.IsSchemaError(err))
		assert.Contains(t, err.Error(), "inconsistent hierarchy")
	})

	t.Run("EmptyUniversalBase", func(t *testing.T) {
		_, err := registry.New(nil, registry.WithUniversalBase(""))
		assert.True(t, modelgraph.IsConfigError(err))
	})
}

func TestLookup(t *testing.T) {
	t.Parallel()
	r := mustNew(t, []*load.Schema{
		{Name: "Person", Module: "a"},
		{Name: "Person", Module: "b"},
	})
	_, err := r.Lookup("Person")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = r.Lookup("Nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no type named "Nobody"`)

	assert.Equal(t, "b", mustLookup(t, r, "b.Person").Module)
}

func TestHierarchy(t *testing.T) {
	t.Parallel()
	r := mustNew(t, []*load.Schema{
		{Name: "A"},
		{Name: "B", Bases: []string{"A"}},
		{Name: "C", Bases: []string{"A"}},
		{Name: "D", Bases: []string{"B", "C"}},
	}, registry.WithUniversalBase("object"))

	a, d := mustLookup(t, r, "A"), mustLookup(t, r, "D")
	anc, err := r.Ancestors(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C", "A", "object"}, anc)

	anc, err = r.Ancestors(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "object"}, anc)

	subs := r.Subtypes(a)
	require.Len(t, subs, 2)
	assert.Equal(t, "B", subs[0].Name)
	assert.Equal(t, "C", subs[1].Name)
	assert.Len(t, d.Bases(), 2)
	assert.Empty(t, r.Subtypes(d))

	roots := r.Roots()
	require.Len(t, roots, 1)
	assert.Same(t, a, roots[0])
}

func TestAncestorsReturnCopy(t *testing.T) {
	t.Parallel()
	r := mustNew(t, []*load.Schema{{Name: "A"}})
	a := mustLookup(t, r, "A")
	anc, _ := r.Ancestors(a)
	anc[0] = "mutated"
	anc, _ = r.Ancestors(a)
	assert.Equal(t, []string{"A"}, anc)
}

func TestRelationInference(t *testing.T) {
	t.Parallel()
	r := mustNew(t, []*load.Schema{
		{
			Name: "User",
			Edges: []*load.Edge{
				{Name: "pets", Type: "Pet"},
				{Name: "card", Type: "Card", Unique: true, Ref: &load.Edge{Name: "owner", Unique: true}},
				{Name: "friends", Type: "User"},
				{Name: "spouse", Type: "User", Unique: true},
				{Name: "groups", Type: "Group"},
			},
		},
		{
			Name: "Pet",
			Edges: []*load.Edge{
				{Name: "owner", Type: "User", Inverse: true, RefName: "pets", Unique: true},
			},
		},
		{Name: "Card"},
		{
			Name: "Group",
			Edges: []*load.Edge{
				{Name: "users", Type: "User", Inverse: true, RefName: "groups"},
			},
		},
		{
			Name: "Article",
			Edges: []*load.Edge{
				{Name: "author", Type: "Person", Unique: true},
				{Name: "tags", Type: "Tag"},
			},
		},
		{Name: "Person"},
		{Name: "Tag"},
	})
	user, pet, group, article := mustLookup(t, r, "User"), mustLookup(t, r, "Pet"), mustLookup(t, r, "Group"), mustLookup(t, r, "Article")

	tests := []struct {
		name   string
		owner  *registry.Type
		edge   string
		rel    graph.Rel
		local  []string
		remote []string
		back   string
		self   bool
	}{
		{"assoc with inverse edge", user, "pets", graph.O2M, []string{"id"}, []string{"owner_id"}, "owner", false},
		{"inverse edge", pet, "owner", graph.M2O, []string{"owner_id"}, []string{"id"}, "pets", false},
		{"inline inverse", user, "card", graph.O2O, []string{"card_id"}, []string{"id"}, "owner", false},
		{"self many", user, "friends", graph.M2M, []string{"id"}, []string{"user_id", "friend_id"}, "", true},
		{"self unique", user, "spouse", graph.O2O, []string{"spouse_id"}, []string{"id"}, "", true},
		{"many to many assoc", user, "groups", graph.M2M, []string{"id"}, []string{"user_id", "group_id"}, "users", false},
		{"many to many inverse", group, "users", graph.M2M, []string{"id"}, []string{"group_id", "user_id"}, "groups", false},
		{"unique without inverse", article, "author", graph.M2O, []string{"author_id"}, []string{"id"}, "", false},
		{"non-unique without inverse", article, "tags", graph.O2M, []string{"id"}, []string{"article_id"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := relByName(t, r, tt.owner, tt.edge)
			assert.Equal(t, tt.rel, rel.Rel)
			assert.Equal(t, tt.local, rel.LocalColumns)
			assert.Equal(t, tt.remote, rel.RemoteColumns)
			assert.Equal(t, tt.back, rel.BackRef)
			assert.Equal(t, tt.self, rel.SelfReferential)
		})
	}
}

func TestExplicitRelation(t *testing.T) {
	t.Parallel()
	r := mustNew(t, []*load.Schema{
		{
			Name: "Article",
			Edges: []*load.Edge{
				{Name: "tags", Type: "Tag", Relation: "MANYTOFEW"},
				{Name: "editor", Type: "Person", Relation: "m2o", Columns: []string{"editor_ref"}, RefColumns: []string{"uid"}},
			},
		},
		{Name: "Tag"},
		{Name: "Person"},
	})
	article := mustLookup(t, r, "Article")
	assert.Equal(t, graph.Unk, relByName(t, r, article, "tags").Rel)

	editor := relByName(t, r, article, "editor")
	assert.Equal(t, graph.M2O, editor.Rel)
	assert.Equal(t, []string{"editor_ref"}, editor.LocalColumns)
	assert.Equal(t, []string{"uid"}, editor.RemoteColumns)
}

func TestAbstract(t *testing.T) {
	t.Parallel()
	r := mustNew(t, []*load.Schema{
		{Name: "Base", Abstract: true, Edges: []*load.Edge{{Name: "owner", Type: "Person", Unique: true}}},
		{Name: "Person", Bases: []string{"Base"}},
	})
	_, err := r.Relationships(mustLookup(t, r, "Base"))
	require.Error(t, err)
	assert.True(t, modelgraph.IsReflectionUnavailable(err))

	rels, err := r.Relationships(mustLookup(t, r, "Person"))
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestResolveTarget(t *testing.T) {
	t.Parallel()
	r := mustNew(t, []*load.Schema{
		{Name: "Person", Module: "a"},
		{Name: "Person", Module: "b"},
		{Name: "Article", Module: "a", Edges: []*load.Edge{
			{Name: "author", Type: "Person", Unique: true},
			{Name: "reviewer", Type: "b.Person", Unique: true},
			{Name: "ghost", Type: "Ghost", Unique: true},
		}},
		{Name: "Note", Module: "c", Edges: []*load.Edge{{Name: "author", Type: "Person", Unique: true}}},
	})
	article := mustLookup(t, r, "a.Article")

	target, err := r.ResolveTarget(article, relByName(t, r, article, "author"))
	require.NoError(t, err)
	assert.Equal(t, "a.Person", target.QualifiedName())

	target, err = r.ResolveTarget(article, relByName(t, r, article, "reviewer"))
	require.NoError(t, err)
	assert.Equal(t, "b.Person", target.QualifiedName())

	_, err = r.ResolveTarget(article, relByName(t, r, article, "ghost"))
	require.Error(t, err)
	assert.True(t, modelgraph.IsUnresolvedTarget(err))

	note := mustLookup(t, r, "Note")
	_, err = r.ResolveTarget(note, relByName(t, r, note, "author"))
	require.Error(t, err)
	assert.True(t, modelgraph.IsUnresolvedTarget(err))
	assert.Contains(t, err.Error(), "ambiguous")
}
