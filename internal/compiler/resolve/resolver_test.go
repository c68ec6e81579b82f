package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-framework/strata/internal/compiler/diag"
	"github.com/strata-framework/strata/internal/compiler/ir"
)

func newClass(name, table string, fields ...*ir.Field) *ir.ClassDefinition {
	return ir.NewClassDefinition(ir.ModelIdentity{
		FileName:       name + ".go",
		SourceFileName: "protocol/" + name + ".yaml",
		ClassName:      name,
	}, fields, table, nil)
}

func typeRef(name string) *ir.TypeDefinition {
	return &ir.TypeDefinition{Name: name}
}

func TestTypes(t *testing.T) {
	t.Run("scalars resolve without alias", func(t *testing.T) {
		field := &ir.Field{Name: "name", Type: typeRef("String")}
		u := NewUniverse([]ModuleModels{{Name: "", Models: []ir.SerializableModel{newClass("Example", "", field)}}})

		collector := diag.NewCollector()
		Types(u, collector)
		assert.Equal(t, 0, collector.Len())
		assert.Nil(t, field.Type.ModuleAlias)
	})

	t.Run("entity references get the declaring module alias", func(t *testing.T) {
		field := &ir.Field{Name: "author", Type: typeRef("Author")}
		post := newClass("Post", "post", field)
		author := newClass("Author", "author", &ir.Field{Name: "name", Type: typeRef("String")})

		u := NewUniverse([]ModuleModels{
			{Name: "", Models: []ir.SerializableModel{post}},
			{Name: "people", Models: []ir.SerializableModel{author}},
		})

		collector := diag.NewCollector()
		Types(u, collector)
		assert.Equal(t, 0, collector.Len())
		require.NotNil(t, field.Type.ModuleAlias)
		assert.Equal(t, "people", *field.Type.ModuleAlias)
	})

	t.Run("unresolved type names the field", func(t *testing.T) {
		field := &ir.Field{Name: "author", Type: typeRef("Nobody"), Span: diag.LineSpan(2, 2, 8)}
		u := NewUniverse([]ModuleModels{{Name: "", Models: []ir.SerializableModel{newClass("Post", "", field)}}})

		collector := diag.NewCollector()
		Types(u, collector)
		require.Len(t, collector.Errors(), 1)
		d := collector.Errors()[0]
		assert.Equal(t, `The type "Nobody" of field "author" was not found.`, d.Message)
		assert.Equal(t, diag.LineSpan(2, 2, 8), d.Span)
		assert.Nil(t, field.Type.ModuleAlias)
	})

	t.Run("nested generics resolve", func(t *testing.T) {
		inner := typeRef("Tag")
		field := &ir.Field{Name: "tags", Type: &ir.TypeDefinition{Name: "List", Generics: []*ir.TypeDefinition{inner}}}
		tag := newClass("Tag", "tag", &ir.Field{Name: "label", Type: typeRef("String")})

		u := NewUniverse([]ModuleModels{{Name: "", Models: []ir.SerializableModel{newClass("Post", "", field), tag}}})

		collector := diag.NewCollector()
		Types(u, collector)
		assert.Equal(t, 0, collector.Len())
		require.NotNil(t, inner.ModuleAlias)
		assert.Equal(t, "", *inner.ModuleAlias)
	})

	t.Run("wrong container arity", func(t *testing.T) {
		field := &ir.Field{Name: "pairs", Type: &ir.TypeDefinition{Name: "Map", Generics: []*ir.TypeDefinition{typeRef("String")}}}
		u := NewUniverse([]ModuleModels{{Name: "", Models: []ir.SerializableModel{newClass("Post", "", field)}}})

		collector := diag.NewCollector()
		Types(u, collector)
		require.Len(t, collector.Errors(), 1)
		assert.Equal(t, `The type "Map" of field "pairs" expects 2 type argument(s), found 1.`, collector.Errors()[0].Message)
	})

	t.Run("circular references resolve in either order", func(t *testing.T) {
		build := func(flip bool) (*ir.TypeDefinition, *ir.TypeDefinition) {
			xField := &ir.Field{Name: "other", Type: typeRef("Y")}
			yField := &ir.Field{Name: "other", Type: typeRef("X")}
			x := newClass("X", "x", xField)
			y := newClass("Y", "y", yField)

			models := []ir.SerializableModel{x, y}
			if flip {
				models = []ir.SerializableModel{y, x}
			}
			u := NewUniverse([]ModuleModels{{Name: "", Models: models}})
			collector := diag.NewCollector()
			Types(u, collector)
			require.Equal(t, 0, collector.Len())
			return xField.Type, yField.Type
		}

		xt1, yt1 := build(false)
		xt2, yt2 := build(true)
		assert.Equal(t, xt1, xt2)
		assert.Equal(t, yt1, yt2)
		require.NotNil(t, xt1.ModuleAlias)
		require.NotNil(t, yt1.ModuleAlias)
	})
}

func TestRelations(t *testing.T) {
	resolveAll := func(modules []ModuleModels) *diag.Collector {
		u := NewUniverse(modules)
		collector := diag.NewCollector()
		Types(u, collector)
		Relations(u, collector)
		return collector
	}

	t.Run("valid one directional relation", func(t *testing.T) {
		field := &ir.Field{
			Name:     "author",
			Type:     typeRef("Author"),
			Relation: &ir.Relation{OnDelete: ir.OnDeleteCascade},
		}
		post := newClass("Post", "post", field)
		author := newClass("Author", "author", &ir.Field{Name: "name", Type: typeRef("String")})

		collector := resolveAll([]ModuleModels{{Name: "", Models: []ir.SerializableModel{post, author}}})
		assert.Equal(t, 0, collector.Len())
		assert.Equal(t, "Author", field.Relation.Target)
	})

	t.Run("relation to scalar is rejected", func(t *testing.T) {
		field := &ir.Field{
			Name:     "name",
			Type:     typeRef("String"),
			Relation: &ir.Relation{OnDelete: ir.OnDeleteRestrict},
		}
		post := newClass("Post", "post", field)

		collector := resolveAll([]ModuleModels{{Name: "", Models: []ir.SerializableModel{post}}})
		require.Len(t, collector.Errors(), 1)
		assert.Nil(t, field.Relation)
	})

	t.Run("relation to class without table is rejected", func(t *testing.T) {
		field := &ir.Field{
			Name:     "author",
			Type:     typeRef("Author"),
			Relation: &ir.Relation{OnDelete: ir.OnDeleteRestrict},
		}
		post := newClass("Post", "post", field)
		author := newClass("Author", "", &ir.Field{Name: "name", Type: typeRef("String")})

		collector := resolveAll([]ModuleModels{{Name: "", Models: []ir.SerializableModel{post, author}}})
		require.Len(t, collector.Errors(), 1)
		assert.Equal(t, `The relation on field "author" references "Author", which has no table.`, collector.Errors()[0].Message)
	})

	t.Run("paired relations must agree on delete behavior", func(t *testing.T) {
		postAuthor := &ir.Field{
			Name:     "author",
			Type:     typeRef("Author"),
			Relation: &ir.Relation{OnDelete: ir.OnDeleteCascade},
		}
		authorPosts := &ir.Field{
			Name:     "posts",
			Type:     &ir.TypeDefinition{Name: "List", Generics: []*ir.TypeDefinition{typeRef("Post")}},
			Relation: &ir.Relation{OnDelete: ir.OnDeleteRestrict},
		}
		post := newClass("Post", "post", postAuthor)
		author := newClass("Author", "author", authorPosts)

		collector := resolveAll([]ModuleModels{{Name: "", Models: []ir.SerializableModel{post, author}}})
		// Both directions observe the mismatch.
		require.Len(t, collector.Errors(), 2)
		assert.Contains(t, collector.Errors()[0].Message, "onDelete=Cascade")
		assert.Contains(t, collector.Errors()[0].Message, "onDelete=Restrict")
	})

	t.Run("matching paired relations are silent", func(t *testing.T) {
		postAuthor := &ir.Field{
			Name:     "author",
			Type:     typeRef("Author"),
			Relation: &ir.Relation{OnDelete: ir.OnDeleteCascade},
		}
		authorPosts := &ir.Field{
			Name:     "posts",
			Type:     &ir.TypeDefinition{Name: "List", Generics: []*ir.TypeDefinition{typeRef("Post")}},
			Relation: &ir.Relation{OnDelete: ir.OnDeleteCascade},
		}
		post := newClass("Post", "post", postAuthor)
		author := newClass("Author", "author", authorPosts)

		collector := resolveAll([]ModuleModels{{Name: "", Models: []ir.SerializableModel{post, author}}})
		assert.Equal(t, 0, collector.Len())
	})
}

func TestIndexes(t *testing.T) {
	validate := func(class *ir.ClassDefinition) *diag.Collector {
		u := NewUniverse([]ModuleModels{{Name: "", Models: []ir.SerializableModel{class}}})
		collector := diag.NewCollector()
		Indexes(u, collector)
		return collector
	}

	slug := &ir.Field{Name: "slug", Type: typeRef("String")}

	t.Run("field must exist", func(t *testing.T) {
		class := newClass("Post", "post", slug)
		class.Indexes = append(class.Indexes, &ir.Index{Name: "post_idx", Fields: []string{"missing"}, Kind: ir.IndexBTree})

		collector := validate(class)
		require.Len(t, collector.Errors(), 1)
		assert.Equal(t, `The index "post_idx" references the field "missing", which does not exist on "Post".`, collector.Errors()[0].Message)
	})

	t.Run("distance function requires vector index", func(t *testing.T) {
		fn := ir.DistanceCosine
		class := newClass("Post", "post", slug)
		class.Indexes = append(class.Indexes, &ir.Index{
			Name: "post_idx", Fields: []string{"slug"}, Kind: ir.IndexBTree, DistanceFunction: &fn,
		})

		collector := validate(class)
		require.Len(t, collector.Errors(), 1)
		assert.Contains(t, collector.Errors()[0].Message, "distance function")
	})

	t.Run("parameters must match the index kind", func(t *testing.T) {
		class := newClass("Post", "post", slug)
		class.Indexes = append(class.Indexes, &ir.Index{
			Name: "post_idx", Fields: []string{"slug"}, Kind: ir.IndexHnsw,
			Parameters: map[string]string{"m": "16", "lists": "100"},
		})

		collector := validate(class)
		require.Len(t, collector.Errors(), 1)
		assert.Equal(t, `The index "post_idx" declares the parameter "lists", which is not valid for "hnsw" indexes.`, collector.Errors()[0].Message)
	})

	t.Run("valid vector index", func(t *testing.T) {
		fn := ir.DistanceL2
		class := newClass("Post", "post", slug)
		class.Indexes = append(class.Indexes, &ir.Index{
			Name: "post_idx", Fields: []string{"slug"}, Kind: ir.IndexIvfflat,
			DistanceFunction: &fn, Parameters: map[string]string{"lists": "100"},
		})

		collector := validate(class)
		assert.Equal(t, 0, collector.Len())
	})
}
