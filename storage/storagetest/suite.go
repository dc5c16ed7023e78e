// Package storagetest provides a conformance suite for storage.TaxonomyStore
// implementations.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/ai/mock"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens a fresh, empty store that embeds with embedder.
// The suite closes every store it opens.
type Factory func(t *testing.T, embedder ai.Embedder) storage.TaxonomyStore

// Vectors is a small hand-made embedding space: categories lie on the axes
// and subcategories lean towards their parent.
var Vectors = map[string][]float32{
	"Electronics":     {1, 0, 0},
	"Books":           {0, 1, 0},
	"Home Appliances": {0, 0, 1},
	"Laptops":         {0.9, 0.1, 0},
	"Smartphones":     {0.8, 0, 0.2},
	"Fiction":         {0.1, 0.9, 0},
	"Non-Fiction":     {0, 0.8, 0.2},
	"Refrigerators":   {0.1, 0, 0.9},
}

// Taxonomy matches Vectors.
var Taxonomy = core.Taxonomy{
	{Category: "Electronics", Subcategories: []string{"Laptops", "Smartphones"}},
	{Category: "Books", Subcategories: []string{"Fiction", "Non-Fiction"}},
	{Category: "Home Appliances", Subcategories: []string{"Refrigerators"}},
}

// Run executes the conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	open := func(t *testing.T) (storage.TaxonomyStore, storage.Collection, *mock.MockEmbedder) {
		t.Helper()
		embedder := mock.TableEmbedder(Vectors)
		store := newStore(t, embedder)
		t.Cleanup(func() { _ = store.Close() })
		coll, err := store.EnsureCollection(ctx, "categories_collection")
		require.NoError(t, err)
		return store, coll, embedder
	}

	seed := func(t *testing.T, coll storage.Collection) {
		t.Helper()
		require.NoError(t, coll.Insert(ctx, Taxonomy.Entries()...))
	}

	t.Run("ensure collection is idempotent", func(t *testing.T) {
		store, coll, _ := open(t)
		seed(t, coll)
		assert.Equal(t, "categories_collection", coll.Name())

		again, err := store.EnsureCollection(ctx, "categories_collection")
		require.NoError(t, err)
		count, err := again.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, Taxonomy.Size(), count, "existing data must survive")
	})

	t.Run("insert embeds and normalizes", func(t *testing.T) {
		_, coll, embedder := open(t)
		seed(t, coll)
		assert.Len(t, embedder.Texts(), Taxonomy.Size())

		got, err := coll.Get(ctx, "Books::Fiction")
		require.NoError(t, err)
		assert.Equal(t, "Fiction", got.Text)
		assert.Equal(t, core.KindSubcategory, got.Kind)
		assert.Equal(t, "Books", got.ParentCategory)
		assert.InDeltaSlice(t, storage.NormalizeVector(Vectors["Fiction"]), got.Vector, 1e-5)
	})

	t.Run("get missing entry", func(t *testing.T) {
		_, coll, _ := open(t)
		seed(t, coll)
		_, err := coll.Get(ctx, "Books::Poetry")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("insert is an idempotent upsert", func(t *testing.T) {
		_, coll, _ := open(t)
		seed(t, coll)
		seed(t, coll)

		count, err := coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, Taxonomy.Size(), count)

		moved := core.NewCategoryEntry("Books")
		moved.Vector = []float32{0, 0, 5}
		require.NoError(t, coll.Insert(ctx, moved))

		got, err := coll.Get(ctx, "Books")
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0, 0, 1}, got.Vector, 1e-5, "last write wins")

		count, err = coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, Taxonomy.Size(), count)
	})

	t.Run("category and subcategory ids do not collide", func(t *testing.T) {
		_, coll, _ := open(t)
		cat := core.NewCategoryEntry("Laptops")
		cat.Vector = []float32{1, 1, 0}
		sub := core.NewSubcategoryEntry("Laptops", "Laptops")
		sub.Vector = []float32{1, 0, 1}
		require.NoError(t, coll.Insert(ctx, cat, sub))

		count, err := coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("category filter returns only categories", func(t *testing.T) {
		_, coll, _ := open(t)
		seed(t, coll)

		matches, err := coll.QueryNearest(ctx, Vectors["Fiction"], 10, core.ByKind(core.KindCategory))
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "Books", matches[0].Entry.ID)
		for _, m := range matches {
			assert.Equal(t, core.KindCategory, m.Entry.Kind)
		}
	})

	t.Run("parent filter returns only children", func(t *testing.T) {
		_, coll, _ := open(t)
		seed(t, coll)

		filter := core.ByKindAndParent(core.KindSubcategory, "Books")
		// Laptops is globally closer to this query than any Books child.
		matches, err := coll.QueryNearest(ctx, []float32{1, 0.2, 0}, 10, filter)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		for _, m := range matches {
			assert.True(t, filter.Matches(m.Entry), "unexpected %s", m.Entry.ID)
		}
		assert.Equal(t, "Books::Fiction", matches[0].Entry.ID)
		assert.GreaterOrEqual(t, matches[0].Similarity, matches[1].Similarity)
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		_, coll, _ := open(t)

		matches, err := coll.QueryNearest(ctx, []float32{1, 0, 0}, 5, core.ByKind(core.KindCategory))
		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches, "empty collection")

		seed(t, coll)
		matches, err = coll.QueryNearest(ctx, []float32{1, 0, 0}, 5, core.ByKindAndParent(core.KindSubcategory, "Toys"))
		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches, "unknown parent")
	})

	t.Run("topK truncates and ties break by id", func(t *testing.T) {
		_, coll, _ := open(t)
		var entries []*core.Entry
		for _, name := range []string{"Delta", "Alpha", "Charlie", "Bravo"} {
			e := core.NewCategoryEntry(name)
			e.Vector = []float32{0, 1, 0}
			entries = append(entries, e)
		}
		require.NoError(t, coll.Insert(ctx, entries...))

		matches, err := coll.QueryNearest(ctx, []float32{0, 1, 0}, 3, core.ByKind(core.KindCategory))
		require.NoError(t, err)
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.Entry.ID
		}
		assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, ids)
	})

	t.Run("invalid queries", func(t *testing.T) {
		_, coll, _ := open(t)
		seed(t, coll)

		_, err := coll.QueryNearest(ctx, []float32{1, 0, 0}, 0, core.ByKind(core.KindCategory))
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)

		_, err = coll.QueryNearest(ctx, nil, 1, core.ByKind(core.KindCategory))
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)

		_, err = coll.QueryNearest(ctx, []float32{1, 0}, 1, core.ByKind(core.KindCategory))
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})

	t.Run("insert rejects other dimensionality", func(t *testing.T) {
		_, coll, _ := open(t)
		seed(t, coll)

		e := core.NewCategoryEntry("Toys")
		e.Vector = []float32{1, 0}
		assert.ErrorIs(t, coll.Insert(ctx, e), storage.ErrDimensionMismatch)
	})

	t.Run("insert rejects invalid entries", func(t *testing.T) {
		_, coll, _ := open(t)
		err := coll.Insert(ctx, &core.Entry{ID: "Books", Text: "Books", Kind: core.KindSubcategory})
		assert.ErrorIs(t, err, core.ErrInvalidEntry)
	})

	t.Run("delete collection", func(t *testing.T) {
		store, coll, _ := open(t)
		seed(t, coll)

		require.NoError(t, store.DeleteCollection(ctx, "categories_collection"))
		assert.ErrorIs(t, store.DeleteCollection(ctx, "categories_collection"), storage.ErrCollectionNotFound)

		fresh, err := store.EnsureCollection(ctx, "categories_collection")
		require.NoError(t, err)
		count, err := fresh.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		store, coll, _ := open(t)
		seed(t, coll)

		other, err := store.EnsureCollection(ctx, "other")
		require.NoError(t, err)
		count, err := other.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("closed store", func(t *testing.T) {
		store, _, _ := open(t)
		require.NoError(t, store.Close())

		_, err := store.EnsureCollection(ctx, "categories_collection")
		assert.ErrorIs(t, err, storage.ErrStorageClosed)
	})

	t.Run("concurrent upserts and queries", func(t *testing.T) {
		_, coll, _ := open(t)
		seed(t, coll)

		var wg sync.WaitGroup
		errs := make(chan error, 40)
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				e := core.NewSubcategoryEntry("Books", fmt.Sprintf("Series %d", i%5))
				e.Vector = []float32{0.2, 1, float32(i%5) / 10}
				errs <- coll.Insert(ctx, e)
			}(i)
			go func() {
				defer wg.Done()
				_, err := coll.QueryNearest(ctx, []float32{0, 1, 0}, 3, core.ByKindAndParent(core.KindSubcategory, "Books"))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		count, err := coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, Taxonomy.Size()+5, count)
	})
}
