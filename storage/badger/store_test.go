package badger

import (
	"context"
	"testing"

	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/ai/mock"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
	"github.com/poiesic/taxonomist/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, embedder ai.Embedder) storage.TaxonomyStore {
		store, err := NewMemoryStore(WithEmbedder(embedder))
		require.NoError(t, err)
		return store
	})
}

func TestStore_ReopenKeepsDimensions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	embedder := mock.TableEmbedder(storagetest.Vectors)

	store, err := Open(dir, WithEmbedder(embedder))
	require.NoError(t, err)
	coll, err := store.EnsureCollection(ctx, "categories_collection")
	require.NoError(t, err)
	require.NoError(t, coll.Insert(ctx, storagetest.Taxonomy.Entries()...))
	require.NoError(t, store.Close())

	reopened, err := Open(dir, WithEmbedder(embedder))
	require.NoError(t, err)
	defer reopened.Close()

	coll, err = reopened.EnsureCollection(ctx, "categories_collection")
	require.NoError(t, err)
	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, storagetest.Taxonomy.Size(), count)

	_, err = coll.QueryNearest(ctx, []float32{1, 0}, 1, core.ByKind(core.KindCategory))
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch, "manifest survives reopen")

	e := core.NewCategoryEntry("Toys")
	e.Vector = []float32{1, 0, 0, 0}
	assert.ErrorIs(t, coll.Insert(ctx, e), storage.ErrDimensionMismatch)
}

func TestStore_DeletedCollectionHandle(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	coll, err := store.EnsureCollection(ctx, "categories_collection")
	require.NoError(t, err)
	require.NoError(t, store.DeleteCollection(ctx, "categories_collection"))

	e := core.NewCategoryEntry("Books")
	e.Vector = []float32{1, 0}
	assert.ErrorIs(t, coll.Insert(ctx, e), storage.ErrCollectionNotFound)
}

func TestStore_InsertWithoutEmbedder(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	coll, err := store.EnsureCollection(ctx, "categories_collection")
	require.NoError(t, err)
	assert.ErrorIs(t, coll.Insert(ctx, core.NewCategoryEntry("Books")), storage.ErrEmbedderRequired)
}
