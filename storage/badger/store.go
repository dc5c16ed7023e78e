package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
)

// Store is a storage.TaxonomyStore on BadgerDB. Each collection is a
// manifest key plus one key per entry; queries scan the collection's key
// range and score entries by dot product.
type Store struct {
	backend  *Backend
	embedder ai.Embedder
	logger   *slog.Logger

	// mu serializes manifest changes.
	mu sync.Mutex
}

var _ storage.TaxonomyStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithEmbedder sets the embedder used for entries inserted without a vector.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Store) error {
		s.embedder = embedder
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// Open opens a BadgerDB store in the directory at path.
// An empty path opens an in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	backend, err := OpenBackend(path, path == "", s.logger)
	if err != nil {
		return nil, storage.Wrap("open", "", err)
	}
	s.backend = backend
	s.logger = s.logger.With("component", "badger-store")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}

// EnsureCollection returns the named collection, creating its manifest if needed.
func (s *Store) EnsureCollection(ctx context.Context, name string) (storage.Collection, error) {
	if s.backend.IsClosed() {
		return nil, storage.Wrap("ensure collection", name, storage.ErrStorageClosed)
	}
	if name == "" {
		return nil, storage.Wrap("ensure collection", name, errors.New("collection name is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.readManifest(name)
	if errors.Is(err, storage.ErrCollectionNotFound) {
		err = s.writeManifest(&storage.Manifest{Name: name})
		if err == nil {
			s.logger.Info("created collection", "collection", name, "hash", hashString(name))
		}
	}
	if err != nil {
		return nil, storage.Wrap("ensure collection", name, err)
	}
	return &Collection{store: s, name: name}, nil
}

// DeleteCollection removes the manifest and every entry of the named collection.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if s.backend.IsClosed() {
		return storage.Wrap("delete collection", name, storage.ErrStorageClosed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readManifest(name); err != nil {
		return storage.Wrap("delete collection", name, err)
	}
	if err := s.backend.DropPrefix(makeEntryPrefix(name), makeManifestKey(name)); err != nil {
		return storage.Wrap("delete collection", name, err)
	}
	s.logger.Info("deleted collection", "collection", name)
	return nil
}

func (s *Store) readManifest(name string) (*storage.Manifest, error) {
	var manifest *storage.Manifest
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeManifestKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrCollectionNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			manifest, err = storage.UnmarshalManifest(val)
			return err
		})
	}, false)
	return manifest, err
}

func (s *Store) writeManifest(manifest *storage.Manifest) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeManifestKey(manifest.Name), storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Collection is a storage.Collection stored in BadgerDB.
type Collection struct {
	store *Store
	name  string
}

var _ storage.Collection = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) checkOpen(op string) error {
	if c.store.backend.IsClosed() {
		return storage.Wrap(op, c.name, storage.ErrStorageClosed)
	}
	return nil
}

// Insert upserts entries, one transaction per entry.
func (c *Collection) Insert(ctx context.Context, entries ...*core.Entry) error {
	if err := c.checkOpen("insert"); err != nil {
		return err
	}

	manifest, err := c.store.readManifest(c.name)
	if err != nil {
		return storage.Wrap("insert", c.name, err)
	}

	prepared, dims, err := storage.PrepareEntries(ctx, c.store.embedder, manifest.Dimensions, entries)
	if err != nil {
		return storage.Wrap("insert", c.name, err)
	}
	if len(prepared) == 0 {
		return nil
	}

	if manifest.Dimensions == 0 {
		if err := c.claimDimensions(dims); err != nil {
			return storage.Wrap("insert", c.name, err)
		}
	}

	for _, entry := range prepared {
		if err := ctx.Err(); err != nil {
			return storage.Wrap("insert", c.name, err)
		}
		err := c.store.backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set(makeEntryKey(c.name, entry.ID), storage.MarshalEntry(entry)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return storage.Wrap("insert", c.name, fmt.Errorf("entry %q: %w", entry.ID, err))
		}
	}
	c.store.logger.Debug("inserted entries", "collection", c.name, "count", len(prepared))
	return nil
}

// claimDimensions records dims in the manifest of a collection that has none
// yet. A concurrent insert may have claimed a different size first.
func (c *Collection) claimDimensions(dims int) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	manifest, err := c.store.readManifest(c.name)
	if err != nil {
		return err
	}
	switch manifest.Dimensions {
	case 0:
		manifest.Dimensions = dims
		return c.store.writeManifest(manifest)
	case dims:
		return nil
	default:
		return fmt.Errorf("%w: entries have %d dimensions, collection has %d",
			storage.ErrDimensionMismatch, dims, manifest.Dimensions)
	}
}

// QueryNearest scans the collection and returns up to topK entries matching filter.
func (c *Collection) QueryNearest(ctx context.Context, vector []float32, topK int, filter core.Filter) ([]core.Match, error) {
	if err := c.checkOpen("query"); err != nil {
		return nil, err
	}

	manifest, err := c.store.readManifest(c.name)
	if err != nil {
		return nil, storage.Wrap("query", c.name, err)
	}
	if err := storage.ValidateQuery(vector, topK, filter, manifest.Dimensions); err != nil {
		return nil, storage.Wrap("query", c.name, err)
	}

	query := storage.NormalizeVector(vector)
	var matches []core.Match
	err = c.scan(ctx, true, func(entry *core.Entry) {
		if !filter.Matches(entry) {
			return
		}
		matches = append(matches, core.Match{
			Entry:      entry,
			Similarity: storage.DotProduct(query, entry.Vector),
		})
	})
	if err != nil {
		return nil, storage.Wrap("query", c.name, err)
	}
	return storage.RankMatches(matches, topK), nil
}

// Get returns the entry with the given id.
func (c *Collection) Get(ctx context.Context, id string) (*core.Entry, error) {
	if err := c.checkOpen("get"); err != nil {
		return nil, err
	}

	var entry *core.Entry
	err := c.store.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(c.name, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, storage.Wrap("get", c.name, err)
	}
	return entry, nil
}

// Count returns the number of entries in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if err := c.checkOpen("count"); err != nil {
		return 0, err
	}

	count := 0
	err := c.scan(ctx, false, func(*core.Entry) { count++ })
	if err != nil {
		return 0, storage.Wrap("count", c.name, err)
	}
	return count, nil
}

// scan visits every entry of the collection. Values are decoded only when
// withValues is set; otherwise fn receives nil.
func (c *Collection) scan(ctx context.Context, withValues bool, fn func(*core.Entry)) error {
	return c.store.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryPrefix(c.name)
		opts.PrefetchValues = withValues
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !withValues {
				fn(nil)
				continue
			}

			var entry *core.Entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			fn(entry)
		}
		return nil
	}, false)
}
