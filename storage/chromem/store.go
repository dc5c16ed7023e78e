package chromem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
)

// Store is a storage.TaxonomyStore backed by a chromem-go database.
type Store struct {
	db       *chromem.DB
	embedder ai.Embedder
	compress bool
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
	// dims holds the vector length claimed for each collection by this process.
	dims map[string]int
	// generation advances on every delete so older handles can tell they are stale.
	generation map[string]uint64
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

// WithCompression gzip-compresses persisted documents.
func WithCompression(compress bool) Option {
	return func(s *Store) error {
		s.compress = compress
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

// Open opens a chromem database persisted under path.
// An empty path opens a purely in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger: slog.Default(),
		dims:       make(map[string]int),
		generation: make(map[string]uint64),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "chromem-store")

	if path == "" {
		s.db = chromem.NewDB()
		s.logger.Debug("opened in-memory database")
		return s, nil
	}

	db, err := chromem.NewPersistentDB(path, s.compress)
	if err != nil {
		return nil, storage.Wrap("open", "", err)
	}
	s.db = db
	s.logger.Debug("opened persistent database", "path", path)
	return s, nil
}

// NewMemoryStore opens an in-memory store.
func NewMemoryStore(opts ...Option) (*Store, error) {
	return Open("", opts...)
}

// EnsureCollection returns the named collection, creating it if needed.
func (s *Store) EnsureCollection(ctx context.Context, name string) (storage.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.Wrap("ensure collection", name, storage.ErrStorageClosed)
	}
	if name == "" {
		return nil, storage.Wrap("ensure collection", name, errors.New("collection name is required"))
	}

	coll, err := s.db.GetOrCreateCollection(name, nil, s.embeddingFunc())
	if err != nil {
		return nil, storage.Wrap("ensure collection", name, err)
	}
	return &Collection{store: s, coll: coll, name: name, generation: s.generation[name]}, nil
}

// DeleteCollection removes the named collection and all its documents.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.Wrap("delete collection", name, storage.ErrStorageClosed)
	}

	if s.db.GetCollection(name, nil) == nil {
		return storage.Wrap("delete collection", name, storage.ErrCollectionNotFound)
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return storage.Wrap("delete collection", name, err)
	}
	delete(s.dims, name)
	s.generation[name]++
	s.logger.Info("deleted collection", "collection", name)
	return nil
}

// Close marks the store closed. chromem writes documents through on insert,
// so there is nothing to flush.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}


func (s *Store) dimensions(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims[name]
}

// embeddingFunc adapts the store's embedder for chromem. Documents always
// carry an embedding, so chromem only calls it for text queries.
func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if s.embedder == nil {
			return nil, storage.ErrEmbedderRequired
		}
		return s.embedder.EmbedText(ctx, text)
	}
}

// Collection is a storage.Collection backed by a chromem collection.
type Collection struct {
	store      *Store
	coll       *chromem.Collection
	name       string
	generation uint64
}

var _ storage.Collection = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// checkOpen fails once the store is closed or the collection was deleted
// after this handle was obtained.
func (c *Collection) checkOpen(op string) error {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if c.store.closed {
		return storage.Wrap(op, c.name, storage.ErrStorageClosed)
	}
	if c.store.generation[c.name] != c.generation {
		return storage.Wrap(op, c.name, storage.ErrCollectionNotFound)
	}
	return nil
}

// Insert upserts entries one at a time.
func (c *Collection) Insert(ctx context.Context, entries ...*core.Entry) error {
	if err := c.checkOpen("insert"); err != nil {
		return err
	}

	prepared, dims, err := storage.PrepareEntries(ctx, c.store.embedder, c.store.dimensions(c.name), entries)
	if err != nil {
		return storage.Wrap("insert", c.name, err)
	}
	if len(prepared) > 0 {
		if err := c.claimDimensions(ctx, dims); err != nil {
			return storage.Wrap("insert", c.name, err)
		}
	}

	for _, entry := range prepared {
		doc := chromem.Document{
			ID:        entry.ID,
			Metadata:  entry.Metadata(),
			Embedding: entry.Vector,
			Content:   entry.Text,
		}
		if err := c.coll.AddDocument(ctx, doc); err != nil {
			return storage.Wrap("insert", c.name, fmt.Errorf("entry %q: %w", entry.ID, err))
		}
	}
	c.store.logger.Debug("inserted entries", "collection", c.name, "count", len(prepared))
	return nil
}

// claimDimensions fixes the collection's vector length to dims before the
// first write this process makes. A collection reopened from disk has no
// remembered length, so its stored documents are checked against dims.
func (c *Collection) claimDimensions(ctx context.Context, dims int) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	switch known := c.store.dims[c.name]; known {
	case 0:
	case dims:
		return nil
	default:
		return fmt.Errorf("%w: entries have %d dimensions, collection has %d",
			storage.ErrDimensionMismatch, dims, known)
	}

	if c.coll.Count() > 0 {
		probe := make([]float32, dims)
		probe[0] = 1
		if _, err := c.coll.QueryEmbedding(ctx, probe, 1, nil, nil); err != nil {
			return dimensionError(err)
		}
	}
	c.store.dims[c.name] = dims
	return nil
}

// dimensionError maps chromem's length check onto storage.ErrDimensionMismatch.
func dimensionError(err error) error {
	if strings.Contains(err.Error(), "same length") {
		return fmt.Errorf("%w: %w", storage.ErrDimensionMismatch, err)
	}
	return err
}

// QueryNearest returns up to topK entries matching filter, best first.
func (c *Collection) QueryNearest(ctx context.Context, vector []float32, topK int, filter core.Filter) ([]core.Match, error) {
	if err := c.checkOpen("query"); err != nil {
		return nil, err
	}
	if err := storage.ValidateQuery(vector, topK, filter, c.store.dimensions(c.name)); err != nil {
		return nil, storage.Wrap("query", c.name, err)
	}

	total := c.coll.Count()
	if total == 0 {
		return []core.Match{}, nil
	}

	results, err := c.coll.QueryEmbedding(ctx, storage.NormalizeVector(vector), total, filter.Where(), nil)
	if err != nil {
		return nil, storage.Wrap("query", c.name, dimensionError(err))
	}

	matches := make([]core.Match, 0, len(results))
	for _, r := range results {
		entry, err := core.EntryFromMetadata(r.ID, r.Content, r.Embedding, r.Metadata)
		if err != nil {
			return nil, storage.Wrap("query", c.name, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err))
		}
		if !filter.Matches(entry) {
			continue
		}
		matches = append(matches, core.Match{Entry: entry, Similarity: r.Similarity})
	}
	return storage.RankMatches(matches, topK), nil
}

// Get returns the entry with the given id.
func (c *Collection) Get(ctx context.Context, id string) (*core.Entry, error) {
	if err := c.checkOpen("get"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, storage.Wrap("get", c.name, storage.ErrNotFound)
	}

	doc, err := c.coll.GetByID(ctx, id)
	if err != nil {
		// chromem reports a missing document as a plain error.
		return nil, storage.Wrap("get", c.name, fmt.Errorf("%w: %s", storage.ErrNotFound, id))
	}
	entry, err := core.EntryFromMetadata(doc.ID, doc.Content, doc.Embedding, doc.Metadata)
	if err != nil {
		return nil, storage.Wrap("get", c.name, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err))
	}
	return entry, nil
}

// Count returns the number of entries in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if err := c.checkOpen("count"); err != nil {
		return 0, err
	}
	return c.coll.Count(), nil
}
