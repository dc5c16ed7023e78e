package taxonomist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/ai/goopenai"
	"github.com/poiesic/taxonomist/ai/openai"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/ingestion"
	"github.com/poiesic/taxonomist/search"
	"github.com/poiesic/taxonomist/storage"
	"github.com/poiesic/taxonomist/storage/badger"
	"github.com/poiesic/taxonomist/storage/chromem"
	"github.com/poiesic/taxonomist/storage/qdrant"
)

// Storage engines accepted by WithEngine.
const (
	EngineChromem = "chromem"
	EngineBadger  = "badger"
	EngineQdrant  = "qdrant"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "categories_collection"

// Engines lists the accepted engine names.
var Engines = []string{EngineChromem, EngineBadger, EngineQdrant}

// Index is an opened taxonomy collection with its embedder.
type Index struct {
	store          storage.TaxonomyStore
	embedder       ai.Embedder
	policy         ai.RetryPolicy
	collectionName string
	logger         *slog.Logger

	mu         sync.RWMutex
	collection storage.Collection
	closed     bool
}

// Option configures an Index.
type Option func(*options)

type options struct {
	engine     string
	collection string
	aiConfig   *ai.Config
	embedder   ai.Embedder
	inMemory   bool
	qdrantAddr string
	dimensions int
	logger     *slog.Logger
}

// WithEngine selects the storage engine. Default is EngineChromem.
func WithEngine(engine string) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithCollection sets the collection name. Default is DefaultCollection.
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// WithAIConfig sets the embedding configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = config
	}
}

// WithEmbedder uses embedder instead of building one from the AI config.
// The AI config still supplies the retry policy.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *options) {
		o.embedder = embedder
	}
}

// WithInMemory keeps an embedded engine entirely in memory.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithQdrantAddress sets the gRPC address of the Qdrant server.
func WithQdrantAddress(addr string) Option {
	return func(o *options) {
		o.qdrantAddr = addr
	}
}

// WithDimensions sets the vector size for engines that need it up front.
// Default is the AI config's Dimensions.
func WithDimensions(dims int) Option {
	return func(o *options) {
		o.dimensions = dims
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open opens the configured engine and ensures the collection exists.
// path is the database directory for chromem and badger and is ignored for
// qdrant.
func Open(path string, opts ...Option) (*Index, error) {
	// Apply options
	o := &options{
		engine:     EngineChromem,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.aiConfig == nil {
		o.aiConfig = ai.DefaultConfig()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.dimensions == 0 {
		o.dimensions = o.aiConfig.Dimensions
	}

	if err := o.aiConfig.Validate(); err != nil {
		return nil, err
	}
	policy := o.aiConfig.RetryPolicy()

	embedder := o.embedder
	if embedder == nil {
		var err error
		embedder, err = NewEmbedder(o.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	// Writes embed through the retrying decorator; searches retry themselves.
	storeEmbedder, err := ai.NewRetryingEmbedder(embedder, policy)
	if err != nil {
		return nil, err
	}

	store, err := openStore(path, o, storeEmbedder)
	if err != nil {
		return nil, err
	}

	collection, err := store.EnsureCollection(context.Background(), o.collection)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			o.logger.Error("error closing store", "err", closeErr)
		}
		return nil, err
	}

	logger := o.logger.With("component", "taxonomist", "engine", o.engine, "collection", o.collection)
	logger.Debug("index opened", "path", path)

	return &Index{
		store:          store,
		embedder:       embedder,
		policy:         policy,
		collectionName: o.collection,
		collection:     collection,
		logger:         logger,
	}, nil
}

func openStore(path string, o *options, embedder ai.Embedder) (storage.TaxonomyStore, error) {
	switch o.engine {
	case EngineChromem, EngineBadger:
		if o.inMemory {
			path = ""
		} else if path == "" {
			return nil, fmt.Errorf("%w for engine %q", ErrPathRequired, o.engine)
		}
	}

	switch o.engine {
	case EngineChromem:
		return chromem.Open(path, chromem.WithEmbedder(embedder), chromem.WithLogger(o.logger))
	case EngineBadger:
		return badger.Open(path, badger.WithEmbedder(embedder), badger.WithLogger(o.logger))
	case EngineQdrant:
		return qdrant.Open(o.qdrantAddr,
			qdrant.WithEmbedder(embedder),
			qdrant.WithDimensions(o.dimensions),
			qdrant.WithLogger(o.logger),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, o.engine)
	}
}

// NewEmbedder builds the embedder selected by config.Backend.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Backend {
	case ai.BackendGoOpenAI:
		return goopenai.NewEmbedder(config)
	default:
		return openai.NewEmbedder(config)
	}
}

// Collection returns a view of the index's collection that follows Reset.
func (idx *Index) Collection() storage.Collection {
	return liveCollection{idx: idx}
}

// Embedder returns the embedder used for queries.
func (idx *Index) Embedder() ai.Embedder {
	return idx.embedder
}

// Reset deletes the collection and creates it again empty.
// Searchers and seeders obtained from the index see the new collection.
func (idx *Index) Reset(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return ErrIndexClosed
	}

	err := idx.store.DeleteCollection(ctx, idx.collectionName)
	if err != nil && !errors.Is(err, storage.ErrCollectionNotFound) {
		return err
	}

	collection, err := idx.store.EnsureCollection(ctx, idx.collectionName)
	if err != nil {
		return err
	}
	idx.collection = collection
	idx.logger.Info("collection reset")
	return nil
}

// Count returns the number of entries in the collection.
func (idx *Index) Count(ctx context.Context) (int, error) {
	collection, err := idx.current()
	if err != nil {
		return 0, err
	}
	return collection.Count(ctx)
}

// Seed loads taxonomy into the collection with a short-lived seeder.
func (idx *Index) Seed(ctx context.Context, taxonomy core.Taxonomy, opts ...ingestion.Option) error {
	seeder, err := idx.NewSeeder(opts...)
	if err != nil {
		return err
	}
	defer seeder.Release()

	return seeder.Seed(ctx, taxonomy)
}

// NewSearcher creates a searcher over the index's collection.
func (idx *Index) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	if _, err := idx.current(); err != nil {
		return nil, err
	}
	defaults := []search.Option{search.WithLogger(idx.logger), search.WithRetryPolicy(idx.policy)}
	return search.NewSearcher(idx.Collection(), idx.embedder, append(defaults, opts...)...)
}

// NewSeeder creates a seeder writing into the index's collection.
// The caller must Release it.
func (idx *Index) NewSeeder(opts ...ingestion.Option) (*ingestion.Seeder, error) {
	if _, err := idx.current(); err != nil {
		return nil, err
	}
	defaults := []ingestion.Option{ingestion.WithLogger(idx.logger)}
	return ingestion.NewSeeder(idx.Collection(), append(defaults, opts...)...)
}

func (idx *Index) current() (storage.Collection, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return nil, ErrIndexClosed
	}
	return idx.collection, nil
}

// Close closes the storage engine. Close is idempotent.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return nil
	}
	idx.closed = true

	if err := idx.store.Close(); err != nil {
		idx.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}
