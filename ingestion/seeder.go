package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
)

// DefaultProgressInterval is the number of entries between progress reports.
const DefaultProgressInterval = 10

// Seeder loads a taxonomy into a collection using a worker pool.
// Seed may be called concurrently; all calls share the pool.
type Seeder struct {
	collection       storage.Collection
	pool             *ants.Pool
	logger           *slog.Logger
	progress         io.Writer
	progressInterval int
}

// Option configures a Seeder.
type Option func(*Seeder) error

// WithPoolSize sets the worker pool size for concurrent upserts.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Seeder) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if s.pool != nil {
			s.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithProgress reports progress to w every interval entries.
// An interval below 1 uses DefaultProgressInterval.
func WithProgress(w io.Writer, interval int) Option {
	return func(s *Seeder) error {
		if interval < 1 {
			interval = DefaultProgressInterval
		}
		s.progress = w
		s.progressInterval = interval
		return nil
	}
}

// NewSeeder creates a new seeder writing into collection.
func NewSeeder(collection storage.Collection, opts ...Option) (*Seeder, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Seeder{
		collection: collection,
		pool:       pool,
		logger:     slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}
	s.logger = s.logger.With("component", "seeder", "collection", collection.Name())

	return s, nil
}

// PoolSize returns the worker pool capacity.
func (s *Seeder) PoolSize() int {
	return s.pool.Cap()
}

// Seed validates taxonomy and upserts every category and subcategory entry.
// All upsert failures are returned joined; entries that succeeded stay in the
// collection. Seeding an already seeded taxonomy leaves the collection
// unchanged in content.
func (s *Seeder) Seed(ctx context.Context, taxonomy core.Taxonomy) error {
	if err := core.ValidateTaxonomy(taxonomy); err != nil {
		return err
	}
	if s.pool.IsClosed() {
		return ErrSeederReleased
	}

	entries := taxonomy.Entries()
	s.logger.Info("seeding taxonomy", "categories", len(taxonomy), "entries", len(entries))

	progress := newSeedProgress(s.progress, len(entries), s.progressInterval)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(entry *core.Entry, err error) {
		mu.Lock()
		errs = append(errs, fmt.Errorf("seeding %q: %w", entry.ID, err))
		mu.Unlock()
		progress.done(false)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			fail(entry, err)
			continue
		}

		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				fail(entry, err)
				return
			}
			if err := s.collection.Insert(ctx, entry); err != nil {
				s.logger.Error("error upserting entry", "id", entry.ID, "err", err)
				fail(entry, err)
				return
			}
			progress.done(true)
		})
		if submitErr != nil {
			wg.Done()
			fail(entry, submitErr)
		}
	}
	wg.Wait()

	progress.finish()

	if len(errs) > 0 {
		s.logger.Warn("seeding finished with failures", "failed", len(errs), "entries", len(entries))
		return errors.Join(errs...)
	}
	s.logger.Info("seeding complete", "entries", len(entries))
	return nil
}

// Release releases the worker pool.
// The seeder should not be used after calling Release.
func (s *Seeder) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
