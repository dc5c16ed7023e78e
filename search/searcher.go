package search

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/storage"
)

// DefaultTopK is the candidate breadth per stage when none is configured.
const DefaultTopK = 5

// Searcher maps free-text queries onto a category and subcategory.
// It is safe for concurrent use.
type Searcher struct {
	collection storage.Collection
	embedder   ai.Embedder
	policy     ai.RetryPolicy
	topK       int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTopK sets the number of candidates fetched per stage.
// Default is DefaultTopK.
func WithTopK(topK int) Option {
	return func(s *Searcher) error {
		if err := core.ValidateTopK(topK); err != nil {
			return err
		}
		s.topK = topK
		return nil
	}
}

// WithRetryPolicy sets the policy for embedding the query.
// Default is ai.DefaultRetryPolicy().
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(s *Searcher) error {
		if policy.MaxAttempts <= 0 {
			return ai.ErrInvalidMaxAttempts
		}
		s.policy = policy
		return nil
	}
}

// NewSearcher creates a new searcher over collection.
func NewSearcher(collection storage.Collection, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		collection: collection,
		embedder:   embedder,
		policy:     ai.DefaultRetryPolicy(),
		topK:       DefaultTopK,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher", "collection", collection.Name())

	return s, nil
}

// Search classifies query using the configured topK.
func (s *Searcher) Search(ctx context.Context, query string) (core.Result, error) {
	return s.SearchWithMonitor(ctx, query, s.topK, nil)
}

// SearchTopK classifies query fetching topK candidates per stage.
func (s *Searcher) SearchTopK(ctx context.Context, query string, topK int) (core.Result, error) {
	return s.SearchWithMonitor(ctx, query, topK, nil)
}

// SearchWithMonitor classifies query with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) (result core.Result, err error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query, topK)
	defer func() {
		monitor.Finish(result, err)
	}()

	if err := core.ValidateQuery(query, topK); err != nil {
		return core.NoMatch(), err
	}

	// 1. Embed the query once for both stages
	vector, err := ai.EmbedWithRetry(ctx, s.embedder, query, s.policy)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return core.NoMatch(), err
	}
	monitor.AfterEmbedding(vector)

	// 2. Category lookup
	categories, err := s.collection.QueryNearest(ctx, vector, topK, core.ByKind(core.KindCategory))
	if err != nil {
		s.logger.Error("error querying categories", "err", err)
		return core.NoMatch(), err
	}
	monitor.AfterCategoryLookup(categories)
	if len(categories) == 0 {
		s.logger.Debug("no category matched", "query", query)
		return core.NoMatch(), nil
	}
	best := categories[0].Entry.Text

	// 3. Subcategory lookup restricted to the best category
	filter := core.ByKindAndParent(core.KindSubcategory, best)
	subcategories, err := s.collection.QueryNearest(ctx, vector, topK, filter)
	if err != nil {
		s.logger.Error("error querying subcategories", "category", best, "err", err)
		return core.NoMatch(), err
	}
	monitor.AfterSubcategoryLookup(best, subcategories)

	result = core.Result{
		Outcome:       core.OutcomeCategoryOnly,
		Category:      best,
		Categories:    categories,
		Subcategories: subcategories,
	}
	if len(subcategories) == 0 {
		s.logger.Debug("category has no matching subcategory", "query", query, "category", best)
		return result, nil
	}

	result.Outcome = core.OutcomeMatch
	result.Subcategory = subcategories[0].Entry.Text
	s.logger.Debug("search complete", "query", query, "category", result.Category, "subcategory", result.Subcategory)
	return result, nil
}

// IsInvalidInput reports whether err was caused by a malformed query.
func IsInvalidInput(err error) bool {
	return errors.Is(err, core.ErrInvalidInput)
}
