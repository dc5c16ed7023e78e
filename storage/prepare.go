package storage

import (
	"context"
	"fmt"

	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/core"
)

// PrepareEntries validates entries and returns normalized copies ready to be
// stored. Entries without a vector are embedded in one batch with embedder.
// dims is the collection's dimensionality, or zero when it is not yet known;
// the returned dimension is the one every prepared vector has.
func PrepareEntries(ctx context.Context, embedder ai.Embedder, dims int, entries []*core.Entry) ([]*core.Entry, int, error) {
	prepared := make([]*core.Entry, len(entries))
	var missing []int
	for i, entry := range entries {
		if err := core.ValidateEntry(entry); err != nil {
			return nil, dims, err
		}
		prepared[i] = entry.Clone()
		if len(entry.Vector) == 0 {
			missing = append(missing, i)
		}
	}

	if len(missing) > 0 {
		if embedder == nil {
			return nil, dims, ErrEmbedderRequired
		}
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = prepared[i].Text
		}
		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, dims, err
		}
		if len(vectors) != len(texts) {
			return nil, dims, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
		}
		for j, i := range missing {
			prepared[i].Vector = vectors[j]
		}
	}

	for _, entry := range prepared {
		if len(entry.Vector) == 0 {
			return nil, dims, fmt.Errorf("entry %q: %w", entry.ID, ai.ErrEmptyEmbedding)
		}
		if dims == 0 {
			dims = len(entry.Vector)
		}
		if len(entry.Vector) != dims {
			return nil, dims, fmt.Errorf("%w: entry %q has %d dimensions, collection has %d",
				ErrDimensionMismatch, entry.ID, len(entry.Vector), dims)
		}
		entry.Vector = NormalizeVector(entry.Vector)
	}
	return prepared, dims, nil
}

// ValidateQuery checks query parameters shared by every engine.
// dims is the collection's dimensionality, or zero when it is not yet known.
func ValidateQuery(vector []float32, topK int, filter core.Filter, dims int) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty query vector", ErrInvalidQuery)
	}
	if topK < 1 {
		return fmt.Errorf("%w: topK must be at least 1, got %d", ErrInvalidQuery, topK)
	}
	if err := filter.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if dims > 0 && len(vector) != dims {
		return fmt.Errorf("%w: query has %d dimensions, collection has %d", ErrDimensionMismatch, len(vector), dims)
	}
	return nil
}
