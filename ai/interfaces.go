package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
//
// Failures should be reported as *EmbeddingError so callers can tell transient
// failures (rate limiting, timeouts, network errors) from permanent ones
// (invalid input, authentication). Plain errors are classified with Classify.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector length is fixed by the backend model configuration.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFunc adapts a single-text function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

// EmbedText calls f.
func (f EmbedderFunc) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// EmbedTexts calls f once per text.
func (f EmbedderFunc) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
