// Package mock provides test double implementations of ai.Embedder.
//
// The mocks allow tests to run without an embedding service and give
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Fixed vectors for known texts
//	embedder = mock.TableEmbedder(map[string][]float32{"Books": {1, 0}})
//
//	// Fail twice with a transient error, then succeed
//	embedder = mock.FailingEmbedder(2, ai.NewTransientError(errors.New("busy")))
//
// # Default Behavior
//
// MockEmbedder returns unit-length vectors derived from an FNV hash of the
// text, so equal texts always embed identically.
package mock
