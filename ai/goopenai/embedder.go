package goopenai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/taxonomist/ai"
	openai "github.com/sashabaranov/go-openai"
)

// Embedder implements ai.Embedder using the go-openai client.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a go-openai embedder from config.
func NewEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.APIKey
	if token == "" {
		token = "none"
	}
	clientConfig := openai.DefaultConfig(token)
	clientConfig.BaseURL = config.EmbeddingHost

	return &Embedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      openai.EmbeddingModel(config.EmbeddingModel),
		dimensions: config.Dimensions,
		logger:     slog.Default().With("component", "goopenai-embedder"),
	}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ai.NewPermanentError(ai.ErrEmptyEmbedding)
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple texts in one request.
// Results are ordered to match texts.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	e.logger.Debug("generating embeddings", "count", len(texts), "model", e.model)

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      e.model,
		Dimensions: e.dimensions,
	})
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, classify(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, ai.NewPermanentError(fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(resp.Data)))
	}

	data := slices.Clone(resp.Data)
	slices.SortFunc(data, func(a, b openai.Embedding) int {
		return a.Index - b.Index
	})

	vectors := make([][]float32, len(data))
	for i, d := range data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// classify maps go-openai's typed errors onto ai error kinds, falling back to
// ai.Classify for transport failures.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &ai.EmbeddingError{Kind: ai.ClassifyStatus(apiErr.HTTPStatusCode), Cause: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &ai.EmbeddingError{Kind: ai.ClassifyStatus(reqErr.HTTPStatusCode), Cause: err}
	}
	return ai.Classify(err)
}
