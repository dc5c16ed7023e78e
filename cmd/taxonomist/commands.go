package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/taxonomist"
	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/core"
	"github.com/poiesic/taxonomist/ingestion"
	"github.com/poiesic/taxonomist/search"
	"github.com/poiesic/taxonomist/source"
	"github.com/urfave/cli/v2"
)

// embedderKey is the App.Metadata key holding an ai.Embedder that replaces
// the configured backend.
const embedderKey = "embedder"

// searchOutput is the JSON printed by the search command.
type searchOutput struct {
	Outcome     string `json:"outcome"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func aiConfig(c *cli.Context) (*ai.Config, error) {
	config := ai.NewConfig(
		ai.WithBackend(c.String("embedding-backend")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithDimensions(c.Int("dimensions")),
		ai.WithTimeout(c.Duration("timeout")),
		ai.WithRetry(c.Int("max-attempts"), c.Duration("retry-delay")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func openIndex(c *cli.Context) (*taxonomist.Index, error) {
	config, err := aiConfig(c)
	if err != nil {
		return nil, err
	}

	opts := []taxonomist.Option{
		taxonomist.WithEngine(c.String("engine")),
		taxonomist.WithCollection(c.String("collection")),
		taxonomist.WithQdrantAddress(c.String("qdrant-addr")),
		taxonomist.WithAIConfig(config),
	}
	if embedder, ok := c.App.Metadata[embedderKey].(ai.Embedder); ok {
		opts = append(opts, taxonomist.WithEmbedder(embedder))
	}

	idx, err := taxonomist.Open(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return idx, nil
}

func seedCommand(c *cli.Context) error {
	ctx := c.Context

	taxonomy := source.Default()
	if path := c.String("source"); path != "" {
		var err error
		taxonomy, err = source.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load taxonomy: %w", err)
		}
	}

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	if c.Bool("reset") {
		if err := idx.Reset(ctx); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
	}

	opts := []ingestion.Option{ingestion.WithProgress(c.App.ErrWriter, ingestion.DefaultProgressInterval)}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}

	fmt.Fprintf(c.App.ErrWriter, "Engine: %s\n", c.String("engine"))
	fmt.Fprintf(c.App.ErrWriter, "Collection: %s\n", c.String("collection"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintf(c.App.ErrWriter, "Categories: %s\n", strings.Join(taxonomy.Categories(), ", "))

	if err := idx.Seed(ctx, taxonomy, opts...); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	count, err := idx.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "Seeded %d categories, collection holds %d entries\n", len(taxonomy), count)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	searcher, err := idx.NewSearcher(search.WithTopK(c.Int("top-k")))
	if err != nil {
		return searchError(err)
	}

	result, err := searcher.Search(c.Context, query)
	if err != nil {
		return searchError(err)
	}
	return printResult(c, result)
}

// searchError separates caller mistakes from engine failures.
func searchError(err error) error {
	if search.IsInvalidInput(err) {
		return fmt.Errorf("invalid search: %w", err)
	}
	return fmt.Errorf("search failed: %w", err)
}

func printResult(c *cli.Context, result core.Result) error {
	enc := json.NewEncoder(c.App.Writer)
	return enc.Encode(searchOutput{
		Outcome:     result.Outcome.String(),
		Category:    result.Category,
		Subcategory: result.Subcategory,
	})
}

func resetCommand(c *cli.Context) error {
	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Reset(c.Context); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "Collection %q reset\n", c.String("collection"))
	return nil
}

func countCommand(c *cli.Context) error {
	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	count, err := idx.Count(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, count)
	return nil
}
