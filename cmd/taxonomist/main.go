// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/taxonomist"
	"github.com/poiesic/taxonomist/ai"
	"github.com/poiesic/taxonomist/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := loadEnv(); err != nil {
		log.Fatal(err)
	}
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadEnv reads .env style files into the environment. Missing files are
// skipped and variables already set win.
func loadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "taxonomist",
		Usage: "Classify free text into a category and subcategory by embedding similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Load a taxonomy into the collection",
				Action: seedCommand,
				Flags: append(indexFlags(),
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "YAML or JSON taxonomy file (default: built-in sample taxonomy)",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Delete the collection before seeding",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent upserts (0 uses half the CPUs)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Find the category and subcategory for a query",
				ArgsUsage: "<query words>",
				Action:    searchCommand,
				Flags: append(indexFlags(),
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Candidates fetched per stage",
						Value: search.DefaultTopK,
					},
				),
			},
			{
				Name:   "reset",
				Usage:  "Delete and recreate the collection",
				Action: resetCommand,
				Flags:  indexFlags(),
			},
			{
				Name:   "count",
				Usage:  "Print the number of entries in the collection",
				Action: countCommand,
				Flags:  indexFlags(),
			},
		},
	}
}

// indexFlags returns the flags every command needs to open an index.
func indexFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Database directory for embedded engines",
			Value:   "./taxonomy_db",
			EnvVars: []string{"TAXONOMIST_DB"},
		},
		&cli.StringFlag{
			Name:    "engine",
			Aliases: []string{"e"},
			Usage:   "Storage engine (" + strings.Join(taxonomist.Engines, ", ") + ")",
			Value:   taxonomist.EngineChromem,
			EnvVars: []string{"TAXONOMIST_ENGINE"},
		},
		&cli.StringFlag{
			Name:    "collection",
			Aliases: []string{"c"},
			Usage:   "Collection name",
			Value:   taxonomist.DefaultCollection,
			EnvVars: []string{"TAXONOMIST_COLLECTION"},
		},
		&cli.StringFlag{
			Name:    "qdrant-addr",
			Usage:   "Qdrant gRPC address",
			Value:   "localhost:6334",
			EnvVars: []string{"QDRANT_ADDR"},
		},
		&cli.StringFlag{
			Name:    "embedding-backend",
			Usage:   "Embedding client (" + ai.BackendLangchain + ", " + ai.BackendGoOpenAI + ")",
			Value:   defaults.Backend,
			EnvVars: []string{"TAXONOMIST_EMBEDDING_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   defaults.EmbeddingHost,
			EnvVars: []string{"OPENAI_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   defaults.EmbeddingModel,
			EnvVars: []string{"TAXONOMIST_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the embedding service",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.IntFlag{
			Name:  "dimensions",
			Usage: "Requested embedding size (0 lets the model decide)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for a single embedding call",
			Value: defaults.Timeout,
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Maximum attempts for transient embedding failures",
			Value: defaults.MaxAttempts,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
