// Copyright 2025 The bookvec Authors
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A .env file in the working directory supplies the same variables the
	// flags read; absence is fine.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bookvec",
		Usage: "Convert textbook text into chunked datasets and upload them to a vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "convert",
				Usage:  "Convert raw book text files into a structured chunk CSV",
				Action: convertCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Glob of source text files",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Path of the CSV to write",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "book-title",
						Usage:   "Book title stamped on every chunk",
						Value:   "Nelson Textbook of Pediatrics",
						EnvVars: []string{"BOOK_TITLE"},
					},
					&cli.StringFlag{
						Name:    "book-edition",
						Usage:   "Book edition stamped on every chunk",
						Value:   "22",
						EnvVars: []string{"BOOK_EDITION"},
					},
					&cli.IntFlag{
						Name:    "max-tokens",
						Usage:   "Token ceiling per chunk",
						Value:   800,
						EnvVars: []string{"MAX_TOKENS"},
					},
					&cli.IntFlag{
						Name:    "min-chars",
						Usage:   "Minimum characters before a boundary may emit a chunk",
						Value:   50,
						EnvVars: []string{"MIN_CHARS"},
					},
				},
			},
			{
				Name:   "upload",
				Usage:  "Embed a chunk CSV and upsert it into a vector store",
				Action: uploadCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Chunk CSV to upload",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "batch-size",
						Usage:   "Number of chunks to embed and upsert per batch",
						Value:   100,
						EnvVars: []string{"BATCH_SIZE"},
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:    "max-retries",
						Usage:   "Maximum attempts for failed operations",
						Value:   3,
						EnvVars: []string{"MAX_RETRIES"},
					},
					&cli.DurationFlag{
						Name:    "retry-delay",
						Usage:   "Fixed pause between attempts",
						Value:   5 * time.Second,
						EnvVars: []string{"RETRY_DELAY"},
					},
					&cli.DurationFlag{
						Name:    "sleep-between",
						Usage:   "Pause between batches",
						EnvVars: []string{"SLEEP_BETWEEN"},
					},
					&cli.BoolFlag{
						Name:    "normalize",
						Usage:   "Normalize embeddings to unit length",
						EnvVars: []string{"NORMALIZE"},
					},
					&cli.BoolFlag{
						Name:    "dry-run",
						Usage:   "Embed into an in-memory store, write nothing remote",
						EnvVars: []string{"DRY_RUN"},
					},
					&cli.StringFlag{
						Name:    "checkpoint-dir",
						Usage:   "Directory of the resume ledger (empty disables resuming)",
						EnvVars: []string{"CHECKPOINT_DIR"},
					},
					&cli.BoolFlag{
						Name:  "restart",
						Usage: "Clear the resume ledger for this target before uploading",
					},
				),
			},
			{
				Name:   "backfill",
				Usage:  "Embed pgvector rows stored without an embedding",
				Action: backfillCommand,
				Flags: append(embeddingFlags(),
					&cli.StringFlag{
						Name:     "database-url",
						Usage:    "Postgres connection string",
						EnvVars:  []string{"DATABASE_URL"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "table",
						Usage:   "Chunk table name",
						EnvVars: []string{"PG_TABLE"},
					},
					&cli.IntFlag{
						Name:    "batch-size",
						Usage:   "Number of rows to embed per batch",
						Value:   100,
						EnvVars: []string{"BATCH_SIZE"},
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N rows",
						Value: 100,
					},
					&cli.IntFlag{
						Name:    "max-retries",
						Usage:   "Maximum attempts for failed operations",
						Value:   3,
						EnvVars: []string{"MAX_RETRIES"},
					},
					&cli.DurationFlag{
						Name:    "retry-delay",
						Usage:   "Fixed pause between attempts",
						Value:   5 * time.Second,
						EnvVars: []string{"RETRY_DELAY"},
					},
					&cli.DurationFlag{
						Name:    "sleep-between",
						Usage:   "Pause between batches",
						EnvVars: []string{"SLEEP_BETWEEN"},
					},
					&cli.BoolFlag{
						Name:    "normalize",
						Usage:   "Normalize embeddings to unit length",
						EnvVars: []string{"NORMALIZE"},
					},
					&cli.BoolFlag{
						Name:    "dry-run",
						Usage:   "Embed one batch without writing, to validate the endpoint",
						EnvVars: []string{"DRY_RUN"},
					},
				),
			},
			{
				Name:   "query",
				Usage:  "Embed a question and print the best matching chunks",
				Action: queryCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:    "question",
						Aliases: []string{"q"},
						Usage:   "Question text to search for",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of matches to print",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode: vector, fts, trigram, hybrid (pgvector only beyond vector)",
						Value: "vector",
					},
					&cli.StringFlag{
						Name:  "filter",
						Usage: `JSON metadata containment filter, e.g. '{"chapter_number":"185"}' (pgvector only)`,
					},
				),
			},
			{
				Name:   "migrate",
				Usage:  "Recreate the pgvector embedding column at a new dimension (drops stored embeddings)",
				Action: migrateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "database-url",
						Usage:    "Postgres connection string",
						Required: true,
						EnvVars:  []string{"DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:    "table",
						Usage:   "Chunk table name",
						EnvVars: []string{"PG_TABLE"},
					},
					&cli.IntFlag{
						Name:     "dimension",
						Usage:    "New embedding vector dimension",
						Required: true,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print vector counts for a store",
				Action: statsCommand,
				Flags:  storeFlags(),
			},
		},
	}
}

// storeFlags are shared by every command that opens a vector store. The
// target picks the backend; the rest configure whichever backend is chosen.
func storeFlags() []cli.Flag {
	return append(embeddingFlags(),
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "Vector store backend: pinecone or pgvector",
			Value:   "pinecone",
			EnvVars: []string{"UPLOAD_TARGET"},
		},
		&cli.StringFlag{
			Name:    "pinecone-api-key",
			Usage:   "Pinecone API key",
			EnvVars: []string{"PINECONE_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "index",
			Usage:   "Pinecone index name",
			Value:   "nelson-book",
			EnvVars: []string{"PINECONE_INDEX"},
		},
		&cli.StringFlag{
			Name:    "namespace",
			Usage:   "Pinecone namespace",
			EnvVars: []string{"PINECONE_NAMESPACE"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Region for Pinecone index creation",
			Value:   "us-east-1",
			EnvVars: []string{"PINECONE_REGION"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Postgres connection string (pgvector target)",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "table",
			Usage:   "Chunk table name (pgvector target)",
			EnvVars: []string{"PG_TABLE"},
		},
	)
}

// embeddingFlags configure the embedding endpoint.
func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.IntFlag{
			Name:    "embedding-dimension",
			Usage:   "Embedding vector dimension",
			Value:   384,
			EnvVars: []string{"EMBEDDING_DIMENSION"},
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
