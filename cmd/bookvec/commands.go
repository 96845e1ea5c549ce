package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/medkb/bookvec/ai"
	"github.com/medkb/bookvec/ai/openai"
	"github.com/medkb/bookvec/checkpoint"
	"github.com/medkb/bookvec/chunker"
	"github.com/medkb/bookvec/core"
	"github.com/medkb/bookvec/dataset"
	"github.com/medkb/bookvec/upload"
	"github.com/medkb/bookvec/vectorstore"
	"github.com/medkb/bookvec/vectorstore/pgvector"
)

func convertCommand(c *cli.Context) error {
	paths, err := filepath.Glob(c.String("input"))
	if err != nil {
		return fmt.Errorf("bad input glob: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match %s", c.String("input"))
	}
	sort.Strings(paths)

	splitter := chunker.NewSplitter(chunker.Config{
		BookTitle:        c.String("book-title"),
		BookEdition:      c.String("book-edition"),
		MaxTokens:        c.Int("max-tokens"),
		MinContentLength: c.Int("min-chars"),
	})

	out, err := os.Create(c.String("output"))
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	writer := dataset.NewWriter(out)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, path := range paths {
		records, err := splitter.SplitFile(path)
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write chunk: %w", err)
			}
		}
		fmt.Fprintf(os.Stderr, "%s: %d chunks\n", path, len(records))
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %d chunks to %s\n", writer.Written(), c.String("output"))
	return nil
}

func uploadCommand(c *cli.Context) error {
	ctx := context.Background()

	records, err := readDataset(c.String("input"))
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	target := c.String("target")
	var store vectorstore.Store
	if c.Bool("dry-run") {
		fmt.Fprintln(os.Stderr, "Dry run: uploading to an in-memory store")
		target = "dry-run"
		store = vectorstore.NewMemory()
	} else {
		store, err = openStore(ctx, c)
		if err != nil {
			return err
		}
	}
	defer store.Close()

	var ledger *checkpoint.Ledger
	if dir := c.String("checkpoint-dir"); dir != "" && !c.Bool("dry-run") {
		ledger, err = checkpoint.Open(dir, false)
		if err != nil {
			return fmt.Errorf("open checkpoint ledger: %w", err)
		}
		defer ledger.Close()

		if c.Bool("restart") {
			if err := ledger.Clear(target); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Cleared resume ledger for %s\n", target)
		}
	}

	cfg := &upload.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		SleepBetween:   c.Duration("sleep-between"),
		Normalize:      c.Bool("normalize"),
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	uploader := upload.NewUploader(embedder, store, ledger, target, cfg, os.Stderr)

	result, err := uploader.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	// ivfflat centroids come from existing rows, so the vector index is
	// built once real data has landed rather than at schema creation.
	if pg, ok := store.(*pgvector.Store); ok && result.Uploaded > 0 {
		if err := pg.EnsureEmbeddingIndex(ctx); err != nil {
			return err
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d chunks failed to upload", result.Failed)
	}
	return nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	store, err := pgvector.New(ctx, pgvector.Config{
		DatabaseURL: c.String("database-url"),
		Table:       c.String("table"),
		Dimension:   c.Int("embedding-dimension"),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := &upload.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		SleepBetween:   c.Duration("sleep-between"),
		Normalize:      c.Bool("normalize"),
	}

	backfiller := upload.NewBackfiller(store, embedder, cfg, os.Stderr)
	backfiller.DryRun = c.Bool("dry-run")

	if _, err := backfiller.Run(ctx); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer store.Close()

	question := c.String("question")
	topK := c.Int("top-k")
	mode := c.String("mode")

	var matches []vectorstore.Match
	if filterArg := c.String("filter"); filterArg != "" {
		pg, ok := store.(*pgvector.Store)
		if !ok {
			return fmt.Errorf("metadata filter needs the pgvector target")
		}
		var filter map[string]any
		if err := json.Unmarshal([]byte(filterArg), &filter); err != nil {
			return fmt.Errorf("parse filter: %w", err)
		}
		matches, err = pg.FilterByMetadata(ctx, filter, topK)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printMatches(matches)
	}

	if question == "" {
		return fmt.Errorf("either --question or --filter is required")
	}

	switch mode {
	case "vector", "hybrid":
		embedder, err := newEmbedder(c)
		if err != nil {
			return err
		}
		vector, err := embedder.EmbedText(ctx, question)
		if err != nil {
			return fmt.Errorf("embed question: %w", err)
		}

		if mode == "vector" {
			matches, err = store.Query(ctx, vector, topK)
		} else {
			pg, ok := store.(*pgvector.Store)
			if !ok {
				return fmt.Errorf("hybrid search needs the pgvector target")
			}
			matches, err = pg.SearchHybrid(ctx, question, vector, topK)
		}
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	case "fts", "trigram":
		pg, ok := store.(*pgvector.Store)
		if !ok {
			return fmt.Errorf("%s search needs the pgvector target", mode)
		}
		if mode == "fts" {
			matches, err = pg.SearchFullText(ctx, question, topK)
		} else {
			matches, err = pg.SearchTrigram(ctx, question, topK)
		}
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown search mode %q", mode)
	}

	return printMatches(matches)
}

func printMatches(matches []vectorstore.Match) error {
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, match := range matches {
		fmt.Printf("%d. %s (score %.4f)\n", i+1, match.ID, match.Score)
		if chapter := metaField(match.Metadata, "chapter_number"); chapter != "" {
			fmt.Printf("   Chapter %s: %s\n", chapter, metaField(match.Metadata, "chapter_title"))
		}
		if section := metaField(match.Metadata, "section_title"); section != "" {
			fmt.Printf("   Section: %s\n", section)
		}
		if preview := metaField(match.Metadata, "content_preview"); preview != "" {
			fmt.Printf("   %s\n", preview)
		}
		fmt.Println()
	}
	return nil
}

func migrateCommand(c *cli.Context) error {
	ctx := context.Background()
	dimension := c.Int("dimension")

	store, err := pgvector.New(ctx, pgvector.Config{
		DatabaseURL: c.String("database-url"),
		Table:       c.String("table"),
		Dimension:   dimension,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.MigrateDimension(ctx, dimension); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Embedding column recreated at dimension %d; run backfill to repopulate.\n", dimension)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Target:    %s\n", c.String("target"))
	fmt.Printf("Vectors:   %d\n", stats.VectorCount)
	fmt.Printf("Dimension: %d\n", stats.Dimension)

	if pg, ok := store.(*pgvector.Store); ok {
		missing, err := pg.CountMissingEmbeddings(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Missing embeddings: %d\n", missing)
	}
	return nil
}

// readDataset loads a chunk CSV fully into memory. Upload ordinals are file
// positions, so the whole file is read in order.
func readDataset(path string) ([]*core.ChunkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := dataset.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s has no chunks", path)
	}
	return records, nil
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("embedding-dimension")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return embedder, nil
}

func metaField(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
