package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/medkb/bookvec/vectorstore"
	"github.com/medkb/bookvec/vectorstore/pgvector"
	"github.com/medkb/bookvec/vectorstore/pinecone"
)

// openStore builds the vector store named by --target.
func openStore(ctx context.Context, c *cli.Context) (vectorstore.Store, error) {
	switch target := c.String("target"); target {
	case "pinecone":
		if c.String("pinecone-api-key") == "" {
			return nil, fmt.Errorf("pinecone target needs --pinecone-api-key (or PINECONE_API_KEY)")
		}
		return pinecone.New(ctx, pinecone.Config{
			APIKey:    c.String("pinecone-api-key"),
			IndexName: c.String("index"),
			Namespace: c.String("namespace"),
			Dimension: c.Int("embedding-dimension"),
			Region:    c.String("region"),
		})
	case "pgvector":
		if c.String("database-url") == "" {
			return nil, fmt.Errorf("pgvector target needs --database-url (or DATABASE_URL)")
		}
		return pgvector.New(ctx, pgvector.Config{
			DatabaseURL: c.String("database-url"),
			Table:       c.String("table"),
			Dimension:   c.Int("embedding-dimension"),
		})
	default:
		return nil, fmt.Errorf("unknown target %q: use pinecone or pgvector", target)
	}
}
