package database

import (
	"context"

	"github.com/tieubaoca/arxchive-be/types"
)

// ChunkStore is the similarity search client. Retrieval is scoped to a
// single paper via its relative path; an empty result set is a valid
// outcome (the filter narrowed everything away), not an error.
type ChunkStore interface {
	// SearchChunks returns up to limit passages of the paper stored
	// under relativePath, ordered by similarity to the query.
	SearchChunks(ctx context.Context, query string, relativePath string, limit int) ([]types.Chunk, error)
}
