package services

import (
	"context"
	"fmt"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
	"github.com/lettersmith/lettersmith-core/internal/vecindex"
)

// Retriever answers "which stored chunks best match this query" against
// a bundle's index. Results carry the overlapping-chunk text, so each
// hit already includes its neighbour context.
type Retriever struct {
	embedder driven.EmbeddingService
}

// NewRetriever creates a retriever over the given embedding service.
func NewRetriever(embedder driven.EmbeddingService) *Retriever {
	return &Retriever{embedder: embedder}
}

// Query is one retrieval intent: a query string and how many hits to
// return for it.
type Query struct {
	Text string
	K    int
}

// Retrieve embeds a single query and returns its top-k snippets in
// ranked order (best match first).
func (r *Retriever) Retrieve(ctx context.Context, ix *vecindex.Index, chunks []string, query string, k int) ([]domain.Snippet, error) {
	results, err := r.RetrieveMany(ctx, ix, chunks, []Query{{Text: query, K: k}})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// RetrieveMany embeds all queries in one gateway call and searches the
// index once per query. The result slice is index-aligned with queries.
func (r *Retriever) RetrieveMany(ctx context.Context, ix *vecindex.Index, chunks []string, queries []Query) ([][]domain.Snippet, error) {
	if ix.Count() != len(chunks) {
		return nil, fmt.Errorf("%w: index holds %d vectors for %d chunks", domain.ErrBundleCorrupt, ix.Count(), len(chunks))
	}
	if len(queries) == 0 {
		return nil, nil
	}

	texts := make([]string, len(queries))
	for i, q := range queries {
		texts[i] = q.Text
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed queries: %w", err)
	}
	if len(vectors) != len(queries) {
		return nil, fmt.Errorf("embed queries: got %d vectors for %d queries", len(vectors), len(queries))
	}

	all := make([][]domain.Snippet, len(queries))
	for i, q := range queries {
		hits, err := ix.Search(vectors[i], q.K)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", q.Text, err)
		}

		snippets := make([]domain.Snippet, len(hits))
		for j, hit := range hits {
			snippets[j] = domain.Snippet{
				Text:     chunks[hit.Ordinal],
				Distance: hit.Distance,
			}
		}
		all[i] = snippets
	}
	return all, nil
}
