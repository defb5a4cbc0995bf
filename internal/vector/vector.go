// Package vector maintains the pgvector similarity index over RCA
// documents.
package vector

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/koopa0/rca-agent/internal/sqlc"
)

// Querier is the subset of generated queries the index needs.
type Querier interface {
	UpsertRcaEmbedding(ctx context.Context, arg sqlc.UpsertRcaEmbeddingParams) error
	QueryRcaEmbeddings(ctx context.Context, arg sqlc.QueryRcaEmbeddingsParams) ([]sqlc.QueryRcaEmbeddingsRow, error)
	DeleteRcaEmbedding(ctx context.Context, documentID int64) error
}

// Entry is one nearest-neighbor hit, closest first.
type Entry struct {
	ID          int64
	Filename    string
	ProjectName string
	Distance    float64
}

// Index stores and queries document embeddings.
type Index struct {
	querier Querier
}

// NewIndex creates an Index.
func NewIndex(querier Querier) *Index {
	return &Index{querier: querier}
}

// Upsert stores the embedding for a document, replacing any previous one.
func (i *Index) Upsert(ctx context.Context, documentID int64, embedding []float32, filename, projectName string) error {
	params := sqlc.UpsertRcaEmbeddingParams{
		DocumentID: documentID,
		Filename:   filename,
		Embedding:  pgvector.NewVector(embedding),
	}
	if projectName != "" {
		params.ProjectName = &projectName
	}
	if err := i.querier.UpsertRcaEmbedding(ctx, params); err != nil {
		return fmt.Errorf("upserting embedding for document %d: %w", documentID, err)
	}
	return nil
}

// Query returns up to k nearest entries by cosine distance, closest first.
func (i *Index) Query(ctx context.Context, embedding []float32, k int) ([]Entry, error) {
	rows, err := i.querier.QueryRcaEmbeddings(ctx, sqlc.QueryRcaEmbeddingsParams{
		QueryEmbedding: pgvector.NewVector(embedding),
		ResultLimit:    int32(k),
	})
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry := Entry{
			ID:       row.DocumentID,
			Filename: row.Filename,
			Distance: row.Distance,
		}
		if row.ProjectName != nil {
			entry.ProjectName = *row.ProjectName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Delete removes a document's embedding. Deleting a missing embedding is
// not an error.
func (i *Index) Delete(ctx context.Context, documentID int64) error {
	if err := i.querier.DeleteRcaEmbedding(ctx, documentID); err != nil {
		return fmt.Errorf("deleting embedding for document %d: %w", documentID, err)
	}
	return nil
}
