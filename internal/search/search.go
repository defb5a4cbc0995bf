// Package search finds historical RCA documents similar to a problem
// description.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/koopa0/rca-agent/internal/knowledge"
	"github.com/koopa0/rca-agent/internal/vector"
)

// Embedder produces an embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index queries the vector index.
type Index interface {
	Query(ctx context.Context, embedding []float32, k int) ([]vector.Entry, error)
}

// Documents fetches stored documents by id.
type Documents interface {
	ByIDs(ctx context.Context, ids []int64) (map[int64]knowledge.Document, error)
}

// Result is one similar historical incident, most similar first.
type Result struct {
	RCAID           int64    `json:"rca_id"`
	Filename        string   `json:"filename"`
	ProjectName     string   `json:"project_name"`
	Problems        []string `json:"problems"`
	Solutions       []string `json:"solutions"`
	RootCauses      []string `json:"root_causes"`
	SimilarityScore float64  `json:"similarity_score"`
}

// Searcher joins vector hits with their stored documents.
type Searcher struct {
	embedder Embedder
	index    Index
	docs     Documents
	logger   *slog.Logger
}

// New creates a Searcher. A nil logger falls back to slog.Default().
func New(embedder Embedder, index Index, docs Documents, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{embedder: embedder, index: index, docs: docs, logger: logger}
}

// Similar returns up to topN incidents similar to the problem, in index
// rank order. Hits whose document has been removed are dropped without
// disturbing the ranking of the rest.
func (s *Searcher) Similar(ctx context.Context, problem string, topN int) ([]Result, error) {
	embedding, err := s.embedder.Embed(ctx, problem)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	entries, err := s.index.Query(ctx, embedding, topN)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	if len(entries) == 0 {
		return []Result{}, nil
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	docs, err := s.docs.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching matched documents: %w", err)
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		doc, ok := docs[entry.ID]
		if !ok {
			s.logger.Warn("vector hit has no stored document", "document_id", entry.ID)
			continue
		}
		results = append(results, Result{
			RCAID:           doc.ID,
			Filename:        doc.Filename,
			ProjectName:     doc.ProjectName,
			Problems:        doc.Problems,
			Solutions:       doc.Solutions,
			RootCauses:      doc.RootCauses,
			SimilarityScore: similarityScore(entry.Distance),
		})
	}
	return results, nil
}

// similarityScore maps a cosine distance to a 0..100 percentage, rounded
// to two decimals. Distances of 1 or more clamp to 0.
func similarityScore(distance float64) float64 {
	score := math.Max(0, 1-distance) * 100
	return math.Round(score*100) / 100
}
