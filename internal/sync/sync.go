// Package sync ingests RCA documents from a blob source into the knowledge
// base and the vector index.
//
// Ingestion is hash-gated: a blob whose content hash matches the stored one
// is skipped without a download. Everything else is downloaded, extracted,
// upserted, and re-embedded.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/koopa0/rca-agent/internal/extract"
	"github.com/koopa0/rca-agent/internal/gcs"
	"github.com/koopa0/rca-agent/internal/knowledge"
)

// Source lists and downloads document blobs.
type Source interface {
	ListBlobs(ctx context.Context) ([]gcs.BlobInfo, error)
	Download(ctx context.Context, name string) ([]byte, error)
	URI(name string) string
}

// Extractor turns raw document bytes into a structured record.
type Extractor interface {
	Extract(ctx context.Context, content []byte, filename string) (*extract.Document, error)
}

// Documents is the knowledge store surface the orchestrator needs.
type Documents interface {
	Upsert(ctx context.Context, doc knowledge.Document) (int64, error)
	HashIndex(ctx context.Context) (map[string]string, error)
}

// Embedder produces an embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index stores document embeddings.
type Index interface {
	Upsert(ctx context.Context, documentID int64, embedding []float32, filename, projectName string) error
}

// Stats reports one sync run. Processed counts newly ingested documents,
// Updated counts re-ingested ones, Skipped counts unchanged blobs, and
// Errors counts blobs that failed to ingest.
type Stats struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Orchestrator runs the ingestion pipeline.
type Orchestrator struct {
	source    Source
	extractor Extractor
	docs      Documents
	embedder  Embedder
	index     Index
	logger    *slog.Logger
}

// New creates an Orchestrator. A nil logger falls back to slog.Default().
func New(source Source, extractor Extractor, docs Documents, embedder Embedder, index Index, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		source:    source,
		extractor: extractor,
		docs:      docs,
		embedder:  embedder,
		index:     index,
		logger:    logger,
	}
}

// Run syncs every blob in the source. Per-blob download, extraction, and
// embedding failures are counted and the run continues; store failures
// abort and return the stats accumulated so far.
func (o *Orchestrator) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	hashes, err := o.docs.HashIndex(ctx)
	if err != nil {
		return stats, fmt.Errorf("loading document hashes: %w", err)
	}

	blobs, err := o.source.ListBlobs(ctx)
	if err != nil {
		return stats, fmt.Errorf("listing blobs: %w", err)
	}

	for _, blob := range blobs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		filename := path.Base(blob.Name)
		existingHash, known := hashes[filename]
		if known && existingHash == blob.ContentHash {
			stats.Skipped++
			continue
		}

		id, err := o.ingest(ctx, blob, filename)
		if err != nil {
			var ingestErr *ingestError
			if errors.As(err, &ingestErr) {
				if errors.Is(ingestErr.err, extract.ErrUnsupportedFormat) {
					o.logger.Debug("skipping unsupported blob", "blob", blob.Name)
				} else {
					o.logger.Warn("failed to sync blob", "blob", blob.Name, "error", ingestErr.err)
				}
				stats.Errors++
				continue
			}
			return stats, err
		}

		o.logger.Info("synced document", "filename", filename, "document_id", id)
		if known {
			stats.Updated++
		} else {
			stats.Processed++
		}
	}

	o.logger.Info("sync complete",
		"processed", stats.Processed,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
	)
	return stats, nil
}

// ingestError marks a per-blob failure the run can survive.
type ingestError struct {
	err error
}

func (e *ingestError) Error() string { return e.err.Error() }
func (e *ingestError) Unwrap() error { return e.err }

func (o *Orchestrator) ingest(ctx context.Context, blob gcs.BlobInfo, filename string) (int64, error) {
	content, err := o.source.Download(ctx, blob.Name)
	if err != nil {
		return 0, &ingestError{fmt.Errorf("downloading: %w", err)}
	}

	doc, err := o.extractor.Extract(ctx, content, filename)
	if err != nil {
		return 0, &ingestError{err}
	}

	id, err := o.docs.Upsert(ctx, knowledge.Document{
		Filename:       filename,
		SourcePath:     o.source.URI(blob.Name),
		ProjectName:    doc.Extracted.ProjectName,
		Problems:       doc.Extracted.Problems,
		Solutions:      doc.Extracted.Solutions,
		RootCauses:     doc.Extracted.RootCauses,
		LessonsLearned: doc.Extracted.LessonsLearned,
		FullContent:    doc.FullContent,
		ContentHash:    blob.ContentHash,
	})
	if err != nil {
		return 0, fmt.Errorf("storing document %q: %w", filename, err)
	}

	embedding, err := o.embedder.Embed(ctx, embeddingText(doc.Extracted))
	if err != nil {
		return 0, &ingestError{fmt.Errorf("embedding: %w", err)}
	}

	if err := o.index.Upsert(ctx, id, embedding, filename, doc.Extracted.ProjectName); err != nil {
		return 0, fmt.Errorf("indexing document %q: %w", filename, err)
	}
	return id, nil
}

// embeddingText builds the text that represents a document in the vector
// index.
func embeddingText(extracted extract.Extracted) string {
	return fmt.Sprintf("Project: %s\nProblems: %s\nRoot Causes: %s\nSolutions: %s",
		extracted.ProjectName,
		strings.Join(extracted.Problems, ", "),
		strings.Join(extracted.RootCauses, ", "),
		strings.Join(extracted.Solutions, ", "),
	)
}
