// Package knowledge persists extracted RCA documents.
//
// List-valued fields (problems, solutions, root causes, lessons learned) are
// stored as JSON-encoded text columns; this package is the only place that
// encoding crosses, so callers always see []string.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/koopa0/rca-agent/internal/sqlc"
)

// Querier is the subset of generated queries the store needs.
type Querier interface {
	UpsertRcaDocument(ctx context.Context, arg sqlc.UpsertRcaDocumentParams) error
	GetRcaDocumentIDByFilename(ctx context.Context, filename string) (int64, error)
	ListRcaDocuments(ctx context.Context) ([]sqlc.RcaDocument, error)
	GetRcaDocumentsByIDs(ctx context.Context, ids []int64) ([]sqlc.RcaDocument, error)
	ListRcaDocumentHashes(ctx context.Context) ([]sqlc.ListRcaDocumentHashesRow, error)
	CountRcaDocuments(ctx context.Context) (int64, error)
}

// Document is an RCA document as callers see it.
type Document struct {
	ID             int64
	Filename       string
	SourcePath     string
	ProjectName    string
	Problems       []string
	Solutions      []string
	RootCauses     []string
	LessonsLearned []string
	FullContent    string
	ContentHash    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store reads and writes RCA documents.
type Store struct {
	querier Querier
	logger  *slog.Logger
}

// NewStore creates a Store. A nil logger falls back to slog.Default().
func NewStore(querier Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{querier: querier, logger: logger}
}

// Upsert inserts or replaces the document keyed by filename and returns the
// id assigned to it. An update keeps the existing id.
func (s *Store) Upsert(ctx context.Context, doc Document) (int64, error) {
	err := s.querier.UpsertRcaDocument(ctx, sqlc.UpsertRcaDocumentParams{
		Filename:       doc.Filename,
		SourcePath:     doc.SourcePath,
		ProjectName:    nullable(doc.ProjectName),
		Problems:       encodeList(doc.Problems),
		Solutions:      encodeList(doc.Solutions),
		RootCauses:     encodeList(doc.RootCauses),
		LessonsLearned: encodeList(doc.LessonsLearned),
		FullContent:    nullable(doc.FullContent),
		ContentHash:    nullable(doc.ContentHash),
	})
	if err != nil {
		return 0, fmt.Errorf("upserting document %q: %w", doc.Filename, err)
	}

	id, err := s.querier.GetRcaDocumentIDByFilename(ctx, doc.Filename)
	if err != nil {
		return 0, fmt.Errorf("reading id for document %q: %w", doc.Filename, err)
	}
	return id, nil
}

// List returns all documents ordered by most recently updated first.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.querier.ListRcaDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, fromRow(row))
	}
	return docs, nil
}

// ByIDs fetches the documents for the given ids, keyed by id. Missing ids
// are simply absent from the map.
func (s *Store) ByIDs(ctx context.Context, ids []int64) (map[int64]Document, error) {
	if len(ids) == 0 {
		return map[int64]Document{}, nil
	}

	rows, err := s.querier.GetRcaDocumentsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching documents by ids: %w", err)
	}

	docs := make(map[int64]Document, len(rows))
	for _, row := range rows {
		docs[row.ID] = fromRow(row)
	}
	return docs, nil
}

// HashIndex returns content hashes keyed by filename, for change detection.
func (s *Store) HashIndex(ctx context.Context) (map[string]string, error) {
	rows, err := s.querier.ListRcaDocumentHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing document hashes: %w", err)
	}

	index := make(map[string]string, len(rows))
	for _, row := range rows {
		index[row.Filename] = deref(row.ContentHash)
	}
	return index, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	count, err := s.querier.CountRcaDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

func fromRow(row sqlc.RcaDocument) Document {
	return Document{
		ID:             row.ID,
		Filename:       row.Filename,
		SourcePath:     row.SourcePath,
		ProjectName:    deref(row.ProjectName),
		Problems:       decodeList(row.Problems),
		Solutions:      decodeList(row.Solutions),
		RootCauses:     decodeList(row.RootCauses),
		LessonsLearned: decodeList(row.LessonsLearned),
		FullContent:    deref(row.FullContent),
		ContentHash:    deref(row.ContentHash),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

// encodeList JSON-encodes a list field for storage. A nil slice encodes as
// an empty list.
func encodeList(items []string) *string {
	if items == nil {
		items = []string{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		// []string cannot fail to marshal.
		panic(err)
	}
	s := string(encoded)
	return &s
}

// decodeList parses a stored list field. Null or malformed columns decode
// as empty.
func decodeList(column *string) []string {
	if column == nil || *column == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(*column), &items); err != nil {
		return []string{}
	}
	if items == nil {
		return []string{}
	}
	return items
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
