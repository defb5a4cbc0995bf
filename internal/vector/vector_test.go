package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/koopa0/rca-agent/internal/sqlc"
)

type mockQuerier struct {
	upserted []sqlc.UpsertRcaEmbeddingParams
	rows     []sqlc.QueryRcaEmbeddingsRow
	queryArg sqlc.QueryRcaEmbeddingsParams
	queryErr error
	deleted  []int64
}

func (m *mockQuerier) UpsertRcaEmbedding(_ context.Context, arg sqlc.UpsertRcaEmbeddingParams) error {
	m.upserted = append(m.upserted, arg)
	return nil
}

func (m *mockQuerier) QueryRcaEmbeddings(_ context.Context, arg sqlc.QueryRcaEmbeddingsParams) ([]sqlc.QueryRcaEmbeddingsRow, error) {
	m.queryArg = arg
	return m.rows, m.queryErr
}

func (m *mockQuerier) DeleteRcaEmbedding(_ context.Context, documentID int64) error {
	m.deleted = append(m.deleted, documentID)
	return nil
}

func strPtr(s string) *string { return &s }

func TestIndexUpsert(t *testing.T) {
	mock := &mockQuerier{}
	idx := NewIndex(mock)

	err := idx.Upsert(context.Background(), 7, []float32{0.1, 0.2, 0.3}, "outage.md", "checkout")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if len(mock.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(mock.upserted))
	}
	arg := mock.upserted[0]
	if arg.DocumentID != 7 || arg.Filename != "outage.md" {
		t.Errorf("upsert params = %+v", arg)
	}
	if arg.ProjectName == nil || *arg.ProjectName != "checkout" {
		t.Errorf("ProjectName = %v", arg.ProjectName)
	}
	if len(arg.Embedding.Slice()) != 3 {
		t.Errorf("embedding dims = %d", len(arg.Embedding.Slice()))
	}
}

func TestIndexUpsertBlankProject(t *testing.T) {
	mock := &mockQuerier{}
	idx := NewIndex(mock)

	if err := idx.Upsert(context.Background(), 7, []float32{0.1}, "outage.md", ""); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if mock.upserted[0].ProjectName != nil {
		t.Errorf("blank project must store null, got %v", mock.upserted[0].ProjectName)
	}
}

func TestIndexQuery(t *testing.T) {
	mock := &mockQuerier{rows: []sqlc.QueryRcaEmbeddingsRow{
		{DocumentID: 1, Filename: "a.md", ProjectName: strPtr("checkout"), Distance: 0.12},
		{DocumentID: 2, Filename: "b.md", Distance: 0.45},
	}}
	idx := NewIndex(mock)

	entries, err := idx.Query(context.Background(), []float32{0.5, 0.5}, 5)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if mock.queryArg.ResultLimit != 5 {
		t.Errorf("ResultLimit = %d, want 5", mock.queryArg.ResultLimit)
	}
	if len(entries) != 2 {
		t.Fatalf("Query() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != 1 || entries[0].ProjectName != "checkout" || entries[0].Distance != 0.12 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].ProjectName != "" {
		t.Errorf("null project = %q, want empty", entries[1].ProjectName)
	}
}

func TestIndexQueryError(t *testing.T) {
	mock := &mockQuerier{queryErr: errors.New("connection refused")}
	idx := NewIndex(mock)

	if _, err := idx.Query(context.Background(), []float32{0.5}, 5); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestIndexDelete(t *testing.T) {
	mock := &mockQuerier{}
	idx := NewIndex(mock)

	if err := idx.Delete(context.Background(), 9); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(mock.deleted) != 1 || mock.deleted[0] != 9 {
		t.Errorf("deleted = %v", mock.deleted)
	}
}
