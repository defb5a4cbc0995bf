package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/koopa0/rca-agent/internal/extract"
	"github.com/koopa0/rca-agent/internal/gcs"
	"github.com/koopa0/rca-agent/internal/knowledge"
	"github.com/koopa0/rca-agent/internal/log"
)

type mockSource struct {
	blobs       []gcs.BlobInfo
	content     map[string][]byte
	downloadErr error
	downloads   []string
}

func (m *mockSource) ListBlobs(context.Context) ([]gcs.BlobInfo, error) {
	return m.blobs, nil
}

func (m *mockSource) Download(_ context.Context, name string) ([]byte, error) {
	m.downloads = append(m.downloads, name)
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return m.content[name], nil
}

func (m *mockSource) URI(name string) string {
	return "gs://test-bucket/" + name
}

type mockExtractor struct {
	err     error
	calls   []string
	project string
}

func (m *mockExtractor) Extract(_ context.Context, content []byte, filename string) (*extract.Document, error) {
	m.calls = append(m.calls, filename)
	if m.err != nil {
		return nil, m.err
	}
	return &extract.Document{
		Filename:    filename,
		FullContent: string(content),
		Extracted: extract.Extracted{
			ProjectName: m.project,
			Problems:    []string{"timeouts"},
			Solutions:   []string{"rollback"},
			RootCauses:  []string{"bad deploy"},
		},
	}, nil
}

type mockDocs struct {
	hashes    map[string]string
	upsertErr error
	upserted  []knowledge.Document
	nextID    int64
}

func (m *mockDocs) Upsert(_ context.Context, doc knowledge.Document) (int64, error) {
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.upserted = append(m.upserted, doc)
	m.nextID++
	return m.nextID, nil
}

func (m *mockDocs) HashIndex(context.Context) (map[string]string, error) {
	if m.hashes == nil {
		return map[string]string{}, nil
	}
	return m.hashes, nil
}

type mockEmbedder struct {
	err   error
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.1, 0.2}, nil
}

type mockIndex struct {
	err      error
	upserted []int64
}

func (m *mockIndex) Upsert(_ context.Context, documentID int64, _ []float32, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, documentID)
	return nil
}

type fixture struct {
	source    *mockSource
	extractor *mockExtractor
	docs      *mockDocs
	embedder  *mockEmbedder
	index     *mockIndex
}

func newFixture() *fixture {
	return &fixture{
		source:    &mockSource{content: map[string][]byte{}},
		extractor: &mockExtractor{project: "checkout"},
		docs:      &mockDocs{},
		embedder:  &mockEmbedder{},
		index:     &mockIndex{},
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return New(f.source, f.extractor, f.docs, f.embedder, f.index, log.NewNop())
}

func TestRunIngestsNewBlob(t *testing.T) {
	f := newFixture()
	f.source.blobs = []gcs.BlobInfo{{Name: "incidents/outage.md", ContentHash: "h1"}}
	f.source.content["incidents/outage.md"] = []byte("incident report")

	stats, err := f.orchestrator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Processed: 1}) {
		t.Errorf("stats = %+v, want one processed", stats)
	}

	if len(f.docs.upserted) != 1 {
		t.Fatalf("expected one stored document, got %d", len(f.docs.upserted))
	}
	doc := f.docs.upserted[0]
	if doc.Filename != "outage.md" {
		t.Errorf("filename = %q, want basename", doc.Filename)
	}
	if doc.SourcePath != "gs://test-bucket/incidents/outage.md" {
		t.Errorf("source path = %q", doc.SourcePath)
	}
	if doc.ContentHash != "h1" {
		t.Errorf("content hash = %q", doc.ContentHash)
	}
	if len(f.index.upserted) != 1 || f.index.upserted[0] != 1 {
		t.Errorf("indexed ids = %v, want the stored document id", f.index.upserted)
	}
}

func TestRunSkipsUnchangedBlob(t *testing.T) {
	f := newFixture()
	f.source.blobs = []gcs.BlobInfo{{Name: "outage.md", ContentHash: "h1"}}
	f.docs.hashes = map[string]string{"outage.md": "h1"}

	stats, err := f.orchestrator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Skipped: 1}) {
		t.Errorf("stats = %+v, want one skipped", stats)
	}
	if len(f.source.downloads) != 0 {
		t.Error("unchanged blob must not be downloaded")
	}
	if len(f.extractor.calls) != 0 || len(f.embedder.texts) != 0 {
		t.Error("unchanged blob must not be extracted or embedded")
	}
}

func TestRunUpdatesChangedBlob(t *testing.T) {
	f := newFixture()
	f.source.blobs = []gcs.BlobInfo{{Name: "outage.md", ContentHash: "h2"}}
	f.source.content["outage.md"] = []byte("revised report")
	f.docs.hashes = map[string]string{"outage.md": "h1"}

	stats, err := f.orchestrator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Updated: 1}) {
		t.Errorf("stats = %+v, want one updated", stats)
	}
	if len(f.extractor.calls) != 1 || len(f.embedder.texts) != 1 {
		t.Errorf("changed blob must be extracted and embedded exactly once, got %d/%d",
			len(f.extractor.calls), len(f.embedder.texts))
	}
}

func TestRunCountsExtractionErrors(t *testing.T) {
	f := newFixture()
	f.source.blobs = []gcs.BlobInfo{
		{Name: "broken.pdf", ContentHash: "h1"},
		{Name: "fine.md", ContentHash: "h2"},
	}
	f.source.content["fine.md"] = []byte("report")

	calls := 0
	orch := New(f.source, extractorFunc(func(ctx context.Context, content []byte, filename string) (*extract.Document, error) {
		calls++
		if filename == "broken.pdf" {
			return nil, errors.New("parsing PDF: malformed")
		}
		return (&mockExtractor{project: "checkout"}).Extract(ctx, content, filename)
	}), f.docs, f.embedder, f.index, log.NewNop())

	stats, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Processed: 1, Errors: 1}) {
		t.Errorf("stats = %+v, want one processed one error", stats)
	}
	if calls != 2 {
		t.Errorf("extractor calls = %d, want 2", calls)
	}
}

type extractorFunc func(ctx context.Context, content []byte, filename string) (*extract.Document, error)

func (f extractorFunc) Extract(ctx context.Context, content []byte, filename string) (*extract.Document, error) {
	return f(ctx, content, filename)
}

func TestRunCountsUnsupportedFormats(t *testing.T) {
	f := newFixture()
	f.source.blobs = []gcs.BlobInfo{{Name: "diagram.png", ContentHash: "h1"}}
	f.source.content["diagram.png"] = []byte{0x89}
	f.extractor.err = fmt.Errorf("%w: diagram.png", extract.ErrUnsupportedFormat)

	stats, err := f.orchestrator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Errors: 1}) {
		t.Errorf("stats = %+v, want one error", stats)
	}
}

func TestRunAbortsOnStoreError(t *testing.T) {
	f := newFixture()
	f.source.blobs = []gcs.BlobInfo{
		{Name: "a.md", ContentHash: "h1"},
		{Name: "b.md", ContentHash: "h2"},
	}
	f.source.content["a.md"] = []byte("x")
	f.source.content["b.md"] = []byte("y")
	f.docs.upsertErr = errors.New("connection refused")

	stats, err := f.orchestrator().Run(context.Background())
	if err == nil {
		t.Fatal("expected store error to abort the run")
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if len(f.source.downloads) != 1 {
		t.Errorf("downloads = %v, run must stop at the failing blob", f.source.downloads)
	}
}

func TestRunCountsEmbeddingErrors(t *testing.T) {
	f := newFixture()
	f.source.blobs = []gcs.BlobInfo{{Name: "a.md", ContentHash: "h1"}}
	f.source.content["a.md"] = []byte("x")
	f.embedder.err = errors.New("quota exceeded")

	stats, err := f.orchestrator().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats != (Stats{Errors: 1}) {
		t.Errorf("stats = %+v, want one error", stats)
	}
}

func TestEmbeddingText(t *testing.T) {
	got := embeddingText(extract.Extracted{
		ProjectName: "checkout",
		Problems:    []string{"timeouts", "5xx spike"},
		RootCauses:  []string{"pool exhaustion"},
		Solutions:   []string{"scale out", "tune limits"},
	})
	want := "Project: checkout\nProblems: timeouts, 5xx spike\nRoot Causes: pool exhaustion\nSolutions: scale out, tune limits"
	if got != want {
		t.Errorf("embeddingText() = %q, want %q", got, want)
	}
}
