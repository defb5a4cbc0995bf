package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/koopa0/rca-agent/internal/knowledge"
	"github.com/koopa0/rca-agent/internal/llm"
	"github.com/koopa0/rca-agent/internal/log"
	"github.com/koopa0/rca-agent/internal/search"
)

type stubLLM struct {
	response string
	err      error
	chunks   []string
	prompts  []string
}

func (s *stubLLM) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("not used")
}

func (s *stubLLM) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubLLM) GenerateStream(ctx context.Context, prompt string, cb llm.StreamCallback) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	chunks := s.chunks
	if chunks == nil {
		chunks = []string{s.response}
	}
	var full strings.Builder
	for _, chunk := range chunks {
		if cb != nil {
			if err := cb(ctx, chunk); err != nil {
				return "", err
			}
		}
		full.WriteString(chunk)
	}
	return full.String(), nil
}

type stubDocs struct {
	docs []knowledge.Document
	err  error
}

func (s *stubDocs) List(context.Context) ([]knowledge.Document, error) {
	return s.docs, s.err
}

func TestTechnicalNoResults(t *testing.T) {
	stub := &stubLLM{}
	g := New(stub, &stubDocs{}, log.NewNop())

	got, err := g.Technical(context.Background(), "db is down", nil)
	if err != nil {
		t.Fatalf("Technical() error = %v", err)
	}
	if got != msgNoSimilarProblems {
		t.Errorf("Technical() = %q", got)
	}
	if len(stub.prompts) != 0 {
		t.Error("model must not be called without results")
	}
}

func TestTechnicalPrompt(t *testing.T) {
	stub := &stubLLM{response: "## Problem Synopsis\n..."}
	g := New(stub, &stubDocs{}, log.NewNop())

	results := []search.Result{
		{
			RCAID:           1,
			Filename:        "outage.md",
			ProjectName:     "checkout",
			Problems:        []string{"timeouts", "5xx spike"},
			RootCauses:      []string{"pool exhaustion"},
			Solutions:       []string{"scale out"},
			SimilarityScore: 91.5,
		},
		{RCAID: 2, Filename: "slow.md", SimilarityScore: 60},
	}
	got, err := g.Technical(context.Background(), "checkout is timing out", results)
	if err != nil {
		t.Fatalf("Technical() error = %v", err)
	}
	if got != "## Problem Synopsis\n..." {
		t.Errorf("Technical() = %q", got)
	}

	prompt := stub.prompts[0]
	for _, want := range []string{
		`"checkout is timing out"`,
		"**Incident #1 (Similarity: 91.50%)**",
		"**Incident #2 (Similarity: 60.00%)**",
		"- **File:** outage.md",
		"- **Problem Summary:** timeouts; 5xx spike",
		"- **Identified Root Causes:** pool exhaustion",
		"**Problem Synopsis:**",
		"**Further Investigation Questions:**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestTechnicalGenerationError(t *testing.T) {
	stub := &stubLLM{err: errors.New("model unavailable")}
	g := New(stub, &stubDocs{}, log.NewNop())

	if _, err := g.Technical(context.Background(), "problem", []search.Result{{RCAID: 1}}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGeneralEmptyKnowledgeBase(t *testing.T) {
	stub := &stubLLM{}
	g := New(stub, &stubDocs{}, log.NewNop())

	got, err := g.General(context.Background(), "how many RCAs are there?")
	if err != nil {
		t.Fatalf("General() error = %v", err)
	}
	if got != msgKnowledgeBaseEmpty {
		t.Errorf("General() = %q", got)
	}
	if len(stub.prompts) != 0 {
		t.Error("model must not be called for an empty knowledge base")
	}
}

func TestGeneralPromptContainsContext(t *testing.T) {
	stub := &stubLLM{response: "There are two documents."}
	docs := &stubDocs{docs: []knowledge.Document{
		{Filename: "a.md", ProjectName: "checkout", Problems: []string{"timeouts"}, Solutions: []string{"rollback"}},
		{Filename: "b.md", ProjectName: "billing"},
	}}
	g := New(stub, docs, log.NewNop())

	got, err := g.General(context.Background(), "how many RCAs are there?")
	if err != nil {
		t.Fatalf("General() error = %v", err)
	}
	if got != "There are two documents." {
		t.Errorf("General() = %q", got)
	}

	prompt := stub.prompts[0]
	for _, want := range []string{
		"--- Document: a.md ---",
		"Project: checkout",
		"Problems: timeouts",
		"--- Document: b.md ---",
		"--- USER'S QUESTION --- how many RCAs are there?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGeneralContextCapped(t *testing.T) {
	big := strings.Repeat("x", 2000)
	var docs []knowledge.Document
	for range 20 {
		docs = append(docs, knowledge.Document{Filename: big})
	}
	stub := &stubLLM{response: "ok"}
	g := New(stub, &stubDocs{docs: docs}, log.NewNop())

	if _, err := g.General(context.Background(), "q"); err != nil {
		t.Fatalf("General() error = %v", err)
	}
	if len(stub.prompts[0]) > generalContextLimit+len(generalPromptFormat)+100 {
		t.Errorf("prompt length = %d, context not capped", len(stub.prompts[0]))
	}
}

func TestGeneralGenerationErrorReturnsApology(t *testing.T) {
	stub := &stubLLM{err: errors.New("model unavailable")}
	g := New(stub, &stubDocs{docs: []knowledge.Document{{Filename: "a.md"}}}, log.NewNop())

	got, err := g.General(context.Background(), "q")
	if err != nil {
		t.Fatalf("General() error = %v", err)
	}
	if got != msgGenerationFailed {
		t.Errorf("General() = %q", got)
	}
}

func TestGeneralStreamMatchesBlocking(t *testing.T) {
	stub := &stubLLM{chunks: []string{"There ", "are ", "two."}}
	docs := &stubDocs{docs: []knowledge.Document{{Filename: "a.md"}}}
	g := New(stub, docs, log.NewNop())

	var streamed strings.Builder
	full, err := g.GeneralStream(context.Background(), "q", func(_ context.Context, chunk string) error {
		streamed.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("GeneralStream() error = %v", err)
	}
	if full != "There are two." {
		t.Errorf("full = %q", full)
	}
	if streamed.String() != full {
		t.Errorf("streamed %q != full %q", streamed.String(), full)
	}
}

func TestGeneralStreamFixedMessage(t *testing.T) {
	g := New(&stubLLM{}, &stubDocs{}, log.NewNop())

	var chunks []string
	full, err := g.GeneralStream(context.Background(), "q", func(_ context.Context, chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("GeneralStream() error = %v", err)
	}
	if full != msgKnowledgeBaseEmpty {
		t.Errorf("full = %q", full)
	}
	if len(chunks) != 1 || chunks[0] != msgKnowledgeBaseEmpty {
		t.Errorf("chunks = %v, want the fixed message as one fragment", chunks)
	}
}

func TestGeneralStreamCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubLLM{err: context.Canceled}
	g := New(stub, &stubDocs{docs: []knowledge.Document{{Filename: "a.md"}}}, log.NewNop())

	_, err := g.GeneralStream(ctx, "q", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("GeneralStream() error = %v, want context.Canceled", err)
	}
}

func TestDocListError(t *testing.T) {
	g := New(&stubLLM{}, &stubDocs{err: errors.New("connection refused")}, log.NewNop())

	if _, err := g.General(context.Background(), "q"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
