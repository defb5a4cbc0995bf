// Package recommend turns retrieved incidents and knowledge-base context
// into model-generated answers.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/koopa0/rca-agent/internal/knowledge"
	"github.com/koopa0/rca-agent/internal/llm"
	"github.com/koopa0/rca-agent/internal/search"
)

// Fixed responses returned without a model call.
const (
	msgNoSimilarProblems  = "No similar problems were found in the knowledge base. The knowledge base may need to be synced or expanded."
	msgKnowledgeBaseEmpty = "The RCA knowledge base is currently empty."
	msgGenerationFailed   = "Sorry, an error occurred while generating the response."
)

// generalContextLimit caps how much knowledge-base context goes into the
// general prompt.
const generalContextLimit = 25000

// Documents lists the knowledge base for general answers.
type Documents interface {
	List(ctx context.Context) ([]knowledge.Document, error)
}

// Generator produces recommendations and general answers.
type Generator struct {
	llm    llm.Client
	docs   Documents
	logger *slog.Logger
}

// New creates a Generator. A nil logger falls back to slog.Default().
func New(client llm.Client, docs Documents, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: client, docs: docs, logger: logger}
}

const technicalPromptHeader = `You are an expert Senior Site Reliability Engineer (SRE) and Root Cause Analysis specialist.
Your task is to provide a comprehensive solution recommendation for a new problem based on historical RCA data.

**Current Problem Description:**
"%s"

**Retrieved Similar Historical Incidents (ranked by relevance):**
`

const technicalPromptFooter = `
---
**Your Analysis and Recommendations:**

Based on your expert analysis of the current problem and the historical data provided, generate a structured response with the following sections:

1.  **Problem Synopsis:** Briefly synthesize the user's current problem and explain *why* the retrieved incidents are relevant. Highlight the common themes.
2.  **Top Recommended Solutions:** Provide a prioritized list of actionable solutions derived from the most successful historical data. For each solution, explain the reasoning behind its recommendation.
3.  **Step-by-Step Implementation Plan:** For the #1 recommended solution, provide a clear, step-by-step guide for implementation.
4.  **Potential Risks and Mitigation:** What are the potential risks of implementing the proposed solutions? Suggest ways to mitigate these risks.
5.  **Further Investigation Questions:** What clarifying questions should be asked to get more context about the current problem? This will help refine the diagnosis.

Format your response using Markdown for clarity and readability.`

// Technical produces a solution recommendation from retrieved incidents.
// With no incidents it returns a fixed message without calling the model.
func (g *Generator) Technical(ctx context.Context, problem string, results []search.Result) (string, error) {
	if len(results) == 0 {
		return msgNoSimilarProblems, nil
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, technicalPromptHeader, problem)
	for i, result := range results {
		fmt.Fprintf(&prompt, `
---
**Incident #%d (Similarity: %.2f%%)**
- **File:** %s
- **Project:** %s
- **Problem Summary:** %s
- **Identified Root Causes:** %s
- **Successful Solutions Applied:** %s
`,
			i+1, result.SimilarityScore, result.Filename, result.ProjectName,
			strings.Join(result.Problems, "; "),
			strings.Join(result.RootCauses, "; "),
			strings.Join(result.Solutions, "; "),
		)
	}
	prompt.WriteString(technicalPromptFooter)

	response, err := g.llm.Generate(ctx, prompt.String())
	if err != nil {
		return "", fmt.Errorf("generating recommendation: %w", err)
	}
	return response, nil
}

const generalPromptFormat = `You are a helpful and knowledgeable RCA assistant. Your task is to answer the user's question accurately based ONLY on the context provided below from the knowledge base. If the answer is not contained within the provided context, state that you do not have that specific information. --- KNOWLEDGE BASE CONTEXT --- %s --- USER'S QUESTION --- %s --- YOUR ANSWER ---`

// General answers a knowledge-base question. Generation failures yield a
// user-visible apology rather than an error.
func (g *Generator) General(ctx context.Context, query string) (string, error) {
	prompt, fixed, err := g.generalPrompt(ctx, query)
	if err != nil {
		return "", err
	}
	if fixed != "" {
		return fixed, nil
	}

	response, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("general answer generation failed", "error", err)
		return msgGenerationFailed, nil
	}
	return response, nil
}

// GeneralStream answers a knowledge-base question, streaming fragments to
// cb as they arrive. Fixed messages are delivered as a single fragment. The
// returned string is the full concatenated answer.
func (g *Generator) GeneralStream(ctx context.Context, query string, cb llm.StreamCallback) (string, error) {
	prompt, fixed, err := g.generalPrompt(ctx, query)
	if err != nil {
		return "", err
	}
	if fixed != "" {
		if cb != nil {
			if err := cb(ctx, fixed); err != nil {
				return "", err
			}
		}
		return fixed, nil
	}

	response, err := g.llm.GenerateStream(ctx, prompt, cb)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.logger.Warn("general answer generation failed", "error", err)
		if cb != nil {
			if cbErr := cb(ctx, msgGenerationFailed); cbErr != nil {
				return "", cbErr
			}
		}
		return msgGenerationFailed, nil
	}
	return response, nil
}

// generalPrompt builds the general-answer prompt, or a fixed message when
// the knowledge base is empty.
func (g *Generator) generalPrompt(ctx context.Context, query string) (prompt, fixed string, err error) {
	docs, err := g.docs.List(ctx)
	if err != nil {
		return "", "", fmt.Errorf("listing knowledge base: %w", err)
	}
	if len(docs) == 0 {
		return "", msgKnowledgeBaseEmpty, nil
	}

	var contextText strings.Builder
	contextText.WriteString("Here is a summary of all the RCA documents in the knowledge base:\n\n")
	for _, doc := range docs {
		fmt.Fprintf(&contextText, "--- Document: %s ---\nProject: %s\nProblems: %s\nSolutions: %s\n\n",
			doc.Filename, doc.ProjectName,
			strings.Join(doc.Problems, ", "),
			strings.Join(doc.Solutions, ", "),
		)
	}
	contextBlock := contextText.String()
	if len(contextBlock) > generalContextLimit {
		contextBlock = contextBlock[:generalContextLimit]
	}

	return fmt.Sprintf(generalPromptFormat, contextBlock, query), "", nil
}
